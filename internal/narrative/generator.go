package narrative

import (
	"context"

	"github.com/mcdev12/worldwire/internal/models"
)

// Generator produces headlines for a freshly computed diff. Implementations
// may be slow (remote AI calls); callers bound them with the context and
// must treat any error as "no headlines this tick", never as a commit
// failure.
type Generator interface {
	Headlines(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error)

func (f GeneratorFunc) Headlines(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
	return f(ctx, diff, world)
}
