package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/clients"
	"github.com/mcdev12/worldwire/internal/models"
)

// Loader fetches the country-feature baseline over HTTP with a two-tier
// policy: primary dataset first, fallback dataset if the primary fails,
// explicit error if both do. Requests carry a cache-busting query so a
// stale CDN copy never shadows a fresh deploy.
type Loader struct {
	client       *clients.BaseClient
	primaryPath  string
	fallbackPath string
}

// NewLoader creates a loader against the given base URL. Paths are
// endpoint paths relative to it.
func NewLoader(baseURL, primaryPath, fallbackPath string) *Loader {
	return &Loader{
		client:       clients.NewBaseClient(baseURL),
		primaryPath:  primaryPath,
		fallbackPath: fallbackPath,
	}
}

// Initialize fetches the baseline and fills the store. The store is only
// replaced on success, so a failed refresh keeps the previous collection.
func (l *Loader) Initialize(ctx context.Context, store *Store) error {
	features, source, err := l.fetch(ctx)
	if err != nil {
		return err
	}

	store.Load(features)
	log.Info().
		Str("source", source).
		Int("countries", len(features)).
		Msg("replica baseline loaded")
	return nil
}

func (l *Loader) fetch(ctx context.Context) ([]models.Country, string, error) {
	features, primaryErr := l.fetchPath(ctx, l.primaryPath)
	if primaryErr == nil {
		return features, l.primaryPath, nil
	}

	log.Warn().
		Err(primaryErr).
		Str("path", l.primaryPath).
		Msg("primary dataset unavailable, trying fallback")

	features, fallbackErr := l.fetchPath(ctx, l.fallbackPath)
	if fallbackErr == nil {
		return features, l.fallbackPath, nil
	}

	return nil, "", fmt.Errorf("baseline load failed: primary: %v, fallback: %w", primaryErr, fallbackErr)
}

func (l *Loader) fetchPath(ctx context.Context, path string) ([]models.Country, error) {
	endpoint := fmt.Sprintf("%s?v=%d", path, time.Now().Unix())
	body, err := l.client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var features []models.Country
	if err := json.Unmarshal(body, &features); err != nil {
		return nil, fmt.Errorf("decode country features: %w", err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}
	return features, nil
}
