package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/clients/openai_client"
	"github.com/mcdev12/worldwire/internal/models"
)

const (
	// estimatedCostPerCall is a conservative per-completion estimate used
	// for budget gating before the real token usage is known.
	estimatedCostPerCall = 0.01

	// costPer1KTokens prices recorded spend from reported usage.
	costPer1KTokens = 0.002

	maxCompletionTokens = 600

	systemPrompt = "You are a terse geopolitical news wire. Output ONLY headline lines " +
		"in the exact format: TITLE | COUNTRY_CODE | CATEGORY | SEVERITY | BODY. " +
		"One line per headline, at most five lines. SEVERITY is one of low, medium, high, critical."
)

// OpenAIGenerator produces headlines via the OpenAI chat completions API,
// with a spend budget and a cache in front of it. When the API cannot be
// used (over budget, call failure, unparseable output) it degrades to the
// local synthetic generator rather than erroring.
type OpenAIGenerator struct {
	client   *openai_client.OpenAIClient
	budget   *Budget
	store    *Store
	fallback *FallbackGenerator
	timeout  time.Duration
}

// NewOpenAIGenerator creates an OpenAI-backed generator.
func NewOpenAIGenerator(client *openai_client.OpenAIClient, budget *Budget, store *Store, timeout time.Duration) *OpenAIGenerator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenAIGenerator{
		client:   client,
		budget:   budget,
		store:    store,
		fallback: NewFallbackGenerator(),
		timeout:  timeout,
	}
}

// Headlines implements Generator.
func (g *OpenAIGenerator) Headlines(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
	key := cacheKey(diff)
	if cached, ok := g.store.CachedHeadlines(key); ok {
		log.Debug().Str("cache_key", key).Int("headlines", len(cached)).Msg("headline cache hit")
		return cached, nil
	}

	now := diff.ProducedAt
	if !g.budget.CanSpend(estimatedCostPerCall, now) {
		log.Warn().Msg("narrative budget exhausted, using synthetic headlines")
		return g.fallback.Headlines(ctx, diff, world)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content, usage, err := g.client.Complete(callCtx, systemPrompt, buildPrompt(diff, world), maxCompletionTokens)
	if err != nil {
		log.Warn().Err(err).Msg("narrative API call failed, using synthetic headlines")
		return g.fallback.Headlines(ctx, diff, world)
	}

	g.budget.Record(float64(usage.TotalTokens)/1000*costPer1KTokens, now)

	headlines := parseHeadlines(content, diff.ProducedAt)
	if len(headlines) == 0 {
		log.Warn().Msg("narrative API returned no parseable headlines, using synthetic")
		return g.fallback.Headlines(ctx, diff, world)
	}

	if err := g.store.CacheHeadlines(key, headlines, now); err != nil {
		log.Warn().Err(err).Msg("failed to cache headlines")
	}
	return headlines, nil
}

// cacheKey buckets a diff coarsely so similar world states share one
// completion: tick bucket, tension band, and the patched country set.
func cacheKey(diff models.Diff) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "t%d-g%d", diff.Tick/4, diff.GlobalTension/10)
	for _, p := range diff.CountryPatches {
		sb.WriteByte('-')
		sb.WriteString(p.CountryID)
	}
	return sb.String()
}

func buildPrompt(diff models.Diff, world models.WorldState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Simulated week %d. Global tension %d/100.\n", diff.Tick, diff.GlobalTension)

	for _, p := range diff.CountryPatches {
		name := p.CountryID
		if c, ok := world.Countries[p.CountryID]; ok {
			name = c.Name
		}
		switch {
		case p.Faction != nil:
			fmt.Fprintf(&sb, "%s (%s) aligned with %s this week.\n", name, p.CountryID, *p.Faction)
		case p.Morale != nil:
			fmt.Fprintf(&sb, "%s (%s) national morale moved to %.2f.\n", name, p.CountryID, *p.Morale)
		}
	}

	sb.WriteString("Write plausible news headlines for these developments.")
	return sb.String()
}

// parseHeadlines reads the pipe-delimited wire format. Malformed lines are
// skipped, not fatal.
func parseHeadlines(content string, ts time.Time) []models.Headline {
	var headlines []models.Headline
	for _, line := range strings.Split(content, "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 5 {
			continue
		}
		title := strings.TrimSpace(parts[0])
		if title == "" {
			continue
		}
		headlines = append(headlines, models.Headline{
			Title:     title,
			Country:   strings.TrimSpace(parts[1]),
			Category:  strings.TrimSpace(parts[2]),
			Severity:  parseSeverity(strings.TrimSpace(parts[3])),
			Body:      strings.TrimSpace(strings.Join(parts[4:], "|")),
			Source:    "worldwire/openai",
			Synthetic: false,
			Timestamp: ts,
		})
	}
	return headlines
}

func parseSeverity(raw string) models.HeadlineSeverity {
	switch models.HeadlineSeverity(strings.ToLower(raw)) {
	case models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return models.HeadlineSeverity(strings.ToLower(raw))
	default:
		return models.SeverityLow
	}
}
