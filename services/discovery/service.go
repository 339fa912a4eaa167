// Package discovery produces best-effort candidate lists even under
// partial or total provider failure. Network tiers are tried in a fixed
// priority order (popular, trending, similar) and a bundled on-disk
// dataset backs the whole pipeline; nothing here returns an error to the
// caller.
package discovery

import (
	"context"
	"errors"
	"log"

	"reelfeed/models"
	"reelfeed/services/tmdb"
)

const (
	// Tier B only runs when tier A left the accumulator short of this.
	trendingThreshold = 15
	// Tier C looks at the first similarSeeds recently watched movies and
	// takes at most similarPerSeed results each, stopping once the
	// accumulator holds accumulatorTarget items.
	similarSeeds      = 2
	similarPerSeed    = 5
	accumulatorTarget = 25
	// Hard cap on what the pipeline returns.
	maxResults = 20
)

// provider is the slice of the metadata client this package consumes.
type provider interface {
	HasCredentials() bool
	Popular(ctx context.Context, page int) ([]models.Movie, error)
	Trending(ctx context.Context, window string) ([]models.Movie, error)
	Similar(ctx context.Context, id int) ([]models.Movie, error)
}

var _ provider = (*tmdb.Client)(nil)

// failureKind classifies why a tier produced nothing, so the orchestrator
// can pattern-match continue-vs-fallback instead of inspecting raw errors.
type failureKind int

const (
	failureNone failureKind = iota
	failureConfig
	failureTransport
	failureData
)

func (k failureKind) String() string {
	switch k {
	case failureNone:
		return "none"
	case failureConfig:
		return "config"
	case failureTransport:
		return "transport"
	case failureData:
		return "data"
	default:
		return "unknown"
	}
}

// tierResult carries a tier's movies or its classified failure.
type tierResult struct {
	movies []models.Movie
	kind   failureKind
	err    error
}

func classify(movies []models.Movie, err error) tierResult {
	if err == nil {
		return tierResult{movies: movies}
	}
	switch {
	case errors.Is(err, tmdb.ErrNoCredentials):
		return tierResult{kind: failureConfig, err: err}
	case errors.Is(err, tmdb.ErrBadPayload):
		return tierResult{kind: failureData, err: err}
	default:
		return tierResult{kind: failureTransport, err: err}
	}
}

// Source orchestrates the fallback tiers. The bundled dataset cache is
// owned by the Source so tests can reset it between runs.
type Source struct {
	client   provider
	fallback *FallbackCache
}

// NewSource creates a source backed by the given provider client and
// bundled dataset cache.
func NewSource(client provider, fallback *FallbackCache) *Source {
	return &Source{client: client, fallback: fallback}
}

// GetRecommendations returns candidate movie records, excluding the given
// watched and blocked ids and seeding the similarity tier from the
// caller's recently watched movies. The returned list is typically
// non-empty even when every network call fails; errors never propagate.
func (s *Source) GetRecommendations(ctx context.Context, watchedIDs, blockedIDs []string, recent []models.StoredMovie) []models.Movie {
	exclude := buildExclusionSet(watchedIDs, blockedIDs)

	if !s.client.HasCredentials() {
		log.Printf("[discovery] no provider credential configured, serving bundled dataset")
		return s.fallback.Movies(exclude)
	}

	var acc []models.Movie

	// Tier A: currently popular.
	if res := classify(s.client.Popular(ctx, 1)); res.kind == failureNone {
		acc = append(acc, res.movies...)
	} else {
		log.Printf("[discovery] popular tier failed (%s): %v", res.kind, res.err)
	}

	// Tier B: trending this week, only when tier A came up short.
	if len(acc) < trendingThreshold {
		if res := classify(s.client.Trending(ctx, "week")); res.kind == failureNone {
			acc = append(acc, res.movies...)
		} else {
			log.Printf("[discovery] trending tier failed (%s): %v", res.kind, res.err)
		}
	}

	// Tier C: similarity expansion from recently watched seeds. Only runs
	// when the network has produced something; a per-seed failure skips
	// that seed.
	if len(acc) > 0 && len(recent) > 0 {
		acc = s.expandSimilar(ctx, acc, recent)
	}

	result := dedupeAndFilter(acc, exclude, maxResults)
	if len(result) > 0 {
		return result
	}

	log.Printf("[discovery] all network tiers empty, serving bundled dataset")
	return s.fallback.Movies(exclude)
}

func (s *Source) expandSimilar(ctx context.Context, acc []models.Movie, recent []models.StoredMovie) []models.Movie {
	seeds := recent
	if len(seeds) > similarSeeds {
		seeds = seeds[:similarSeeds]
	}

	for _, seed := range seeds {
		if len(acc) >= accumulatorTarget {
			break
		}
		id, ok := models.FlexID(seed.ID).Int()
		if !ok {
			continue
		}
		res := classify(s.client.Similar(ctx, id))
		if res.kind != failureNone {
			log.Printf("[discovery] similar tier failed for %q (%s): %v", seed.Title, res.kind, res.err)
			continue
		}
		similar := res.movies
		if len(similar) > similarPerSeed {
			similar = similar[:similarPerSeed]
		}
		acc = append(acc, similar...)
	}
	return acc
}

// buildExclusionSet unions watched and blocked ids, coerced to the
// provider's numeric id type. Non-numeric ids cannot match provider
// records and are skipped.
func buildExclusionSet(watchedIDs, blockedIDs []string) map[int]struct{} {
	exclude := make(map[int]struct{}, len(watchedIDs)+len(blockedIDs))
	for _, id := range watchedIDs {
		if n, ok := models.FlexID(id).Int(); ok {
			exclude[n] = struct{}{}
		}
	}
	for _, id := range blockedIDs {
		if n, ok := models.FlexID(id).Int(); ok {
			exclude[n] = struct{}{}
		}
	}
	return exclude
}

// dedupeAndFilter keeps the first occurrence of each id in tier order,
// drops excluded ids and caps the result.
func dedupeAndFilter(movies []models.Movie, exclude map[int]struct{}, limit int) []models.Movie {
	seen := make(map[int]struct{}, len(movies))
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if _, excluded := exclude[m.ID]; excluded {
			continue
		}
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}
