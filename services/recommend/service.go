// Package recommend glues the fallback-tiered movie source to the shape
// the presentation layer consumes: exclusion filtering, genre formatting
// and the UI recommendation record.
package recommend

import (
	"context"
	"log"
	"strconv"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"reelfeed/models"
	"reelfeed/services/discovery"
	"reelfeed/services/library"
	"reelfeed/services/tmdb"
)

const (
	maxRecommendations = 10
	perCategory        = 4
	// Every recommendation from this layer carries the same confidence;
	// there is no personalization model behind it.
	fixedConfidence = 0.7
)

// movieSource is the resilient multi-tier source feeding the UI path.
type movieSource interface {
	GetRecommendations(ctx context.Context, watchedIDs, blockedIDs []string, recent []models.StoredMovie) []models.Movie
}

// catalog is the slice of the provider client used by the basic and mixed
// paths, which talk to individual listing tiers directly.
type catalog interface {
	Popular(ctx context.Context, page int) ([]models.Movie, error)
	Trending(ctx context.Context, window string) ([]models.Movie, error)
	TopRated(ctx context.Context) ([]models.Movie, error)
}

// libraryStore supplies the fresh exclusion state on every request.
type libraryStore interface {
	Load() models.Library
}

var (
	_ movieSource  = (*discovery.Source)(nil)
	_ catalog      = (*tmdb.Client)(nil)
	_ libraryStore = (*library.Service)(nil)
)

// Service assembles recommendations for the presentation layer.
type Service struct {
	source  movieSource
	catalog catalog
	library libraryStore
}

// NewService wires the assembler to its collaborators.
func NewService(source movieSource, cat catalog, lib libraryStore) *Service {
	return &Service{source: source, catalog: cat, library: lib}
}

// GetRecommendationsForUI reads the store fresh, runs the fallback-tiered
// pipeline and returns up to limit UI-shaped recommendations. Never errors;
// a degraded provider shows up as the bundled dataset, not a failure.
func (s *Service) GetRecommendationsForUI(ctx context.Context, limit int) []models.UIRecommendation {
	if limit <= 0 || limit > maxRecommendations {
		limit = maxRecommendations
	}

	lib := s.library.Load()
	watched := storedIDs(lib.WatchedList)
	movies := s.source.GetRecommendations(ctx, watched, lib.BlockedMovies, lib.WatchedList)

	hasHistory := len(lib.WatchedList) > 0
	out := make([]models.UIRecommendation, 0, limit)
	for _, m := range movies {
		out = append(out, toUIRecommendation(m, hasHistory))
		if len(out) >= limit {
			break
		}
	}
	return out
}

// GetBasicRecommendations serves the popularity tier, falling back to
// trending exactly once when it yields nothing. Up to ten simple movies
// with synopsis attached.
func (s *Service) GetBasicRecommendations(ctx context.Context, lib models.Library) []models.SimpleMovie {
	movies, err := s.catalog.Popular(ctx, 1)
	if err != nil {
		log.Printf("[recommend] popular fetch failed: %v", err)
	}
	if len(movies) == 0 {
		movies, err = s.catalog.Trending(ctx, "week")
		if err != nil {
			log.Printf("[recommend] trending fallback failed: %v", err)
		}
	}

	movies = FilterExcludedMovies(movies, lib)
	if len(movies) > maxRecommendations {
		movies = movies[:maxRecommendations]
	}
	out := make([]models.SimpleMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, toSimple(m))
	}
	return out
}

// GetMixedRecommendations fetches popular, trending and top-rated
// concurrently (waiting for all three to settle), interleaves up to four
// per category while skipping ids already chosen, and caps the total at
// ten. When every category fails it delegates to the basic path.
func (s *Service) GetMixedRecommendations(ctx context.Context, lib models.Library) []models.SimpleMovie {
	var (
		popular, trending, topRated []models.Movie
		popErr, trendErr, topErr    error
	)

	var wg conc.WaitGroup
	wg.Go(func() { popular, popErr = s.catalog.Popular(ctx, 1) })
	wg.Go(func() { trending, trendErr = s.catalog.Trending(ctx, "week") })
	wg.Go(func() { topRated, topErr = s.catalog.TopRated(ctx) })
	wg.Wait()

	if popErr != nil {
		log.Printf("[recommend] mixed: popular failed: %v", popErr)
	}
	if trendErr != nil {
		log.Printf("[recommend] mixed: trending failed: %v", trendErr)
	}
	if topErr != nil {
		log.Printf("[recommend] mixed: top rated failed: %v", topErr)
	}
	if popErr != nil && trendErr != nil && topErr != nil {
		return s.GetBasicRecommendations(ctx, lib)
	}

	categories := [][]models.Movie{
		FilterExcludedMovies(popular, lib),
		FilterExcludedMovies(trending, lib),
		FilterExcludedMovies(topRated, lib),
	}

	chosen := make(map[int]struct{})
	cursors := make([]int, len(categories))
	used := make([]int, len(categories))
	out := make([]models.SimpleMovie, 0, maxRecommendations)

	for len(out) < maxRecommendations {
		progressed := false
		for ci, category := range categories {
			if len(out) >= maxRecommendations || used[ci] >= perCategory {
				continue
			}
			// Advance the cursor past duplicates so this round still
			// contributes an entry from the category when possible.
			for cursors[ci] < len(category) {
				m := category[cursors[ci]]
				cursors[ci]++
				if _, dup := chosen[m.ID]; dup {
					continue
				}
				chosen[m.ID] = struct{}{}
				out = append(out, toSimple(m))
				used[ci]++
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

// UpdateRecommendationState is a fire-and-forget observer hook for UI
// actions (like/dislike/rate/skip). It intentionally does not mutate the
// persisted store; list mutation happens through the library service.
func (s *Service) UpdateRecommendationState(action string, movie models.MovieInput) {
	log.Printf("[recommend] feedback event=%s action=%s movie=%s title=%q",
		uuid.NewString(), action, movie.ID, movie.Title)
}

// FilterExcludedMovies returns only records whose id appears in neither
// the watched list nor the blocked set. Malformed or empty exclusion
// state leaves the input unchanged.
func FilterExcludedMovies(movies []models.Movie, lib models.Library) []models.Movie {
	if len(movies) == 0 || (len(lib.WatchedList) == 0 && len(lib.BlockedMovies) == 0) {
		return movies
	}

	excluded := make(map[int]struct{}, len(lib.WatchedList)+len(lib.BlockedMovies))
	for _, m := range lib.WatchedList {
		if n, ok := models.FlexID(m.ID).Int(); ok {
			excluded[n] = struct{}{}
		}
	}
	for _, id := range lib.BlockedMovies {
		if n, ok := models.FlexID(id).Int(); ok {
			excluded[n] = struct{}{}
		}
	}
	if len(excluded) == 0 {
		return movies
	}

	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if _, skip := excluded[m.ID]; skip {
			continue
		}
		out = append(out, m)
	}
	return out
}

func storedIDs(list []models.StoredMovie) []string {
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	return ids
}

// toSimple converts a provider record into the internal canonical shape.
// The 0-10 provider score is halved into the 0-5 rating.
func toSimple(m models.Movie) models.SimpleMovie {
	return models.SimpleMovie{
		ID:       strconv.Itoa(m.ID),
		Title:    m.Title,
		Year:     m.Year(),
		Genre:    tmdb.GenreNames(m.GenreIDs),
		Poster:   tmdb.PosterURL(m.PosterPath),
		Rating:   m.VoteAverage / 2,
		Synopsis: m.Overview,
	}
}

func toUIRecommendation(m models.Movie, hasHistory bool) models.UIRecommendation {
	simple := toSimple(m)
	reason := "Popular with viewers right now"
	if hasHistory {
		reason = "Because of what you've been watching"
	}
	return models.UIRecommendation{
		ID:         simple.ID,
		Title:      simple.Title,
		Year:       simple.Year,
		Genre:      simple.Genre,
		Rating:     simple.Rating,
		Poster:     simple.Poster,
		Reason:     reason,
		Score:      m.VoteAverage,
		Confidence: fixedConfidence,
	}
}
