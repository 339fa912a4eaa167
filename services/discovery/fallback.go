package discovery

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/spf13/afero"

	"reelfeed/models"
)

// DefaultFallbackPath is where the bundled dataset ships relative to the
// working directory.
const DefaultFallbackPath = "data/fallback_popular.json"

// fallbackEntry mirrors a provider record, except ids may arrive as
// strings in the bundled document.
type fallbackEntry struct {
	ID           models.FlexID `json:"id"`
	Title        string        `json:"title"`
	Overview     string        `json:"overview,omitempty"`
	PosterPath   string        `json:"poster_path,omitempty"`
	BackdropPath string        `json:"backdrop_path,omitempty"`
	ReleaseDate  string        `json:"release_date,omitempty"`
	VoteAverage  float64       `json:"vote_average"`
	VoteCount    int           `json:"vote_count,omitempty"`
	GenreIDs     []int         `json:"genre_ids,omitempty"`
}

type fallbackDocument struct {
	Popular []fallbackEntry `json:"popular"`
}

// FallbackCache lazily loads the bundled popular-movies dataset, at most
// once per Source lifetime. When the document cannot be read, a small
// hardcoded list is cached in its place.
type FallbackCache struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	loaded bool
	movies []models.Movie
}

// NewFallbackCache creates a cache reading the dataset at path through fs.
func NewFallbackCache(fs afero.Fs, path string) *FallbackCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultFallbackPath
	}
	return &FallbackCache{fs: fs, path: path}
}

// Movies returns the bundled dataset with the excluded ids filtered out.
func (f *FallbackCache) Movies(exclude map[int]struct{}) []models.Movie {
	f.mu.Lock()
	if !f.loaded {
		f.movies = f.loadLocked()
		f.loaded = true
	}
	movies := f.movies
	f.mu.Unlock()

	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if _, excluded := exclude[m.ID]; excluded {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Reset clears the memoized dataset so the next call reloads it.
func (f *FallbackCache) Reset() {
	f.mu.Lock()
	f.loaded = false
	f.movies = nil
	f.mu.Unlock()
}

func (f *FallbackCache) loadLocked() []models.Movie {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		log.Printf("[discovery] bundled dataset unavailable at %s, using hardcoded list: %v", f.path, err)
		return hardcodedMovies()
	}

	var doc fallbackDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[discovery] bundled dataset unreadable, using hardcoded list: %v", err)
		return hardcodedMovies()
	}

	movies := make([]models.Movie, 0, len(doc.Popular))
	for _, e := range doc.Popular {
		id, ok := e.ID.Int()
		if !ok {
			continue
		}
		movies = append(movies, models.Movie{
			ID:           id,
			Title:        e.Title,
			Overview:     e.Overview,
			PosterPath:   e.PosterPath,
			BackdropPath: e.BackdropPath,
			ReleaseDate:  e.ReleaseDate,
			VoteAverage:  e.VoteAverage,
			VoteCount:    e.VoteCount,
			GenreIDs:     e.GenreIDs,
		})
	}
	if len(movies) == 0 {
		log.Printf("[discovery] bundled dataset is empty, using hardcoded list")
		return hardcodedMovies()
	}
	return movies
}

// hardcodedMovies is the last-resort list when even the bundled dataset
// fails to load.
func hardcodedMovies() []models.Movie {
	return []models.Movie{
		{
			ID:          278,
			Title:       "The Shawshank Redemption",
			Overview:    "Imprisoned in the 1940s for the double murder of his wife and her lover, upstanding banker Andy Dufresne begins a new life at the Shawshank prison.",
			PosterPath:  "/9cqNxx0GxF0bflZmeSMuL5tnGzr.jpg",
			ReleaseDate: "1994-09-23",
			VoteAverage: 8.7,
			VoteCount:   26000,
			GenreIDs:    []int{18, 80},
		},
		{
			ID:          238,
			Title:       "The Godfather",
			Overview:    "Spanning the years 1945 to 1955, a chronicle of the fictional Italian-American Corleone crime family.",
			PosterPath:  "/3bhkrj58Vtu7enYsRolD1fZdja1.jpg",
			ReleaseDate: "1972-03-14",
			VoteAverage: 8.7,
			VoteCount:   19000,
			GenreIDs:    []int{18, 80},
		},
	}
}
