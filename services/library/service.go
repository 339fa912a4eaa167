// Package library owns the on-device record of the user's movie lists:
// the want-to-watch list, the watched list and the blocked set. The whole
// store lives in a single JSON document that is read fresh on every call
// and overwritten in full on every mutation. Nothing in this package
// raises past its boundary: unreadable or corrupt state degrades to the
// empty default store.
package library

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"reelfeed/models"
)

const storeFileName = "library.json"

// Service manages the persisted library document.
type Service struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex

	now func() time.Time
}

// NewService creates a library service storing its document under dataDir.
func NewService(dataDir string) (*Service, error) {
	return NewServiceWithFs(afero.NewOsFs(), dataDir)
}

// NewServiceWithFs is used by tests to run the service on an in-memory
// filesystem.
func NewServiceWithFs(fs afero.Fs, dataDir string) (*Service, error) {
	if err := fs.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Service{
		fs:   fs,
		path: filepath.Join(dataDir, storeFileName),
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Load reads the persisted store. Missing, unreadable or invalid documents
// yield the empty default store; stale versions are migrated first.
func (s *Service) Load() models.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Service) load() models.Library {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[library] read store failed, using defaults: %v", err)
		}
		return models.DefaultLibrary()
	}
	return parseLibrary(data, s.now)
}

// Save overwrites the persisted document with the given store. Callers are
// expected to log and continue on failure; the in-memory result they hold
// is still valid.
func (s *Service) Save(lib models.Library) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(lib)
}

func (s *Service) save(lib models.Library) error {
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// AddToList classifies a movie into myList or watchedList. The id is
// inserted only when it is present in neither list; classifying into the
// watched list first evicts any myList entry of the same id and stamps
// the watched timestamp. The watched list stays most-recent-first.
func (s *Service) AddToList(list string, input models.MovieInput) (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	now := s.now()
	movie := input.Normalize(now)
	if movie.ID == "" {
		log.Printf("[library] add to %s skipped: input has no id", list)
		return lib, nil
	}

	switch list {
	case models.ListWatched:
		lib.MyList = removeByID(lib.MyList, movie.ID)
		if !containsID(lib.WatchedList, movie.ID) {
			movie.WatchedAt = now
			lib.WatchedList = append([]models.StoredMovie{movie}, lib.WatchedList...)
		}
	case models.ListMyList:
		if !lib.Contains(movie.ID) {
			lib.MyList = append(lib.MyList, movie)
		}
	default:
		return lib, fmt.Errorf("unknown list %q", list)
	}

	return lib, s.save(lib)
}

// RemoveFromList filters the id out of the named list. Absent ids are not
// an error.
func (s *Service) RemoveFromList(id, list string) (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	switch list {
	case models.ListMyList:
		lib.MyList = removeByID(lib.MyList, id)
	case models.ListWatched:
		lib.WatchedList = removeByID(lib.WatchedList, id)
	default:
		return lib, fmt.Errorf("unknown list %q", list)
	}
	return lib, s.save(lib)
}

// MoveToMyList relocates a watched entry to the end of myList, restamping
// its added time. A no-op when the id is not in the watched list.
func (s *Service) MoveToMyList(id string) (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	idx := -1
	for i, m := range lib.WatchedList {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return lib, nil
	}

	movie := lib.WatchedList[idx]
	movie.AddedAt = s.now()
	movie.WatchedAt = time.Time{}
	lib.WatchedList = append(lib.WatchedList[:idx], lib.WatchedList[idx+1:]...)
	lib.MyList = append(lib.MyList, movie)

	return lib, s.save(lib)
}

// ReorderMyList replaces myList wholesale with the caller-supplied order.
// The caller is trusted to pass a permutation; no validation is applied.
func (s *Service) ReorderMyList(newOrder []models.StoredMovie) (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	if newOrder == nil {
		newOrder = []models.StoredMovie{}
	}
	lib.MyList = newOrder
	return lib, s.save(lib)
}

// BlockMovie adds the id to the blocked set. Idempotent.
func (s *Service) BlockMovie(id string) (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	for _, blocked := range lib.BlockedMovies {
		if blocked == id {
			return lib, nil
		}
	}
	lib.BlockedMovies = append(lib.BlockedMovies, id)
	return lib, s.save(lib)
}

// ExportSnapshot serializes the full store for backup.
func (s *Service) ExportSnapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.load(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// ImportSnapshot replaces the store wholesale with the given snapshot.
// Parse failure leaves the current store untouched. Snapshots exported by
// older versions are migrated on import.
func (s *Service) ImportSnapshot(snapshot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(snapshot), &probe); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	lib := parseLibrary([]byte(snapshot), s.now)
	return s.save(lib)
}

// ClearAll resets the store to the empty defaults.
func (s *Service) ClearAll() (models.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := models.DefaultLibrary()
	return lib, s.save(lib)
}

// Stats summarises the store. The average rating covers only watched
// entries carrying a rating, rounded to one decimal, zero when none exist.
func (s *Service) Stats() models.LibraryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.load()
	stats := models.LibraryStats{
		WatchedCount: len(lib.WatchedList),
		MyListCount:  len(lib.MyList),
		BlockedCount: len(lib.BlockedMovies),
	}

	var sum float64
	for _, m := range lib.WatchedList {
		if m.Rating > 0 {
			stats.RatedCount++
			sum += m.Rating
		}
	}
	if stats.RatedCount > 0 {
		stats.AvgRating = roundToOneDecimal(sum / float64(stats.RatedCount))
	}
	return stats
}

func roundToOneDecimal(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func removeByID(list []models.StoredMovie, id string) []models.StoredMovie {
	out := list[:0]
	for _, m := range list {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func containsID(list []models.StoredMovie, id string) bool {
	for _, m := range list {
		if m.ID == id {
			return true
		}
	}
	return false
}
