package library

import (
	"encoding/json"
	"log"
	"time"

	"reelfeed/models"
)

// legacyStored tolerates the field aliases older snapshots used for the
// poster and rating, and ids stored as raw numbers.
type legacyStored struct {
	ID         models.FlexID `json:"id"`
	Title      string        `json:"title"`
	Year       int           `json:"year"`
	Genre      string        `json:"genre"`
	Poster     string        `json:"poster"`
	PosterURL  string        `json:"posterUrl"`
	Rating     float64       `json:"rating"`
	UserRating float64       `json:"userRating"`
	AddedAt    time.Time     `json:"dateAdded"`
	WatchedAt  time.Time     `json:"watchedAt"`
}

func (l legacyStored) toStored(now time.Time) models.StoredMovie {
	poster := l.PosterURL
	if poster == "" {
		poster = l.Poster
	}
	rating := l.UserRating
	if rating == 0 {
		rating = l.Rating
	}
	added := l.AddedAt
	if added.IsZero() {
		added = now
	}
	return models.StoredMovie{
		ID:        l.ID.String(),
		Title:     l.Title,
		Year:      l.Year,
		Genre:     l.Genre,
		Poster:    poster,
		Rating:    rating,
		AddedAt:   added,
		WatchedAt: l.WatchedAt,
	}
}

// parseLibrary decodes a persisted document, migrating snapshots tagged
// with an older version. It never fails: anything unreadable degrades to
// the default store, unrecognized legacy fields are silently dropped.
func parseLibrary(data []byte, now func() time.Time) models.Library {
	var tag struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		log.Printf("[library] corrupt store document, using defaults: %v", err)
		return models.DefaultLibrary()
	}

	if tag.Version == models.LibraryVersion {
		var lib models.Library
		if err := json.Unmarshal(data, &lib); err != nil {
			log.Printf("[library] store decode failed, using defaults: %v", err)
			return models.DefaultLibrary()
		}
		return normalize(lib)
	}

	return migrate(data, tag.Version, now)
}

// migrate builds a fresh default store and best-effort copies recognized
// fields from the legacy document. Each list is looked up under its
// current name first and the prior naming convention second. Per-movie
// dateAdded defaults to now.
func migrate(data []byte, fromVersion int, now func() time.Time) models.Library {
	lib := models.DefaultLibrary()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		log.Printf("[library] legacy store unreadable, using defaults: %v", err)
		return lib
	}

	stamp := now()
	lib.MyList = decodeLegacyList(fields, stamp, "myList", "watchlist")
	lib.WatchedList = decodeLegacyList(fields, stamp, "watchedList", "watched")
	lib.BlockedMovies = decodeLegacyBlocked(fields, "blockedMovies", "blocked")

	if raw, ok := fields["tasteVector"]; ok {
		var vector []float64
		if err := json.Unmarshal(raw, &vector); err == nil && vector != nil {
			lib.TasteVector = vector
		}
	}

	log.Printf("[library] migrated store from version %d to %d", fromVersion, models.LibraryVersion)
	return lib
}

func decodeLegacyList(fields map[string]json.RawMessage, stamp time.Time, names ...string) []models.StoredMovie {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			log.Printf("[library] dropping unrecognized legacy field %q: %v", name, err)
			continue
		}
		out := make([]models.StoredMovie, 0, len(entries))
		for _, entry := range entries {
			var legacy legacyStored
			if err := json.Unmarshal(entry, &legacy); err != nil || legacy.ID == "" {
				continue
			}
			out = append(out, legacy.toStored(stamp))
		}
		return out
	}
	return []models.StoredMovie{}
}

func decodeLegacyBlocked(fields map[string]json.RawMessage, names ...string) []string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var ids []models.FlexID
		if err := json.Unmarshal(raw, &ids); err != nil {
			log.Printf("[library] dropping unrecognized legacy field %q: %v", name, err)
			continue
		}
		seen := make(map[string]struct{}, len(ids))
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			s := id.String()
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		return out
	}
	return []string{}
}

// normalize replaces nil slices so the document always serializes with the
// full schema present.
func normalize(lib models.Library) models.Library {
	if lib.MyList == nil {
		lib.MyList = []models.StoredMovie{}
	}
	if lib.WatchedList == nil {
		lib.WatchedList = []models.StoredMovie{}
	}
	if lib.BlockedMovies == nil {
		lib.BlockedMovies = []string{}
	}
	if lib.TasteVector == nil {
		lib.TasteVector = []float64{}
	}
	return lib
}
