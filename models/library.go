package models

import "time"

// LibraryVersion is the current persisted schema version. Snapshots tagged
// with an older version are migrated on load.
const LibraryVersion = 2

// List names accepted by the library service.
const (
	ListMyList  = "myList"
	ListWatched = "watchedList"
)

// StoredMovie is a user-list entry. Rating is the public rating when the
// entry sits in myList and the user's own rating when it sits in
// watchedList.
type StoredMovie struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Poster    string    `json:"poster,omitempty"`
	Rating    float64   `json:"rating"`
	AddedAt   time.Time `json:"dateAdded"`
	WatchedAt time.Time `json:"watchedAt,omitzero"`
}

// Library is the persisted root aggregate: the user's three lists plus a
// reserved taste vector. myList keeps insertion order (manual priority),
// watchedList is most-recent-first, blockedMovies has set semantics.
type Library struct {
	MyList        []StoredMovie `json:"myList"`
	WatchedList   []StoredMovie `json:"watchedList"`
	BlockedMovies []string      `json:"blockedMovies"`
	TasteVector   []float64     `json:"tasteVector"`
	Version       int           `json:"version"`
}

// DefaultLibrary returns the all-empty store at the current version.
func DefaultLibrary() Library {
	return Library{
		MyList:        []StoredMovie{},
		WatchedList:   []StoredMovie{},
		BlockedMovies: []string{},
		TasteVector:   []float64{},
		Version:       LibraryVersion,
	}
}

// Contains reports whether the id is present in either movie list.
func (l Library) Contains(id string) bool {
	for _, m := range l.MyList {
		if m.ID == id {
			return true
		}
	}
	for _, m := range l.WatchedList {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MovieInput captures the loosely-shaped movie data arriving from UI
// action handlers. Older clients send poster as "poster" and the rating as
// "rating"; current ones send "posterUrl" and "userRating". Normalize
// resolves the aliases into a StoredMovie.
type MovieInput struct {
	ID         FlexID  `json:"id"`
	Title      string  `json:"title"`
	Year       int     `json:"year,omitempty"`
	Genre      string  `json:"genre,omitempty"`
	PosterURL  string  `json:"posterUrl,omitempty"`
	Poster     string  `json:"poster,omitempty"`
	UserRating float64 `json:"userRating,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Synopsis   string  `json:"synopsis,omitempty"`
}

// Normalize builds a StoredMovie from the input, preferring the current
// field names over their legacy aliases.
func (in MovieInput) Normalize(now time.Time) StoredMovie {
	poster := in.PosterURL
	if poster == "" {
		poster = in.Poster
	}
	rating := in.UserRating
	if rating == 0 {
		rating = in.Rating
	}
	return StoredMovie{
		ID:      in.ID.String(),
		Title:   in.Title,
		Year:    in.Year,
		Genre:   in.Genre,
		Poster:  poster,
		Rating:  rating,
		AddedAt: now,
	}
}

// LibraryStats summarises the persisted store for the profile view.
type LibraryStats struct {
	WatchedCount int     `json:"watchedCount"`
	RatedCount   int     `json:"ratedCount"`
	AvgRating    float64 `json:"avgRating"`
	MyListCount  int     `json:"myListCount"`
	BlockedCount int     `json:"blockedCount"`
}
