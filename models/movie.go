package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Movie is a provider-shaped record as returned by the metadata API.
// Records are immutable once fetched; downstream layers transform them
// into SimpleMovie or StoredMovie instead of mutating them.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
}

// Year extracts the release year from the provider date (YYYY-MM-DD).
// Returns 0 when the date is missing or malformed.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// SimpleMovie is the internal canonical shape derived from a provider record.
type SimpleMovie struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Year     int     `json:"year,omitempty"`
	Genre    string  `json:"genre,omitempty"`
	Poster   string  `json:"poster,omitempty"`
	Rating   float64 `json:"rating"`
	Synopsis string  `json:"synopsis,omitempty"`
}

// UIRecommendation is the shape consumed by the presentation layer.
type UIRecommendation struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Year       int     `json:"year,omitempty"`
	Genre      string  `json:"genre"`
	Rating     float64 `json:"rating"`
	Poster     string  `json:"poster,omitempty"`
	Reason     string  `json:"reason"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// FlexID is a string identifier that tolerates numeric JSON input.
// Provider payloads and older snapshots carry ids as either numbers or
// strings; both decode into the stringified form.
type FlexID string

// UnmarshalJSON accepts both "42" and 42.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

// Int coerces the id to the provider's numeric type. Returns 0 and false
// for ids that are not numeric.
func (f FlexID) Int() (int, bool) {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0, false
	}
	return n, true
}
