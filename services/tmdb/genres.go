package tmdb

import "strings"

// genreNames maps the provider's movie genre ids to display names. Listing
// endpoints only carry ids, so the mapping is kept locally instead of
// hitting /genre/movie/list on every request.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreNames renders genre ids as a comma-joined display string. Unknown
// ids are skipped.
func GenreNames(ids []int) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
