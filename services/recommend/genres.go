package recommend

import "strings"

// legacyGenreSeparator is the bullet separator older snapshots and the
// display layer use between genre names.
const legacyGenreSeparator = "•"

// ParseGenres splits a genre string into individual names. Current data
// joins names with commas; older data used a bullet separator. Empty
// segments are dropped.
func ParseGenres(genre string) []string {
	if strings.TrimSpace(genre) == "" {
		return []string{}
	}

	sep := ","
	if !strings.Contains(genre, ",") && strings.Contains(genre, legacyGenreSeparator) {
		sep = legacyGenreSeparator
	}

	parts := strings.Split(genre, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// FormatGenres renders a comma-joined genre string with the display
// bullet separator. Idempotent for already bullet-formatted input.
func FormatGenres(genre string) string {
	names := ParseGenres(genre)
	return strings.Join(names, " "+legacyGenreSeparator+" ")
}
