package assets

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"legacy-migrator/models"
)

// NameParts are the record facts a relocated file is named after.
type NameParts struct {
	FilmTitle   string
	ReleaseYear string
	Directors   string
}

// PartsFromVideo reads the naming facts from the record meta, falling back to
// the record title and creation year.
func PartsFromVideo(v *models.Video) NameParts {
	var parts NameParts

	if title, ok := v.Field(models.FieldFilmTitle); ok && title.String() != "" {
		parts.FilmTitle = title.String()
	} else {
		parts.FilmTitle = v.Title
	}

	if date, ok := v.Field(models.FieldReleaseDate); ok && date.String() != "" {
		parts.ReleaseYear = ReleaseYear(date.String())
	} else if !v.CreatedAt.IsZero() {
		parts.ReleaseYear = v.CreatedAt.Format("2006")
	}

	if directors, ok := v.Field(models.FieldDirectors); ok {
		parts.Directors = directors.String()
	}
	return parts
}

var releaseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2006-01",
	"2006",
}

// ReleaseYear extracts the year of a free-form release date, or "" when the
// date cannot be read.
func ReleaseYear(date string) string {
	date = strings.TrimSpace(date)
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006")
		}
	}
	return ""
}

var (
	nonSlug        = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnum       = regexp.MustCompile(`[^A-Za-z0-9]+`)
	repeatedScores = regexp.MustCompile(`_+`)
)

// slugComponent folds accents, lowercases and joins words with underscores.
func slugComponent(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	slug := nonSlug.ReplaceAllString(strings.ToLower(folded), "_")
	return strings.Trim(slug, "_")
}

// NormalizeSuffix uppercases the suffix and turns separators into single underscores.
func NormalizeSuffix(suffix string) string {
	s := strings.ToUpper(nonAlnum.ReplaceAllString(suffix, "_"))
	return strings.Trim(repeatedScores.ReplaceAllString(s, "_"), "_")
}

// BuildFilename returns {film_title}_{year}_{directors}_{SUFFIX}.{ext}. Parts
// that are empty are left out, "movie" stands in when all of them are. The
// extension is taken from originalName, lowercased.
func BuildFilename(parts NameParts, suffix, originalName string) string {
	var items []string
	if s := slugComponent(parts.FilmTitle); s != "" {
		items = append(items, s)
	}
	if s := slugComponent(parts.ReleaseYear); s != "" {
		items = append(items, s)
	}
	if s := slugComponent(strings.ReplaceAll(parts.Directors, ",", " and ")); s != "" {
		items = append(items, s)
	}
	if len(items) == 0 {
		items = append(items, "movie")
	}
	if s := NormalizeSuffix(suffix); s != "" {
		items = append(items, s)
	}

	name := strings.Join(items, "_")
	if ext := strings.TrimPrefix(path.Ext(originalName), "."); ext != "" {
		name += "." + strings.ToLower(ext)
	}
	return name
}
