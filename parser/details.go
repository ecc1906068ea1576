package parser

import (
	"regexp"
	"strings"

	"legacy-migrator/models"
)

// DetailLabels are the tokens that mark a labeled-detail paragraph.
var DetailLabels = []string{"Writer", "Producer", "Composer", "Duration", "Genres", "Country", "Language", "Aspect Ratio"}

type detailLabel struct {
	pattern string
	fields  []models.Field
}

var detailLabelSpecs = []detailLabel{
	{`Writer(?:\(s\))?`, []models.Field{models.FieldWriters}},
	{`Producer(?:\(s\))?`, []models.Field{models.FieldProducers}},
	{`Composer(?:\(s\))?`, []models.Field{models.FieldComposers}},
	{`Duration`, []models.Field{models.FieldDuration}},
	{`Genres?`, []models.Field{models.FieldGenres}},
	{`Country`, []models.Field{models.FieldCountry, models.FieldCountriesProduction}},
	{`Language`, []models.Field{models.FieldLanguage}},
	{`Aspect\s*Ratio`, []models.Field{models.FieldAspectRatio}},
}

var (
	labelRegexps = func() map[string]*regexp.Regexp {
		out := make(map[string]*regexp.Regexp, len(detailLabelSpecs))
		for _, spec := range detailLabelSpecs {
			out[spec.pattern] = regexp.MustCompile(`(?i)^\s*(?:` + spec.pattern + `):\s*(.*)$`)
		}
		return out
	}()

	// any "Something:" at line start ends the previous label's value
	labelLine = regexp.MustCompile(`^\s*[\w\s()]+:(?:\s|$)`)
)

const valueCutset = " \t\n\r\x00\x0B,"

// containsDetailLabel reports whether text carries any "Label:" or "Label(s):" token.
func containsDetailLabel(text string) bool {
	for _, label := range DetailLabels {
		if containsFold(text, label+":") || containsFold(text, label+"(s):") {
			return true
		}
	}
	return false
}

// extractDetails maps every recognized label of a labeled-detail paragraph.
func extractDetails(paragraphHTML string) *models.FieldMapping {
	mapped := models.NewFieldMapping()
	plain := CleanText(paragraphHTML)
	if plain == "" {
		return mapped
	}

	for _, spec := range detailLabelSpecs {
		value := extractLabelValue(plain, labelRegexps[spec.pattern])
		if value == "" {
			continue
		}

		switch spec.fields[0] {
		case models.FieldAspectRatio:
			if ratio, ok := NormalizeAspectRatio(value); ok {
				mapped.Set(models.FieldAspectRatio, models.Scalar(ratio))
			}
		case models.FieldCountry:
			mapped.Set(models.FieldCountry, models.Scalar(value))
			mapped.Set(models.FieldCountriesProduction, models.List(value))
		default:
			mapped.Set(spec.fields[0], models.Scalar(value))
		}
	}
	return mapped
}

// extractLabelValue finds `LABEL:` at the start of a line and captures the
// text up to the next label line or the end of the text.
func extractLabelValue(plain string, label *regexp.Regexp) string {
	lines := strings.Split(plain, "\n")
	for i, line := range lines {
		m := label.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		parts := []string{m[1]}
		for _, next := range lines[i+1:] {
			if labelLine.MatchString(next) {
				break
			}
			parts = append(parts, next)
		}
		return strings.Trim(strings.Join(parts, "\n"), valueCutset)
	}
	return ""
}

// NormalizeAspectRatio maps free-text ratios onto 1.78, 1.33, 2.35 or 2.39.
// Anything else is reported as unrecognized.
func NormalizeAspectRatio(ratio string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(ratio))
	value = strings.ReplaceAll(value, " ", "")

	switch {
	case strings.Contains(value, "16:9") || strings.Contains(value, "1.78"):
		return "1.78", true
	case strings.Contains(value, "4:3") || strings.Contains(value, "1.33"):
		return "1.33", true
	case strings.Contains(value, "2.35"):
		return "2.35", true
	case strings.Contains(value, "2.39") || strings.Contains(value, "2.40"):
		return "2.39", true
	}
	return "", false
}
