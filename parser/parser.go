package parser

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"legacy-migrator/config"
	"legacy-migrator/models"
)

// StructuralMarker is the token every block document carries.
const StructuralMarker = "<!-- wp:"

// LegacySignals are the markers of the pre-enhanced layout; one is enough.
var LegacySignals = []string{"Directed by", "Writer(s):", "<!-- wp:gallery", "<!-- wp:image"}

// MaxFragmentDepth bounds how deep reusable fragments are followed.
const MaxFragmentDepth = 3

const directedBy = "Directed by"

// Resolver looks up what block attributes only reference by id.
// Implementations return "" and no error when the id does not resolve.
type Resolver interface {
	AttachmentURL(ctx context.Context, id int64) (string, error)
	ReusableBlock(ctx context.Context, id int64) (string, error)
}

// LegacyParser extracts enhanced fields from legacy block content.
type LegacyParser struct {
	provider BlockTreeProvider
	resolver Resolver
}

// New returns a parser. A nil provider forces the pattern-matching fallback and
// a nil resolver leaves id-only references unresolved.
func New(provider BlockTreeProvider, resolver Resolver) *LegacyParser {
	return &LegacyParser{provider: provider, resolver: resolver}
}

// IsLegacyContent reports whether content has the block marker and at least one legacy signal.
func IsLegacyContent(content string) bool {
	if !strings.Contains(content, StructuralMarker) {
		return false
	}
	for _, signal := range LegacySignals {
		if containsFold(content, signal) {
			return true
		}
	}
	return false
}

type collected struct {
	images     []string
	gallery    []string
	paragraphs []string
	tables     []string
}

// Parse maps content onto enhanced fields. Missing fields are simply absent;
// an empty mapping is a valid result.
func (p *LegacyParser) Parse(ctx context.Context, content string) *models.FieldMapping {
	mapped := models.NewFieldMapping()
	if content == "" || !strings.Contains(content, StructuralMarker) {
		return mapped
	}

	var c collected
	var blocks []*Block
	ok := false
	if p.provider != nil {
		blocks, ok = p.provider.Blocks(content)
	}
	if ok {
		w := &walker{resolver: p.resolver, visited: map[int64]bool{}}
		w.walk(ctx, blocks, &c, 0)
	} else {
		fallbackExtract(content, &c)
	}

	c.images = compactUnique(c.images)
	c.gallery = compactUnique(c.gallery)
	c.paragraphs = compactUnique(c.paragraphs)
	if len(c.gallery) == 0 && len(c.images) > 1 {
		c.gallery = append([]string(nil), c.images[1:]...)
	}

	if len(c.images) > 0 {
		mapped.Set(models.FieldPoster916, models.Scalar(c.images[0]))
		mapped.Set(models.FieldTitleImage169, models.Scalar(c.images[0]))
	}
	if len(c.gallery) > 0 {
		mapped.Set(models.FieldStillsGallery, models.List(c.gallery...))
	}

	texts := make([]string, len(c.paragraphs))
	for i, paragraph := range c.paragraphs {
		texts[i] = CleanText(paragraph)
	}

	directorIdx := -1
	for i, text := range texts {
		if !containsFold(text, directedBy) {
			continue
		}
		if name := directorFrom(text); name != "" {
			mapped.Set(models.FieldDirectors, models.Scalar(name))
			directorIdx = i
		}
		break
	}

	if directorIdx >= 0 {
		for _, text := range texts[directorIdx+1:] {
			if text == "" || containsDetailLabel(text) || containsFold(text, directedBy) {
				continue
			}
			mapped.Set(models.FieldSynopsis, models.Scalar(text))
			break
		}
	}

	for i, text := range texts {
		if !containsDetailLabel(text) {
			continue
		}
		if details := extractDetails(c.paragraphs[i]); details.Len() > 0 {
			mapped.Merge(details)
			break
		}
	}

	director := mapped.Str(models.FieldDirectors)
	if director != "" {
		bio, found := directorBioFromTables(director, c.tables)
		if !found {
			bio, found = directorBioFromParagraphs(director, texts)
		}
		if found {
			mapped.Set(models.FieldDirectorBio, models.Scalar(bio))
		}
		if photo, found := directorPhoto(director, c.images); found {
			mapped.Set(models.FieldDirectorPhoto, models.Scalar(photo))
		}
	}

	return mapped
}

type walker struct {
	resolver Resolver
	visited  map[int64]bool
}

func (w *walker) walk(ctx context.Context, blocks []*Block, c *collected, depth int) {
	for _, b := range blocks {
		switch b.Name {
		case BlockImage:
			if u := w.imageURL(ctx, b.Attrs); u != "" {
				c.images = append(c.images, u)
			}
		case BlockGallery:
			for _, id := range attrInts(b.Attrs, "ids") {
				if u := w.attachmentURL(ctx, id); u != "" {
					c.gallery = append(c.gallery, u)
				}
			}
		case BlockParagraph:
			if b.InnerHTML != "" {
				c.paragraphs = append(c.paragraphs, b.InnerHTML)
			}
		case BlockTable:
			if b.InnerHTML != "" {
				c.tables = append(c.tables, b.InnerHTML)
			}
		case BlockReusable:
			w.fragment(ctx, attrInt(b.Attrs, "ref"), c, depth)
		}

		if len(b.InnerBlocks) > 0 {
			w.walk(ctx, b.InnerBlocks, c, depth)
		}
	}
}

func (w *walker) fragment(ctx context.Context, ref int64, c *collected, depth int) {
	if ref <= 0 || w.resolver == nil || w.visited[ref] {
		return
	}
	if depth >= MaxFragmentDepth {
		config.Logger.Warnf("reusable block %d skipped: depth limit %d reached", ref, MaxFragmentDepth)
		return
	}
	w.visited[ref] = true

	content, err := w.resolver.ReusableBlock(ctx, ref)
	if err != nil {
		config.Logger.Warnf("reusable block %d: %v", ref, err)
		return
	}
	if content == "" {
		return
	}
	w.walk(ctx, ParseBlocks(content), c, depth+1)
}

func (w *walker) imageURL(ctx context.Context, attrs map[string]any) string {
	if id := attrInt(attrs, "id"); id > 0 {
		if u := w.attachmentURL(ctx, id); u != "" {
			return u
		}
	}
	return sanitizeURL(attrString(attrs, "url"))
}

func (w *walker) attachmentURL(ctx context.Context, id int64) string {
	if w.resolver == nil || id <= 0 {
		return ""
	}
	u, err := w.resolver.AttachmentURL(ctx, id)
	if err != nil {
		config.Logger.Warnf("attachment %d: %v", id, err)
		return ""
	}
	return sanitizeURL(u)
}

var (
	imgSrcPattern    = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
	paragraphPattern = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`)
)

// fallbackExtract collects image sources and paragraph bodies straight from markup.
func fallbackExtract(content string, c *collected) {
	for _, m := range imgSrcPattern.FindAllStringSubmatch(content, -1) {
		if u := sanitizeURL(m[1]); u != "" {
			c.images = append(c.images, u)
		}
	}
	for _, m := range paragraphPattern.FindAllStringSubmatch(content, -1) {
		c.paragraphs = append(c.paragraphs, m[1])
	}
}

// sanitizeURL keeps http(s) and relative references only.
func sanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return u.String()
	}
	return ""
}

// directorFrom returns the byline name. It stops at the first line break,
// where bylines usually go on with other credits.
func directorFrom(text string) string {
	i, n := indexFold(text, directedBy)
	if i < 0 {
		return ""
	}
	name := text[i+n:]
	if nl := strings.IndexByte(name, '\n'); nl >= 0 {
		name = name[:nl]
	}
	name = strings.TrimLeft(strings.TrimSpace(name), ",:;- ")
	return strings.Trim(name, valueCutset)
}

var leadingBreaks = regexp.MustCompile(`^\s*\n+`)

const bioCutset = " \t\n\r\x00\x0B-–—,:;"

// bioAfterName takes the text after the first occurrence of name as a bio candidate.
func bioAfterName(plain, name string) (string, bool) {
	i, n := indexFold(plain, name)
	if i < 0 {
		return "", false
	}
	bio := leadingBreaks.ReplaceAllString(plain[i+n:], "\n")
	bio = strings.Trim(strings.TrimSpace(bio), bioCutset)
	if len(bio) <= 5 || containsDetailLabel(bio) {
		return "", false
	}
	return bio, true
}

// directorBioFromTables looks for a table mentioning the director, either
// with the bio after the name or with the name as a header line.
func directorBioFromTables(director string, tables []string) (string, bool) {
	for _, table := range tables {
		plain := CleanText(table)
		if plain == "" || !containsFold(plain, director) {
			continue
		}
		if bio, ok := bioAfterName(plain, director); ok {
			return bio, true
		}

		lines := strings.Split(plain, "\n")
		if len(lines) < 2 || !containsFold(lines[0], director) {
			continue
		}
		var rest []string
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				rest = append(rest, line)
			}
		}
		bio := strings.Join(rest, "\n")
		if bio != "" && !containsDetailLabel(bio) {
			return bio, true
		}
	}
	return "", false
}

// directorBioFromParagraphs applies the after-name heuristic to paragraphs
// other than the byline and the labeled details.
func directorBioFromParagraphs(director string, texts []string) (string, bool) {
	for _, plain := range texts {
		if plain == "" || !containsFold(plain, director) {
			continue
		}
		if containsDetailLabel(plain) || containsFold(plain, directedBy) {
			continue
		}
		if bio, ok := bioAfterName(plain, director); ok {
			return bio, true
		}
	}
	return "", false
}

// directorPhoto picks the last image in document order when there is more than one.
func directorPhoto(director string, images []string) (string, bool) {
	if director == "" || len(images) < 2 {
		return "", false
	}
	return images[len(images)-1], true
}
