package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Block is one node of the block document tree.
// Freeform HTML between top-level blocks becomes a Block with an empty Name.
type Block struct {
	Name        string
	Attrs       map[string]any
	InnerBlocks []*Block
	InnerHTML   string
}

// Block names the parser cares about.
const (
	BlockImage     = "core/image"
	BlockGallery   = "core/gallery"
	BlockParagraph = "core/paragraph"
	BlockTable     = "core/table"
	BlockReusable  = "core/block"
)

// BlockTreeProvider turns content into a block tree.
// ok=false means tree decomposition is unavailable for this content.
type BlockTreeProvider interface {
	Blocks(content string) (blocks []*Block, ok bool)
}

// GutenbergProvider decomposes `<!-- wp:name {attrs} -->` delimited content.
type GutenbergProvider struct{}

func (GutenbergProvider) Blocks(content string) ([]*Block, bool) {
	return ParseBlocks(content), true
}

var blockDelimiter = regexp.MustCompile(`(?s)<!--\s+(/)?wp:([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?)\s+(\{.*?\}\s+)?(/)?-->`)

// ParseBlocks parses block comment delimiters into a tree. Unbalanced
// delimiters are tolerated: a closer pops up to its matching opener and
// blocks still open at the end are closed implicitly.
func ParseBlocks(content string) []*Block {
	var (
		roots []*Block
		stack []*Block
	)

	attach := func(b *Block) {
		if len(stack) == 0 {
			roots = append(roots, b)
			return
		}
		parent := stack[len(stack)-1]
		parent.InnerBlocks = append(parent.InnerBlocks, b)
	}

	addHTML := func(s string) {
		if s == "" {
			return
		}
		if len(stack) == 0 {
			if strings.TrimSpace(s) != "" {
				roots = append(roots, &Block{InnerHTML: s, Attrs: map[string]any{}})
			}
			return
		}
		stack[len(stack)-1].InnerHTML += s
	}

	offset := 0
	for _, loc := range blockDelimiter.FindAllStringSubmatchIndex(content, -1) {
		addHTML(content[offset:loc[0]])
		offset = loc[1]

		closer := loc[2] >= 0
		name := fullBlockName(content[loc[4]:loc[5]])
		var attrs map[string]any
		if loc[6] >= 0 {
			attrs = decodeAttrs(content[loc[6]:loc[7]])
		}
		if attrs == nil {
			attrs = map[string]any{}
		}
		void := loc[8] >= 0

		switch {
		case closer:
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			for len(stack) > idx {
				b := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				attach(b)
			}
		case void:
			attach(&Block{Name: name, Attrs: attrs})
		default:
			stack = append(stack, &Block{Name: name, Attrs: attrs})
		}
	}
	addHTML(content[offset:])

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		attach(b)
	}
	return roots
}

func fullBlockName(name string) string {
	if !strings.Contains(name, "/") {
		return "core/" + name
	}
	return name
}

func decodeAttrs(raw string) map[string]any {
	var attrs map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &attrs); err != nil {
		return nil
	}
	return attrs
}

// attrInt reads a numeric attribute that may be encoded as number or string.
func attrInt(attrs map[string]any, key string) int64 {
	switch v := attrs[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func attrInts(attrs map[string]any, key string) []int64 {
	items, ok := attrs[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			out = append(out, int64(v))
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}
