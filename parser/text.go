package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	lineBreaks      = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
)

// CleanText turns a snippet of block markup into plain text: line-break
// markup becomes "\n", tags are stripped (script and style bodies dropped),
// entities are decoded, non-breaking spaces become spaces and repeated
// whitespace is collapsed.
func CleanText(input string) string {
	if input == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "script", "style":
				if tt == html.StartTagToken {
					skipDepth++
				}
			case "td", "th":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "tr", "li", "div", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte('\n')
			}
		}
	}

	value := strings.ReplaceAll(b.String(), "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	value = strings.ReplaceAll(value, "\u00a0", " ")
	value = horizontalSpace.ReplaceAllString(value, " ")
	value = lineBreaks.ReplaceAllString(value, "\n")
	return strings.TrimSpace(value)
}

// indexFold is a case-insensitive strings.Index. It returns the byte offset
// and the byte length of the match, or -1.
func indexFold(s, substr string) (int, int) {
	n := len(substr)
	if n == 0 {
		return 0, 0
	}
	for i := 0; i+n <= len(s); {
		if strings.EqualFold(s[i:i+n], substr) {
			return i, n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

func containsFold(s, substr string) bool {
	i, _ := indexFold(s, substr)
	return i >= 0
}

// compactUnique drops empty strings and later duplicates.
func compactUnique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
