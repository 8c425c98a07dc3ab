package validator

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Attestation is one language's form within a dictionary entry: the
// abbreviated language marker, the cited headwords, and the gloss that
// follows them.
type Attestation struct {
	Language  string
	Headwords []string
	Gloss     string
}

// Entry is one search result: its numeric key, the full rendered text,
// and the per-language attestations parsed out of it.
type Entry struct {
	Key          string
	Text         string
	Attestations []Attestation
}

// glossLimit caps stored gloss and evidence text.
const glossLimit = 200

// notLanguages are italicized tokens that look like language markers
// but reference sources or other dictionaries.
var notLanguages = map[string]bool{
	"Voc":    true,
	"CDIAL":  true,
	"DED":    true,
	"DEDS":   true,
	"Turner": true,
	"Cf":     true,
	"Skt":    true,
}

// parseResults extracts entries from a search result page. Each result
// element holds either one entry directly or, for page-scoped queries,
// several nested entry divs.
func parseResults(content string) ([]Entry, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	walk(doc, func(n *html.Node) bool {
		if !isResultDiv(n) {
			return true
		}
		for _, container := range entryContainers(n) {
			if e := parseEntry(container); e.Text != "" {
				entries = append(entries, e)
			}
		}
		return false
	})
	return entries, nil
}

// entryContainers locates the entry-bearing nodes inside a result div:
// blockquotes when present, otherwise direct child divs, otherwise the
// result div itself.
func entryContainers(result *html.Node) []*html.Node {
	var quotes []*html.Node
	walk(result, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "blockquote" {
			quotes = append(quotes, n)
			return false
		}
		return true
	})
	if len(quotes) > 0 {
		return quotes
	}

	var divs []*html.Node
	for c := result.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "div" {
			divs = append(divs, c)
		}
	}
	if len(divs) > 0 {
		return divs
	}
	return []*html.Node{result}
}

// parseEntry reads one entry node: key, flattened text, attestations.
func parseEntry(n *html.Node) Entry {
	e := Entry{Text: flattenText(n)}
	e.Key = entryKey(n, e.Text)
	e.Attestations = parseAttestations(n)
	return e
}

// entryKey finds the entry's numeric key, preferring an explicit number
// element over the leading digits of the rendered text.
func entryKey(n *html.Node, text string) string {
	var tagged string
	walk(n, func(c *html.Node) bool {
		if tagged != "" {
			return false
		}
		if c.Type == html.ElementNode && c.Data == "number" {
			tagged = strings.TrimSpace(flattenText(c))
			return false
		}
		return true
	})
	if tagged != "" {
		return tagged
	}

	return leadingDigits(text)
}

// leadingDigits returns the digit prefix of a string.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// attScanner accumulates attestations while walking an entry in
// document order. A language marker opens an attestation, bold text
// following it supplies the headwords, and plain text after the
// headwords is the gloss until the next marker.
type attScanner struct {
	atts      []Attestation
	language  string
	headwords strings.Builder
	gloss     strings.Builder
}

// parseAttestations walks an entry node collecting per-language forms.
// The rendering alternates italic language markers with bold headwords,
// in both nesting orders, so the scanner is position based rather than
// structural.
func parseAttestations(n *html.Node) []Attestation {
	s := &attScanner{}
	s.scan(n, false)
	s.flush()
	return s.atts
}

func (s *attScanner) scan(n *html.Node, bold bool) {
	switch {
	case n.Type == html.ElementNode && n.Data == "i":
		if token := strings.TrimSpace(flattenText(n)); isLanguageMarker(token) {
			s.flush()
			s.language = token
			return
		}
		// Italic source citations are kept out of the gloss.
		return
	case n.Type == html.ElementNode && n.Data == "b":
		bold = true
	case n.Type == html.TextNode:
		s.text(n.Data, bold)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.scan(c, bold)
	}
}

// text routes a text fragment to the current attestation.
func (s *attScanner) text(fragment string, bold bool) {
	if s.language == "" {
		return
	}
	if bold {
		if s.gloss.Len() == 0 {
			s.headwords.WriteString(fragment)
		}
		return
	}
	if s.headwords.Len() > 0 {
		s.gloss.WriteString(fragment)
	}
}

// flush finalizes the attestation under construction.
func (s *attScanner) flush() {
	defer func() {
		s.language = ""
		s.headwords.Reset()
		s.gloss.Reset()
	}()

	if s.language == "" {
		return
	}

	var headwords []string
	for _, hw := range strings.Split(s.headwords.String(), ",") {
		hw = strings.TrimSpace(hw)
		if len([]rune(hw)) > 1 && !strings.HasPrefix(hw, "(") {
			headwords = append(headwords, hw)
		}
	}
	if len(headwords) == 0 {
		return
	}

	gloss := strings.Join(strings.Fields(s.gloss.String()), " ")
	if cut := strings.Index(gloss, " / "); cut >= 0 {
		gloss = gloss[:cut]
	}
	gloss = truncate(strings.TrimSpace(gloss), glossLimit)

	s.atts = append(s.atts, Attestation{
		Language:  s.language,
		Headwords: headwords,
		Gloss:     gloss,
	})
}

// isLanguageMarker reports whether an italic token is a language
// abbreviation: a capitalized letters-only word, optionally dotted.
func isLanguageMarker(token string) bool {
	trimmed := strings.TrimSuffix(token, ".")
	if trimmed == "" || notLanguages[trimmed] {
		return false
	}
	runes := []rune(trimmed)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// flattenText returns a node's text content with whitespace collapsed.
func flattenText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// truncate caps a string at limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// walk visits nodes depth-first. The visitor returns false to skip a
// node's subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// isResultDiv reports whether n is a search result container.
func isResultDiv(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "div" {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, token := range strings.Fields(attr.Val) {
				if token == "hw_result" {
					return true
				}
			}
		}
	}
	return false
}
