package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/etymscan/etymscan/internal/record"
)

// CSS class names emitted by the source database's CGI renderer.
const (
	classRecord   = "results_record"
	classField    = "fld"
	classValue    = "unicode"
	classSubquery = "subquery_link"
)

// Block is one extracted record: its fields in page order plus the
// resolved URLs of its expandable sub-entries.
type Block struct {
	// Fields holds the labeled values found on the record, minus any
	// dropped etymology back-references.
	Fields []record.Field

	// Links holds the child query URLs discovered behind expand
	// markers, in page order.
	Links []string
}

// Extractor turns page content into Blocks. It carries the page URL so
// relative follow-up query payloads can be resolved.
type Extractor struct {
	baseURL *url.URL
}

// New creates an Extractor for a page fetched from the given URL.
func New(pageURL string) (*Extractor, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u}, nil
}

// Extract parses page content and returns one Block per record element.
// A page without record elements yields an empty slice; a record element
// without recognizable fields yields an empty Block. Neither is an error:
// malformed pages are valid-but-empty input.
func (e *Extractor) Extract(content string) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse only fails on reader errors; a string reader
		// cannot produce one, but keep the contract honest.
		return nil, err
	}

	var blocks []Block
	walk(doc, func(n *html.Node) bool {
		if isDivClass(n, classRecord) {
			blocks = append(blocks, e.extractBlock(n))
			return false // records do not nest
		}
		return true
	})
	return blocks, nil
}

// extractBlock parses a single record element. Each direct div child is
// one labeled row: a field span naming it, a value, and optionally an
// expand marker pointing at a sub-entry query.
func (e *Extractor) extractBlock(recordNode *html.Node) Block {
	var block Block

	for row := recordNode.FirstChild; row != nil; row = row.NextSibling {
		if row.Type != html.ElementNode || row.Data != "div" {
			continue
		}

		name, value := extractField(row)
		if name == "" {
			continue
		}

		// Etymology fields are back-references to the parent entry.
		// Drop the field and never follow its expand marker, or the
		// traversal re-enters the page it just came from.
		if strings.Contains(strings.ToLower(name), "etymology") {
			continue
		}

		block.Fields = append(block.Fields, record.Field{Name: name, Value: value})

		if link := e.expandLink(row); link != "" {
			block.Links = append(block.Links, link)
		}
	}
	return block
}

// extractField pulls the label and value out of a row div. The label is
// the text of the field span with trailing colons and whitespace
// stripped. The value is the unicode span when present, otherwise the
// row's remaining text after removing the label once.
func extractField(row *html.Node) (name, value string) {
	fieldSpan := findClass(row, "span", classField)
	if fieldSpan == nil {
		return "", ""
	}
	name = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(nodeText(fieldSpan)), ":"))
	if name == "" {
		return "", ""
	}

	if valueSpan := findClass(row, "span", classValue); valueSpan != nil {
		return name, strings.TrimSpace(nodeText(valueSpan))
	}

	full := strings.TrimSpace(nodeText(row))
	value = strings.TrimSpace(strings.Replace(full, nodeText(fieldSpan), "", 1))
	value = strings.TrimSpace(strings.TrimPrefix(value, ":"))
	return name, value
}

// onclickPayload captures the single-quoted follow-up query inside an
// expand marker's onclick handler.
var onclickPayload = regexp.MustCompile(`'([^']+)'`)

// expandLink returns the resolved child URL behind a row's expand
// marker, or "" when the row has none. Only sub-elements explicitly
// marked with a subquery block count; ordinary links are not children.
func (e *Extractor) expandLink(row *html.Node) string {
	sub := findClass(row, "div", classSubquery)
	if sub == nil {
		return ""
	}

	var onclick string
	walk(sub, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			if v := getAttr(n, "onclick"); v != "" {
				onclick = v
				return false
			}
		}
		return true
	})
	if onclick == "" {
		return ""
	}

	m := onclickPayload.FindStringSubmatch(onclick)
	if m == nil {
		return ""
	}

	ref, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return e.baseURL.ResolveReference(ref).String()
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

// isDivClass reports whether n is a div carrying the given class.
func isDivClass(n *html.Node, class string) bool {
	return n.Type == html.ElementNode && n.Data == "div" && hasClass(n, class)
}

// findClass returns the first descendant element with the given tag and
// class, or nil.
func findClass(n *html.Node, tag, class string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c != n && c.Type == html.ElementNode && c.Data == tag && hasClass(c, class) {
			found = c
			return false
		}
		return true
	})
	return found
}

// hasClass reports whether an element's class attribute contains the
// given class token.
func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(getAttr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}
