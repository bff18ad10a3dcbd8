package dom

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Document is a read-only snapshot of a parsed HTML page and the
// stylesheets attached to it. Nothing in this module mutates the parse tree
// once the snapshot is built.
//
// A Document caches inline styles and computed styles lazily and is not
// safe for concurrent use.
type Document struct {
	root     *html.Node
	url      *url.URL
	sheets   []*StyleSheet
	elements []*html.Node
	inline   map[*html.Node]Declarations
	computed map[*html.Node]model.ColorPair
}

// NewDocument wraps a parse tree and its stylesheets, given in document order.
func NewDocument(root *html.Node, base *url.URL, sheets []*StyleSheet) *Document {
	return &Document{
		root:     root,
		url:      base,
		sheets:   sheets,
		inline:   make(map[*html.Node]Declarations),
		computed: make(map[*html.Node]model.ColorPair),
	}
}

// Parse parses HTML from r. Embedded <style> sheets are parsed; linked
// sheets are attached but left unloaded, so their rules are inaccessible.
// Use a Loader to fetch them.
func Parse(r io.Reader, base *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewDocument(root, base, collectStyleSheets(root, base)), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s), nil)
}

// Root returns the document node of the parse tree.
func (d *Document) Root() *html.Node {
	return d.root
}

// URL returns the location the document was loaded from, or nil.
func (d *Document) URL() *url.URL {
	return d.url
}

// StyleSheets returns the stylesheets attached to the document, in document order.
func (d *Document) StyleSheets() []*StyleSheet {
	return d.sheets
}

// Elements returns every element of the document in depth-first pre-order,
// from the root element to the leaves.
func (d *Document) Elements() []*html.Node {
	if d.elements != nil {
		return d.elements
	}
	d.elements = make([]*html.Node, 0, 64)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			d.elements = append(d.elements, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if d.root != nil {
		walk(d.root)
	}
	return d.elements
}

// QuerySelectorAll returns the elements matching a selector list, in
// document order. An invalid selector list matches nothing.
func (d *Document) QuerySelectorAll(selector string) []*html.Node {
	rule := NewRule(selector, nil)
	var matched []*html.Node
	for _, n := range d.Elements() {
		if rule.Matches(n) {
			matched = append(matched, n)
		}
	}
	return matched
}

// InlineStyle returns the declarations of the style attribute of n.
func (d *Document) InlineStyle(n *html.Node) Declarations {
	if decls, ok := d.inline[n]; ok {
		return decls
	}
	decls := ParseDeclarations(Attr(n, "style"))
	d.inline[n] = decls
	return decls
}

// Attr returns the value of attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of n and its descendants,
// normalized to NFC.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return norm.NFC.String(sb.String())
}

// Ref builds the serializable reference of an element.
func Ref(n *html.Node) model.ElementRef {
	return model.ElementRef{Node: n, Tag: n.Data, Path: ElementPath(n)}
}

// ElementPath returns a CSS path locating n. The path starts at the closest
// ancestor with an id, or at the root element.
func ElementPath(n *html.Node) string {
	var parts []string
	for e := n; e != nil && e.Type == html.ElementNode; e = parentElement(e) {
		if id := Attr(e, "id"); id != "" && !strings.ContainsAny(id, " \t\n") {
			parts = append(parts, e.Data+"#"+id)
			break
		}
		parent := parentElement(e)
		if parent == nil {
			parts = append(parts, e.Data)
			break
		}
		parts = append(parts, e.Data+":nth-child("+strconv.Itoa(childIndex(e))+")")
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// childIndex returns the 1-based position of n among its element siblings.
func childIndex(n *html.Node) int {
	i := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}

// collectStyleSheets walks the tree in document order and returns one
// stylesheet per <style> element and per <link rel="stylesheet">.
func collectStyleSheets(root *html.Node, base *url.URL) []*StyleSheet {
	var sheets []*StyleSheet
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Style:
				sheet := &StyleSheet{Owner: n}
				sheet.load(TextContent(n))
				sheets = append(sheets, sheet)
			case atom.Link:
				if isStyleSheetLink(n) {
					sheets = append(sheets, &StyleSheet{
						Owner:   n,
						Href:    resolveHref(base, Attr(n, "href")),
						loadErr: errNotLoaded,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return sheets
}

func isStyleSheetLink(n *html.Node) bool {
	if Attr(n, "href") == "" || HasAttr(n, "disabled") {
		return false
	}
	for _, rel := range strings.Fields(strings.ToLower(Attr(n, "rel"))) {
		if rel == "alternate" {
			return false
		}
	}
	for _, rel := range strings.Fields(strings.ToLower(Attr(n, "rel"))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
