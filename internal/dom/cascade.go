package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// candidate is a declaration competing in the cascade for one property.
type candidate struct {
	value       string
	important   bool
	inline      bool
	specificity cascadia.Specificity
	order       int
}

// beats reports whether c wins over other.
// Importance first, then inline style, then specificity, then source order.
func (c candidate) beats(other candidate) bool {
	if c.important != other.important {
		return c.important
	}
	if c.inline != other.inline {
		return c.inline
	}
	if c.specificity != other.specificity {
		return other.specificity.Less(c.specificity)
	}
	return c.order > other.order
}

// cascaded returns the value winning the author cascade for property on n,
// or "" when nothing declares it. User agent styles are not modelled.
func (d *Document) cascaded(n *html.Node, property string) string {
	var (
		best  candidate
		found bool
		order int
	)
	for _, sheet := range d.sheets {
		for _, rule := range sheet.appliedRules() {
			order++
			value, important := rule.Declarations.lookup(property)
			if value == "" {
				continue
			}
			spec, ok := rule.specificityFor(n)
			if !ok {
				continue
			}
			c := candidate{value: value, important: important, specificity: spec, order: order}
			if !found || c.beats(best) {
				best, found = c, true
			}
		}
	}
	if value, important := d.InlineStyle(n).lookup(property); value != "" {
		c := candidate{value: value, important: important, inline: true, order: order + 1}
		if !found || c.beats(best) {
			best, found = c, true
		}
	}
	return best.value
}

// ComputedStyle returns the final colour and background colour of n after
// the cascade and inheritance, serialized like getComputedStyle does.
// It approximates the browser: there is no user agent stylesheet, so links
// and form controls get the inherited colours. A value that is a single
// var() reference is resolved from the inherited custom properties; var()
// inside another function is kept as written.
func (d *Document) ComputedStyle(n *html.Node) model.ColorPair {
	if n == nil || n.Type != html.ElementNode {
		return model.ColorPair{Color: InitialColor, BackgroundColor: InitialBackgroundColor}
	}
	if style, ok := d.computed[n]; ok {
		return style
	}

	parent := d.ComputedStyle(parentElement(n))

	var style model.ColorPair
	switch v := strings.ToLower(d.resolveVar(n, d.cascaded(n, PropertyColor))); v {
	case "", "inherit", "unset", "currentcolor":
		style.Color = parent.Color
	case "initial", "revert", "revert-layer":
		style.Color = InitialColor
	default:
		style.Color = NormalizeColor(v)
	}

	switch v := strings.ToLower(d.resolveVar(n, d.cascaded(n, PropertyBackgroundColor))); v {
	case "", "initial", "unset", "revert", "revert-layer":
		style.BackgroundColor = InitialBackgroundColor
	case "inherit":
		style.BackgroundColor = parent.BackgroundColor
	case "currentcolor":
		style.BackgroundColor = style.Color
	default:
		style.BackgroundColor = NormalizeColor(v)
	}

	d.computed[n] = style
	return style
}

// maxVarDepth bounds var() chains, which also stops reference cycles.
const maxVarDepth = 8

// resolveVar substitutes a value made of one var() reference. A reference
// to an undefined custom property without fallback resolves to "", so the
// property behaves as unset.
func (d *Document) resolveVar(n *html.Node, value string) string {
	return d.substitute(n, value, 0)
}

// substitute resolves a custom property on the element declaring it, as
// its computed value is what descendants inherit. A cyclic or undefined
// reference falls back to the fallback.
func (d *Document) substitute(n *html.Node, value string, depth int) string {
	name, fallback, ok := parseVar(value)
	if !ok {
		return value
	}
	if depth >= maxVarDepth {
		return ""
	}
	if v, owner := d.customProperty(n, name); v != "" {
		if v = d.substitute(owner, v, depth+1); v != "" {
			return v
		}
	}
	return d.substitute(n, fallback, depth+1)
}

// customProperty returns the value of a custom property on n and the
// element it is declared on. Custom properties are inherited.
func (d *Document) customProperty(n *html.Node, name string) (string, *html.Node) {
	for e := n; e != nil; e = parentElement(e) {
		if v := d.cascaded(e, name); v != "" {
			return v, e
		}
	}
	return "", nil
}

// parseVar splits "var(--name, fallback)". It fails unless the whole
// value is that one reference.
func parseVar(value string) (name, fallback string, ok bool) {
	v := strings.TrimSpace(value)
	if len(v) < 6 || !strings.EqualFold(v[:4], "var(") {
		return "", "", false
	}
	depth, comma := 1, -1
	for i := 4; i < len(v); i++ {
		switch v[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(v)-1 {
				return "", "", false
			}
		case ',':
			if depth == 1 && comma < 0 {
				comma = i
			}
		}
	}
	if depth != 0 {
		return "", "", false
	}
	inner := v[4 : len(v)-1]
	name = inner
	if comma >= 0 {
		name, fallback = v[4:comma], strings.TrimSpace(v[comma+1:len(v)-1])
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "--") {
		return "", "", false
	}
	return name, fallback, true
}

// parentElement returns the closest ancestor element of n, or nil.
func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
