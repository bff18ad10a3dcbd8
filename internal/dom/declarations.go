package dom

import "strings"

// CSS properties inspected by the criteria.
const (
	PropertyColor           = "color"
	PropertyBackgroundColor = "background-color"
	propertyBackground      = "background"
)

// Declaration is a single "property: value" pair of a declaration block.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Declarations is a declaration block in source order.
type Declarations []Declaration

// ParseDeclarations parses the content of a style attribute. Like a
// browser it drops invalid declarations one by one: empty pieces, pieces
// without a value and pieces that do not parse. Comments are removed.
func ParseDeclarations(text string) Declarations {
	decls, _ := parseBlock(tokenize(text))
	return decls
}

// Get returns the value the block declares for property, or "" when it
// declares none. It follows what CSSStyleDeclaration reports: the last
// declaration wins unless an earlier one is !important.
// For background-color the background shorthand counts as a declaration.
func (d Declarations) Get(property string) string {
	v, _ := d.lookup(property)
	return v
}

// lookup is Get that also reports whether the winning declaration is !important.
func (d Declarations) lookup(property string) (string, bool) {
	var (
		value     string
		important bool
	)
	for _, decl := range d {
		v, ok := declaredFor(decl, property)
		if !ok || v == "" {
			continue
		}
		if important && !decl.Important {
			continue
		}
		value, important = v, decl.Important
	}
	return value, important
}

// declaredFor extracts the value decl sets for property, if any.
func declaredFor(decl Declaration, property string) (string, bool) {
	if decl.Property == property {
		return decl.Value, true
	}
	if property == PropertyBackgroundColor && decl.Property == propertyBackground {
		return backgroundColorFromShorthand(decl.Value), true
	}
	return "", false
}

// backgroundKeywords are background shorthand tokens that are not colours.
var backgroundKeywords = map[string]bool{
	"none": true, "repeat": true, "no-repeat": true, "repeat-x": true,
	"repeat-y": true, "space": true, "round": true, "scroll": true,
	"fixed": true, "local": true, "top": true, "bottom": true, "left": true,
	"right": true, "center": true, "border-box": true, "padding-box": true,
	"content-box": true, "text": true, "auto": true, "cover": true,
	"contain": true,
}

// cssWideKeywords apply to the whole shorthand.
var cssWideKeywords = map[string]bool{
	"inherit": true, "initial": true, "unset": true, "revert": true, "revert-layer": true,
}

// backgroundColorFromShorthand returns the background-color set by a
// background shorthand value. A shorthand without a colour resets the
// longhand, which the CSSOM reports as "initial".
func backgroundColorFromShorthand(value string) string {
	tokens := splitTokens(value)
	if len(tokens) == 1 && cssWideKeywords[strings.ToLower(tokens[0])] {
		return strings.ToLower(tokens[0])
	}
	for _, tok := range tokens {
		if isColorToken(tok) {
			return tok
		}
	}
	return "initial"
}

// isColorToken reports whether a shorthand token can only be a colour.
func isColorToken(tok string) bool {
	lower := strings.ToLower(tok)
	switch {
	case lower == "":
		return false
	case strings.HasPrefix(lower, "#"):
		return true
	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") ||
		strings.HasPrefix(lower, "hsl(") || strings.HasPrefix(lower, "hsla(") ||
		strings.HasPrefix(lower, "hwb(") || strings.HasPrefix(lower, "lab(") ||
		strings.HasPrefix(lower, "lch(") || strings.HasPrefix(lower, "oklab(") ||
		strings.HasPrefix(lower, "oklch(") || strings.HasPrefix(lower, "color("):
		return true
	case strings.Contains(lower, "("):
		// url(), gradients, var() and the like
		return false
	case backgroundKeywords[lower] || cssWideKeywords[lower]:
		return false
	case lower[0] == '-' || lower[0] == '.' || (lower[0] >= '0' && lower[0] <= '9'):
		// lengths, percentages and vendor keywords
		return false
	}
	return true
}

// splitTokens splits a value on whitespace and slashes outside parentheses.
func splitTokens(value string) []string {
	var (
		tokens []string
		cur    strings.Builder
		depth  int
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range value {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '/'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
