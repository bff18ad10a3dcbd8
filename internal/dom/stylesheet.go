package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ErrInaccessible is returned when the rules of a stylesheet cannot be read
// because the sheet is cross-origin or could not be fetched.
var ErrInaccessible = errors.New("stylesheet rules are not accessible")

// errNotLoaded marks a linked stylesheet nothing fetched yet.
var errNotLoaded = errors.New("stylesheet was not loaded")

// StyleSheet is a stylesheet attached to a document, either embedded with
// <style> or linked with <link rel="stylesheet">.
type StyleSheet struct {
	// Href is the absolute URL of a linked stylesheet, empty for <style>.
	Href string

	// Owner is the <style> or <link> element the sheet comes from.
	Owner *html.Node

	// CrossOrigin is set when the sheet was served from another origin
	// than the document. Its rules still apply to the page but cannot be
	// enumerated, like in a browser.
	CrossOrigin bool

	rules   []*Rule
	applied []*Rule
	loadErr error
}

// ParseStyleSheet parses CSS text into a stylesheet. Rules and
// declarations that cannot be parsed are dropped one by one, so an embedded
// sheet is always readable. Only style rules are kept: at-rules have no
// selector and never match an element.
func ParseStyleSheet(text string) *StyleSheet {
	sheet := &StyleSheet{}
	sheet.load(text)
	return sheet
}

func (s *StyleSheet) load(text string) {
	s.rules, s.applied = nil, nil
	for _, raw := range splitRules(tokenize(text)) {
		if raw.atRule || raw.prelude == "" {
			continue
		}
		rule, nested := newRule(raw)
		if rule == nil {
			continue
		}
		s.rules = append(s.rules, rule)
		s.applied = append(s.applied, rule)
		s.applied = append(s.applied, nested...)
	}
	s.loadErr = nil
}

// Rules returns the style rules of the sheet in source order.
// The error wraps ErrInaccessible when the rules cannot be enumerated.
func (s *StyleSheet) Rules() ([]*Rule, error) {
	if s.loadErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInaccessible, s.Name(), s.loadErr)
	}
	if s.CrossOrigin {
		return nil, fmt.Errorf("%w: %s is cross-origin", ErrInaccessible, s.Name())
	}
	return s.rules, nil
}

// Accessible reports whether Rules succeeds.
func (s *StyleSheet) Accessible() bool {
	return s.loadErr == nil && !s.CrossOrigin
}

// Name identifies the sheet in logs and reports.
func (s *StyleSheet) Name() string {
	if s.Href != "" {
		return s.Href
	}
	return "<style>"
}

// appliedRules returns the rules taking part in the cascade, nested rules
// following their parent. Cross-origin rules apply even though they cannot
// be enumerated.
func (s *StyleSheet) appliedRules() []*Rule {
	if s.loadErr != nil {
		return nil
	}
	return s.applied
}

// Rule is a style rule: a selector list and a declaration block.
type Rule struct {
	// Selector is the selector text as written.
	Selector string

	// Declarations is the declaration block of the rule.
	Declarations Declarations

	selectors []cascadia.Sel
}

// newRule builds a top-level rule and flattens its nested rules, with
// their selectors resolved against the parent. A rule whose selector list
// has no parsable selector is invalid and dropped with its nested rules.
func newRule(raw rawRule) (*Rule, []*Rule) {
	if !parsableSelectorList(raw.prelude) {
		return nil, nil
	}
	decls, nestedRaw := parseBlock(raw.body)
	rule := NewRule(raw.prelude, decls)

	var nested []*Rule
	for _, n := range nestedRaw {
		if n.atRule || n.prelude == "" {
			continue
		}
		child, grandChildren := newRule(rawRule{
			prelude: nestedSelector(raw.prelude, n.prelude),
			body:    n.body,
		})
		if child == nil {
			continue
		}
		nested = append(nested, child)
		nested = append(nested, grandChildren...)
	}
	return rule, nested
}

// NewRule builds a rule from selector text and declarations.
func NewRule(selector string, decls Declarations) *Rule {
	return &Rule{
		Selector:     selector,
		Declarations: decls,
		selectors:    compileSelectors(splitSelectorList(selector)),
	}
}

// Value returns the value the rule declares for property, or "".
func (r *Rule) Value(property string) string {
	return r.Declarations.Get(property)
}

// Matches reports whether any selector of the rule matches n.
func (r *Rule) Matches(n *html.Node) bool {
	_, ok := r.specificityFor(n)
	return ok
}

// specificityFor returns the highest specificity among the selectors of
// the rule matching n.
func (r *Rule) specificityFor(n *html.Node) (cascadia.Specificity, bool) {
	var (
		best    cascadia.Specificity
		matched bool
	)
	if n == nil || n.Type != html.ElementNode {
		return best, false
	}
	for _, sel := range r.selectors {
		if !sel.Match(n) {
			continue
		}
		spec := sel.Specificity()
		if !matched || best.Less(spec) {
			best = spec
		}
		matched = true
	}
	return best, matched
}

func parsableSelectorList(list string) bool {
	for _, text := range splitSelectorList(list) {
		if _, err := cascadia.Parse(text); err == nil {
			return true
		}
	}
	return false
}

// compileSelectors parses each selector of a list on its own. Selectors
// cascadia does not support, and selectors addressing a pseudo-element,
// can never match an element and are dropped.
func compileSelectors(list []string) []cascadia.Sel {
	sels := make([]cascadia.Sel, 0, len(list))
	for _, text := range list {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sel, err := cascadia.Parse(text)
		if err != nil {
			continue
		}
		if sel.PseudoElement() != "" {
			continue
		}
		sels = append(sels, sel)
	}
	return sels
}
