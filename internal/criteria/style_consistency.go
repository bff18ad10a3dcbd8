package criteria

import (
	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// TagStyleConsistency is the tag of StyleConsistency.
const TagStyleConsistency = "10.5"

// StyleConsistency checks RGAA criteria 10.5: an element declaring a text
// colour must also declare a background colour, and the other way around.
// Otherwise the undeclared half comes from the user's settings and the text
// may become unreadable.
//
// Declared values are resolved naively: the inline style first, then every
// matching rule of every readable stylesheet in enumeration order, each
// non-empty value overwriting the previous one. Specificity and !important
// between rules are ignored. The computed style is captured for flagged
// elements only, to help a person review them.
type StyleConsistency struct{}

// NewStyleConsistency returns the 10.5 criteria.
func NewStyleConsistency() StyleConsistency {
	return StyleConsistency{}
}

// Tag implements Criteria.
func (StyleConsistency) Tag() string {
	return TagStyleConsistency
}

// Title implements Criteria.
func (StyleConsistency) Title() string {
	return "Dans chaque page web, les déclarations CSS de couleurs de fond d’élément et de police sont-elles correctement utilisées ?"
}

// Describe implements Criteria.
func (c StyleConsistency) Describe() model.Information {
	return model.Information{
		Criteria: c.Title(),
		Links:    []string{"https://accessibilite.numerique.gouv.fr/methode/criteres-et-tests/#10.5"},
		Advices: []string{
			"Rechercher tous les textes de couleur (différentes de la couleur par défaut) et vérifier leurs déclarations",
			"Rechercher tous les backgrounds (différents de la couleur par défaut) et vérifier leurs déclarations",
		},
	}
}

// Options implements Criteria.
func (StyleConsistency) Options() []model.OptionInfo {
	return CommonOptions()
}

// Run implements Criteria.
func (c StyleConsistency) Run(env Env, opts ExecuteOptions) *model.Result {
	if opts.logEnabled() {
		env.reporter().Progress(c.Tag(), "Starting scan (this may take a moment)")
	}

	result := model.NewAnomalyResult(c.Inspect(env))

	if opts.logEnabled() {
		env.reporter().Result(c.Tag(), c.Title(), result)
	}
	if opts.NoReturn {
		return nil
	}
	return result
}

// Inspect returns the anomalies of env.Document in document order.
func (c StyleConsistency) Inspect(env Env) []model.Anomaly {
	doc := env.Document
	rules := readableRules(env)

	var anomalies []model.Anomaly
	for _, n := range doc.Elements() {
		declared := declaredColors(doc, rules, n)
		if (declared.Color != "") == (declared.BackgroundColor != "") {
			continue
		}
		anomalies = append(anomalies, model.Anomaly{
			Element:  dom.Ref(n),
			Text:     dom.TextContent(n),
			Declared: declared,
			Computed: doc.ComputedStyle(n),
		})
	}
	return anomalies
}

// readableRules returns the rules of every readable stylesheet, in
// stylesheet then source order. Unreadable sheets are skipped.
func readableRules(env Env) []*dom.Rule {
	var rules []*dom.Rule
	for _, sheet := range env.Document.StyleSheets() {
		sheetRules, err := sheet.Rules()
		if err != nil {
			env.logger().Debug("skipping stylesheet", "stylesheet", sheet.Name(), "error", err)
			continue
		}
		rules = append(rules, sheetRules...)
	}
	return rules
}

// declaredColors resolves the colours declared for n: inline style, then
// every matching rule in order, last non-empty value wins per property.
func declaredColors(doc Document, rules []*dom.Rule, n *html.Node) model.ColorPair {
	inline := doc.InlineStyle(n)
	declared := model.ColorPair{
		Color:           inline.Get(dom.PropertyColor),
		BackgroundColor: inline.Get(dom.PropertyBackgroundColor),
	}
	for _, rule := range rules {
		if !rule.Matches(n) {
			continue
		}
		if v := rule.Value(dom.PropertyColor); v != "" {
			declared.Color = v
		}
		if v := rule.Value(dom.PropertyBackgroundColor); v != "" {
			declared.BackgroundColor = v
		}
	}
	return declared
}
