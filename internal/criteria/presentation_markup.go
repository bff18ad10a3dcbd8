package criteria

import (
	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// TagPresentationMarkup is the tag of PresentationMarkup.
const TagPresentationMarkup = "10.1"

// presentationalTags are elements whose only purpose is presentation.
var presentationalTags = map[string]bool{
	"basefont": true, "big": true, "blink": true, "center": true, "font": true,
	"marquee": true, "s": true, "strike": true, "tt": true,
}

// presentationalAttributes are forbidden on every element.
var presentationalAttributes = []string{
	"align", "alink", "background", "bgcolor", "border", "cellpadding",
	"cellspacing", "char", "charoff", "clear", "color", "compact",
	"frameborder", "hspace", "link", "marginheight", "marginwidth", "text",
	"valign", "vlink", "vspace",
}

// dimensionExempt are elements on which width and height are content
// attributes rather than presentation.
var dimensionExempt = map[string]bool{
	"img": true, "object": true, "embed": true, "canvas": true, "svg": true, "source": true,
}

// PresentationMarkup checks RGAA criteria 10.1: presentation must be
// controlled by stylesheets, so presentational tags and attributes are
// reported.
type PresentationMarkup struct{}

// NewPresentationMarkup returns the 10.1 criteria.
func NewPresentationMarkup() PresentationMarkup {
	return PresentationMarkup{}
}

// Tag implements Criteria.
func (PresentationMarkup) Tag() string {
	return TagPresentationMarkup
}

// Title implements Criteria.
func (PresentationMarkup) Title() string {
	return "Dans le site web, des feuilles de styles sont-elles utilisées pour contrôler la présentation de l’information ?"
}

// Describe implements Criteria.
func (c PresentationMarkup) Describe() model.Information {
	return model.Information{
		Criteria: c.Title(),
		Links:    []string{"https://accessibilite.numerique.gouv.fr/methode/criteres-et-tests/#10.1"},
		Advices: []string{
			"Remplacer les balises de présentation (font, center, big...) par des styles CSS",
			"Remplacer les attributs de présentation (align, bgcolor, border...) par des styles CSS",
		},
	}
}

// Options implements Criteria.
func (PresentationMarkup) Options() []model.OptionInfo {
	return CommonOptions()
}

// Run implements Criteria.
func (c PresentationMarkup) Run(env Env, opts ExecuteOptions) *model.Result {
	if opts.logEnabled() {
		env.reporter().Progress(c.Tag(), "Starting scan")
	}

	result := model.NewForbiddenResult(c.Inspect(env))

	if opts.logEnabled() {
		env.reporter().Result(c.Tag(), c.Title(), result)
	}
	if opts.NoReturn {
		return nil
	}
	return result
}

// Inspect collects the presentational markup of env.Document. Elements are
// listed in document order under each tag and attribute.
func (PresentationMarkup) Inspect(env Env) model.ForbiddenElements {
	found := model.ForbiddenElements{
		Tags:       make(map[string][]model.ElementRef),
		Attributes: make(map[string][]model.ElementRef),
	}
	for _, n := range env.Document.Elements() {
		if n.Namespace != "" {
			continue
		}
		if presentationalTags[n.Data] {
			found.Tags[n.Data] = append(found.Tags[n.Data], dom.Ref(n))
		}
		for _, attr := range forbiddenAttributesOf(n) {
			found.Attributes[attr] = append(found.Attributes[attr], dom.Ref(n))
		}
	}
	return found
}

// forbiddenAttributesOf lists the presentational attributes n carries.
func forbiddenAttributesOf(n *html.Node) []string {
	var attrs []string
	for _, attr := range presentationalAttributes {
		if dom.HasAttr(n, attr) {
			attrs = append(attrs, attr)
		}
	}
	if n.Data != "select" && dom.HasAttr(n, "size") {
		attrs = append(attrs, "size")
	}
	if !dimensionExempt[n.Data] {
		for _, attr := range []string{"width", "height"} {
			if dom.HasAttr(n, attr) {
				attrs = append(attrs, attr)
			}
		}
	}
	return attrs
}
