package model

import (
	"strings"
	"unicode/utf8"
)

// ExcerptLength is the number of characters of element text shown in reports.
const ExcerptLength = 50

// ColorPair holds a foreground and a background colour value as CSS strings.
// An empty string means "not declared".
type ColorPair struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
}

// Anomaly is an element declaring a text colour without a background colour,
// or the other way around.
type Anomaly struct {
	// Element identifies the offending element.
	Element ElementRef `json:"element"`

	// Text is the element's text content when it was inspected.
	Text string `json:"text"`

	// Declared is what the element's inline style and matching rules declare.
	Declared ColorPair `json:"cssRulesStyle"`

	// Computed is the final style after the cascade and inheritance.
	Computed ColorPair `json:"computedStyle"`
}

// Excerpt returns the text of the element without line breaks or double
// spaces, cut to ExcerptLength characters. An ellipsis is appended when the
// text was cut.
func (a Anomaly) Excerpt() string {
	text := RemoveBreaks(a.Text)
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:ExcerptLength]) + "..."
}

var breakReplacer = strings.NewReplacer("  ", "", "\r\n", "", "\n", "", "\r", "")

// RemoveBreaks drops line breaks and double spaces from s.
func RemoveBreaks(s string) string {
	return breakReplacer.Replace(s)
}

// Plural returns "s" when n is greater than one.
func Plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
