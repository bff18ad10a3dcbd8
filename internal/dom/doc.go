// Package dom provides the read-only document snapshot the criteria inspect.
//
// A Document is an HTML parse tree (golang.org/x/net/html) together with
// the stylesheets attached to it, in document order. Embedded <style>
// sheets are parsed at once; linked sheets are fetched by a Loader. Each
// stylesheet exposes its top-level style rules the way the CSSOM does,
// with selectors compiled by cascadia. CSS text is split into tokens by
// gorilla/css and each declaration is parsed by douceur; a rule or
// declaration that does not parse is dropped alone, as in a browser, so an
// embedded sheet is always readable. Nested rules are flattened for the
// cascade but are not listed among the top-level rules.
//
// Document.ComputedStyle approximates getComputedStyle for the color and
// background-color properties: author rules cascade by importance, inline
// origin, specificity and source order, and color is inherited. A value
// made of one var() reference is resolved from the custom properties.
// There is no user agent stylesheet.
package dom
