package dom

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
)

// CSS is parsed the forgiving way browsers do: a declaration or a rule that
// cannot be parsed is dropped alone and parsing resumes after it.
// gorilla/css splits the text into tokens, so separators inside strings,
// url() and comments never cut a block, and douceur parses each
// declaration on its own.

// rawRule is a top-level or nested rule before its selectors are compiled.
type rawRule struct {
	prelude string
	atRule  bool
	body    []*scanner.Token
}

// tokenize scans text into tokens. Scanning stops at the first tokenizer
// error, such as an unclosed string or comment, as if the text ended there.
func tokenize(text string) []*scanner.Token {
	var tokens []*scanner.Token
	s := scanner.New(text)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func isChar(tok *scanner.Token, c string) bool {
	return tok.Type == scanner.TokenChar && tok.Value == c
}

// closingBrace returns the index of the "}" closing the block opened at
// tokens[open], or len(tokens) when the text ends first.
func closingBrace(tokens []*scanner.Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch {
		case isChar(tokens[i], "{"):
			depth++
		case isChar(tokens[i], "}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(tokens)
}

// firstSignificant returns the first token that is neither whitespace nor
// a comment, or nil.
func firstSignificant(tokens []*scanner.Token) *scanner.Token {
	for _, tok := range tokens {
		if tok.Type != scanner.TokenS && tok.Type != scanner.TokenComment {
			return tok
		}
	}
	return nil
}

// splitRules splits a stylesheet into its top-level rules. A stray "}"
// stays in the prelude of the next rule, which then has an invalid
// selector, and trailing text without a block is dropped.
func splitRules(tokens []*scanner.Token) []rawRule {
	var (
		rules   []rawRule
		prelude []*scanner.Token
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case isChar(tok, "{"):
			end := closingBrace(tokens, i)
			rules = append(rules, newRawRule(prelude, tokens[i+1:min(end, len(tokens))]))
			prelude = nil
			i = end
		case isChar(tok, ";") && isAtRule(prelude):
			// @import, @charset and the like
			prelude = nil
		case firstSignificant(prelude) == nil &&
			(tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment ||
				tok.Type == scanner.TokenCDO || tok.Type == scanner.TokenCDC || tok.Type == scanner.TokenBOM):
			// nothing started yet
		default:
			prelude = append(prelude, tok)
		}
	}
	return rules
}

func isAtRule(prelude []*scanner.Token) bool {
	first := firstSignificant(prelude)
	return first != nil && first.Type == scanner.TokenAtKeyword
}

func newRawRule(prelude, body []*scanner.Token) rawRule {
	return rawRule{
		prelude: joinTokens(prelude, false),
		atRule:  isAtRule(prelude),
		body:    body,
	}
}

// parseBlock splits the content of a declaration block into its valid
// declarations and its nested rules.
func parseBlock(tokens []*scanner.Token) (Declarations, []rawRule) {
	var (
		decls  Declarations
		nested []rawRule
		piece  []*scanner.Token
		parens int
	)
	flush := func() {
		if d, ok := parseDeclaration(piece); ok {
			decls = append(decls, d)
		}
		piece = nil
	}
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Type == scanner.TokenFunction || isChar(tok, "(") || isChar(tok, "["):
			parens++
		case isChar(tok, ")") || isChar(tok, "]"):
			if parens > 0 {
				parens--
			}
		case parens == 0 && isChar(tok, ";"):
			flush()
			continue
		case isChar(tok, "{"):
			end := closingBrace(tokens, i)
			nested = append(nested, newRawRule(piece, tokens[i+1:min(end, len(tokens))]))
			piece = nil
			parens = 0
			i = end
			continue
		}
		piece = append(piece, tok)
	}
	flush()
	return decls, nested
}

// parseDeclaration parses one "property: value" piece. Pieces douceur
// rejects, pieces with an invalid property name and pieces with an empty
// value are invalid, as in a browser.
func parseDeclaration(piece []*scanner.Token) (Declaration, bool) {
	first := firstSignificant(piece)
	if first == nil || (first.Type != scanner.TokenIdent && !isChar(first, "-")) {
		return Declaration{}, false
	}
	decls, err := parser.ParseDeclarations(joinTokens(piece, true) + ";")
	if err != nil || len(decls) != 1 {
		return Declaration{}, false
	}
	d := Declaration{
		Property:  strings.ToLower(strings.TrimSpace(decls[0].Property)),
		Value:     strings.TrimSpace(decls[0].Value),
		Important: decls[0].Important,
	}
	if d.Property == "" || strings.ContainsAny(d.Property, " \t\r\n\f") || d.Value == "" {
		return Declaration{}, false
	}
	return d, true
}

// joinTokens rebuilds the text of tokens without comments. In values a
// comment separates the tokens around it, so it becomes a space; runs of
// whitespace collapse to one space.
func joinTokens(tokens []*scanner.Token, commentIsSpace bool) string {
	var (
		sb      strings.Builder
		lastWS  bool
		written bool
	)
	for _, tok := range tokens {
		switch tok.Type {
		case scanner.TokenComment:
			if !commentIsSpace {
				continue
			}
			fallthrough
		case scanner.TokenS:
			if written && !lastWS {
				sb.WriteByte(' ')
				lastWS = true
			}
			continue
		}
		sb.WriteString(tok.Value)
		lastWS = false
		written = true
	}
	return strings.TrimSpace(sb.String())
}

// nestedSelector resolves the selector of a nested rule against the
// selector list of its parent. "&" stands for the parent; a selector
// without "&" is a descendant of it.
func nestedSelector(parent, child string) string {
	var out []string
	for _, p := range splitSelectorList(parent) {
		for _, c := range splitSelectorList(child) {
			if strings.Contains(c, "&") {
				out = append(out, strings.ReplaceAll(c, "&", p))
				continue
			}
			out = append(out, p+" "+c)
		}
	}
	return strings.Join(out, ", ")
}

// splitSelectorList splits a selector list on commas outside parentheses
// and brackets.
func splitSelectorList(list string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range list {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(list[start:i]); s != "" {
					parts = append(parts, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(list[start:]); s != "" {
		parts = append(parts, s)
	}
	return parts
}
