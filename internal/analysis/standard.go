package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StandardAnalyzer splits on anything that is not a letter, digit or
// underscore and lowercases the result.
type StandardAnalyzer struct{}

func NewStandardAnalyzer() *StandardAnalyzer {
	return &StandardAnalyzer{}
}

func (a *StandardAnalyzer) Analyze(text string) []Token {
	var tokens []Token
	pos := 0
	i := 0

	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isWordRune(r) {
			i += size
			continue
		}

		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isWordRune(r) {
				break
			}
			i += size
		}

		if term := strings.ToLower(text[start:i]); term != "" && len(term) <= MaxTermLength {
			tokens = append(tokens, Token{Term: term, Position: pos})
			pos++
		}
	}
	return tokens
}

func (a *StandardAnalyzer) Normalize(term string) string {
	return strings.ToLower(term)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// WhitespaceAnalyzer splits text on whitespace and keeps case.
type WhitespaceAnalyzer struct{}

func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

func (a *WhitespaceAnalyzer) Analyze(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		if len(f) > MaxTermLength {
			continue
		}
		tokens = append(tokens, Token{Term: f, Position: len(tokens)})
	}
	return tokens
}

func (a *WhitespaceAnalyzer) Normalize(term string) string {
	return term
}

// KeywordAnalyzer emits the whole input as one token.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

func (a *KeywordAnalyzer) Analyze(text string) []Token {
	if text == "" || len(text) > MaxTermLength {
		return nil
	}
	return []Token{{Term: text}}
}

func (a *KeywordAnalyzer) Normalize(term string) string {
	return term
}
