// Package analysis turns field text into index terms.
package analysis

// Built-in analyzer names.
const (
	Standard   = "standard"
	Whitespace = "whitespace"
	Keyword    = "keyword"
)

// MaxTermLength is the longest term, in bytes, an analyzer emits.
// Longer tokens are dropped.
const MaxTermLength = 32 * 1024

// Token is one term produced by an analyzer.
type Token struct {
	Term     string
	Position int
}

// Analyzer splits text into tokens and normalizes query terms the same way
// it normalizes indexed terms. Implementations are stateless.
type Analyzer interface {
	Analyze(text string) []Token

	// Normalize maps a single query term onto the index vocabulary without
	// splitting it.
	Normalize(term string) string
}

// TermFreqs counts how often each term occurs in text.
func TermFreqs(a Analyzer, text string) map[string]uint32 {
	tokens := a.Analyze(text)
	freqs := make(map[string]uint32, len(tokens))
	for _, tok := range tokens {
		freqs[tok.Term]++
	}
	return freqs
}
