package analysis

import (
	"slices"
	"strings"
	"testing"
)

func terms(tokens []Token) []string {
	var out []string
	for _, tok := range tokens {
		out = append(out, tok.Term)
	}
	return out
}

func TestStandardAnalyzer(t *testing.T) {
	a := NewStandardAnalyzer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic", "The Quick Brown Fox", []string{"the", "quick", "brown", "fox"}},
		{"empty", "", nil},
		{"punctuation", "hello, world! foo-bar", []string{"hello", "world", "foo", "bar"}},
		{"numbers", "test123 456abc", []string{"test123", "456abc"}},
		{"unicode", "café résumé", []string{"café", "résumé"}},
		{"underscore", "foo_bar", []string{"foo_bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := terms(a.Analyze(tt.input)); !slices.Equal(got, tt.want) {
				t.Errorf("Analyze(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStandardAnalyzer_Positions(t *testing.T) {
	for i, tok := range NewStandardAnalyzer().Analyze("The Quick Brown Fox") {
		if tok.Position != i {
			t.Errorf("token %q position = %d, want %d", tok.Term, tok.Position, i)
		}
	}
}

func TestWhitespaceAnalyzer(t *testing.T) {
	got := terms(NewWhitespaceAnalyzer().Analyze("  Hello\tWorld\n foo-bar "))
	want := []string{"Hello", "World", "foo-bar"}
	if !slices.Equal(got, want) {
		t.Errorf("Analyze = %v, want %v", got, want)
	}
}

func TestKeywordAnalyzer(t *testing.T) {
	a := NewKeywordAnalyzer()
	if got := terms(a.Analyze("New York")); !slices.Equal(got, []string{"New York"}) {
		t.Errorf("Analyze = %v", got)
	}
	if got := a.Analyze(""); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}
}

func TestLongTokensDropped(t *testing.T) {
	long := strings.Repeat("a", MaxTermLength+1)
	if got := NewStandardAnalyzer().Analyze("ok " + long); len(got) != 1 {
		t.Errorf("standard kept %d tokens, want 1", len(got))
	}
	if got := NewWhitespaceAnalyzer().Analyze(long + " ok"); len(got) != 1 || got[0].Position != 0 {
		t.Errorf("whitespace = %+v", got)
	}
	if got := NewKeywordAnalyzer().Analyze(long); got != nil {
		t.Errorf("keyword kept an oversized token")
	}
}

func TestNormalize(t *testing.T) {
	if got := NewStandardAnalyzer().Normalize("HeLLo"); got != "hello" {
		t.Errorf("standard Normalize = %q", got)
	}
	if got := NewWhitespaceAnalyzer().Normalize("HeLLo"); got != "HeLLo" {
		t.Errorf("whitespace Normalize = %q", got)
	}
}

func TestTermFreqs(t *testing.T) {
	freqs := TermFreqs(NewStandardAnalyzer(), "to be or not to be")
	if freqs["to"] != 2 || freqs["be"] != 2 || freqs["or"] != 1 || len(freqs) != 4 {
		t.Errorf("TermFreqs = %v", freqs)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if names := r.Names(); !slices.Equal(names, []string{Keyword, Standard, Whitespace}) {
		t.Errorf("Names = %v", names)
	}
	if _, err := r.Get(Standard); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown analyzer")
	}
	if err := r.Register(Standard, NewKeywordAnalyzer()); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if err := r.Register("custom", NewKeywordAnalyzer()); err != nil {
		t.Errorf("Register: %v", err)
	}
}
