// Package testutil holds fixtures shared by tests and benchmarks.
package testutil

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"AutomatonSearch/internal/analysis"
	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/indexing"
	"AutomatonSearch/internal/store"
)

// Field ids of BasicSchema.
const (
	IDField index.Field = iota
	TitleField
	BodyField
	TagsField
)

// BasicSchema returns a schema suitable for most tests.
func BasicSchema() *index.Schema {
	return &index.Schema{
		Version: 1,
		Fields: []index.FieldDef{
			{Name: "id", Type: index.FieldTypeKeyword},
			{Name: "title", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard},
			{Name: "body", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard},
			{Name: "tags", Type: index.FieldTypeKeyword},
		},
	}
}

// SampleDocuments returns a small set of test documents.
func SampleDocuments() []indexing.Document {
	return []indexing.Document{
		{
			"id":    "doc-1",
			"title": "Introduction to Search Engines",
			"body":  "Full-text search is a technique for searching documents",
			"tags":  []any{"search", "tutorial"},
		},
		{
			"id":    "doc-2",
			"title": "Advanced Query Processing",
			"body":  "Wildcard queries expand a pattern against the term dictionary",
			"tags":  []any{"search", "advanced"},
		},
		{
			"id":    "doc-3",
			"title": "Building an Inverted Index",
			"body":  "An inverted index maps terms to the documents containing them",
			"tags":  []any{"indexing", "tutorial"},
		},
		{
			"id":    "doc-4",
			"title": "Sorted Term Dictionaries",
			"body":  "Terms are stored in byte order so prefix ranges are contiguous",
			"tags":  "dictionary",
		},
		{
			"id":    "doc-5",
			"title": "Fuzzy Search with Levenshtein Automata",
			"body":  "Fuzzy search finds terms within an edit distance of the query term",
			"tags":  []any{"search", "fuzzy"},
		},
	}
}

var syllables = []string{"ka", "lo", "mi", "ne", "ra", "su", "ti", "vo", "ze", "pa", "qu", "dr"}

// Corpus returns n pseudo-random documents over BasicSchema. The same seed
// always yields the same documents.
func Corpus(n int, seed int64) []indexing.Document {
	rng := rand.New(rand.NewSource(seed))
	word := func() string {
		w := ""
		for k := 1 + rng.Intn(4); k > 0; k-- {
			w += syllables[rng.Intn(len(syllables))]
		}
		return w
	}
	sentence := func(words int) string {
		s := word()
		for i := 1; i < words; i++ {
			s += " " + word()
		}
		return s
	}

	docs := make([]indexing.Document, n)
	for i := range docs {
		docs[i] = indexing.Document{
			"id":    fmt.Sprintf("doc-%d", i),
			"title": sentence(3 + rng.Intn(4)),
			"body":  sentence(20 + rng.Intn(40)),
			"tags":  []any{syllables[rng.Intn(len(syllables))]},
		}
	}
	return docs
}

// BuildSegment indexes docs with BasicSchema and flushes them into one
// in-memory segment.
func BuildSegment(tb testing.TB, docs []indexing.Document) *index.MemSegment {
	tb.Helper()
	w := indexing.NewWriter(BasicSchema(), analysis.NewRegistry(), nil)
	w.Buffer().MaxDocs = len(docs) + 1
	if err := w.AddDocuments(docs); err != nil {
		tb.Fatalf("AddDocuments: %v", err)
	}
	seg, err := w.Flush()
	if err != nil {
		tb.Fatalf("Flush: %v", err)
	}
	return seg
}

// NewStore opens a store in a temporary directory that is closed when the
// test ends.
func NewStore(tb testing.TB) *store.Store {
	tb.Helper()
	s, err := store.Open(filepath.Join(tb.TempDir(), "index.db"), nil)
	if err != nil {
		tb.Fatalf("store.Open: %v", err)
	}
	tb.Cleanup(func() { s.Close() })
	return s
}

// StoredSegment saves seg into s and opens it back.
func StoredSegment(tb testing.TB, s *store.Store, seg *index.MemSegment) *store.Segment {
	tb.Helper()
	id, err := s.CreateSegment(seg)
	if err != nil {
		tb.Fatalf("CreateSegment: %v", err)
	}
	stored, err := s.OpenSegment(id)
	if err != nil {
		tb.Fatalf("OpenSegment: %v", err)
	}
	return stored
}
