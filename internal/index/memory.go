package index

import (
	"fmt"
	"slices"
	"sort"

	"AutomatonSearch/internal/postings"
	"AutomatonSearch/internal/termdict"
)

// MemSegment is an immutable segment held entirely in memory.
type MemSegment struct {
	maxDoc      uint32
	fields      map[Field]*SliceInvertedIndex
	externalIDs []string
}

func (s *MemSegment) MaxDoc() uint32 {
	return s.maxDoc
}

func (s *MemSegment) InvertedIndex(field Field) (InvertedIndex, error) {
	if ix, ok := s.fields[field]; ok {
		return ix, nil
	}
	return EmptyInvertedIndex(), nil
}

// Fields returns the fields that have at least one term, ascending.
func (s *MemSegment) Fields() []Field {
	out := make([]Field, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// FieldIndex returns the concrete inverted index of a field.
func (s *MemSegment) FieldIndex(field Field) (*SliceInvertedIndex, bool) {
	ix, ok := s.fields[field]
	return ix, ok
}

// ExternalIDs returns the external document ids, indexed by doc id.
// Nil when the segment was built without them.
func (s *MemSegment) ExternalIDs() []string {
	return s.externalIDs
}

type posting struct {
	doc  uint32
	freq uint32
}

// SegmentBuilder accumulates postings for a new segment.
// It is not safe for concurrent use.
type SegmentBuilder struct {
	fields      map[Field]map[string][]posting
	externalIDs []string
	termCount   int
}

// NewSegmentBuilder creates an empty builder.
func NewSegmentBuilder() *SegmentBuilder {
	return &SegmentBuilder{fields: make(map[Field]map[string][]posting)}
}

// Add records freq occurrences of term in doc. Adding the same (term, doc)
// again sums the frequencies.
func (b *SegmentBuilder) Add(field Field, term string, doc, freq uint32) {
	terms, ok := b.fields[field]
	if !ok {
		terms = make(map[string][]posting)
		b.fields[field] = terms
	}
	if _, ok := terms[term]; !ok {
		b.termCount++
	}
	terms[term] = append(terms[term], posting{doc: doc, freq: freq})
}

// SetExternalIDs attaches external document ids, one per doc id.
func (b *SegmentBuilder) SetExternalIDs(ids []string) {
	b.externalIDs = ids
}

// TermCount returns the number of distinct (field, term) pairs added.
func (b *SegmentBuilder) TermCount() int {
	return b.termCount
}

// Build encodes the accumulated postings into a MemSegment with the given
// doc id bound. Any posting with doc >= maxDoc fails the build.
func (b *SegmentBuilder) Build(maxDoc uint32) (*MemSegment, error) {
	if b.externalIDs != nil && len(b.externalIDs) != int(maxDoc) {
		return nil, fmt.Errorf("external ids: have %d, want %d", len(b.externalIDs), maxDoc)
	}

	seg := &MemSegment{
		maxDoc:      maxDoc,
		fields:      make(map[Field]*SliceInvertedIndex, len(b.fields)),
		externalIDs: b.externalIDs,
	}
	for field, terms := range b.fields {
		ix, err := buildField(terms, maxDoc)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", field, err)
		}
		seg.fields[field] = ix
	}
	return seg, nil
}

func buildField(terms map[string][]posting, maxDoc uint32) (*SliceInvertedIndex, error) {
	keys := make([]string, 0, len(terms))
	for term := range terms {
		keys = append(keys, term)
	}
	sort.Strings(keys)

	dict := termdict.NewBuilder()
	var blob []byte
	for _, term := range keys {
		docs, freqs, err := mergePostings(terms[term], maxDoc)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}
		data, err := postings.Encode(docs, freqs)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}
		info := termdict.TermInfo{
			DocFreq:        uint32(len(docs)),
			PostingsOffset: uint64(len(blob)),
			PostingsLen:    uint32(len(data)),
		}
		if err := dict.Insert([]byte(term), info); err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}
		blob = append(blob, data...)
	}
	return NewSliceInvertedIndex(dict.Build(), blob), nil
}

// mergePostings sorts postings by doc and folds duplicate docs together.
func mergePostings(ps []posting, maxDoc uint32) ([]uint32, []uint32, error) {
	sorted := slices.Clone(ps)
	slices.SortStableFunc(sorted, func(a, b posting) int {
		switch {
		case a.doc < b.doc:
			return -1
		case a.doc > b.doc:
			return 1
		}
		return 0
	})

	docs := make([]uint32, 0, len(sorted))
	freqs := make([]uint32, 0, len(sorted))
	for _, p := range sorted {
		if p.doc >= maxDoc {
			return nil, nil, fmt.Errorf("%w: doc %d, max doc %d", ErrDocOutOfRange, p.doc, maxDoc)
		}
		if n := len(docs); n > 0 && docs[n-1] == p.doc {
			freqs[n-1] += p.freq
			continue
		}
		docs = append(docs, p.doc)
		freqs = append(freqs, p.freq)
	}
	return docs, freqs, nil
}
