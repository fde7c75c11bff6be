package query

import (
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"

	"AutomatonSearch/internal/automaton"
	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/postings"
	"AutomatonSearch/internal/termdict"
)

// AutomatonScorerLabel describes a match produced by AutomatonWeight.
const AutomatonScorerLabel = "AutomatonScorer"

// AutomatonWeight matches the documents of a segment that contain at least
// one term of field accepted by the automaton. Every match scores 1.0.
//
// The weight is immutable; Scorer and Explain may be called concurrently.
type AutomatonWeight[A automaton.Automaton] struct {
	field     index.Field
	automaton A
	logger    *slog.Logger
}

// NewAutomatonWeight binds a to field. A nil logger falls back to slog.Default().
func NewAutomatonWeight[A automaton.Automaton](field index.Field, a A, logger *slog.Logger) *AutomatonWeight[A] {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutomatonWeight[A]{
		field:     field,
		automaton: a,
		logger:    logger.With("component", "automaton_weight", "field", uint32(field)),
	}
}

func (w *AutomatonWeight[A]) Field() index.Field {
	return w.field
}

func (w *AutomatonWeight[A]) Automaton() A {
	return w.automaton
}

// Scorer builds the matching doc set of reader and scores it constantly.
func (w *AutomatonWeight[A]) Scorer(reader index.SegmentReader) (engine.Scorer, error) {
	bits, err := w.matchingBitset(reader)
	if err != nil {
		return nil, err
	}
	return engine.NewConstScorer(engine.NewBitSetDocSet(bits)), nil
}

// Explain returns the explanation of doc, or an error wrapping
// engine.ErrDocNotFound or engine.ErrDocNotMatched when doc is not a match.
func (w *AutomatonWeight[A]) Explain(reader index.SegmentReader, doc uint32) (*engine.Explanation, error) {
	if doc >= reader.MaxDoc() {
		return nil, fmt.Errorf("doc %d (max doc %d): %w", doc, reader.MaxDoc(), engine.ErrDocNotFound)
	}
	scorer, err := w.Scorer(reader)
	if err != nil {
		return nil, err
	}
	if scorer.SkipTo(doc) != engine.SkipReached {
		return nil, fmt.Errorf("doc %d: %w", doc, engine.ErrDocNotMatched)
	}
	return engine.NewExplanation(AutomatonScorerLabel, scorer.Score()), nil
}

func (w *AutomatonWeight[A]) matchingBitset(reader index.SegmentReader) (*bitset.BitSet, error) {
	maxDoc := reader.MaxDoc()
	if maxDoc == 0 {
		return bitset.New(0), nil
	}

	ix, err := reader.InvertedIndex(w.field)
	if err != nil {
		return nil, fmt.Errorf("open inverted index: %w", err)
	}

	bits, stats, err := buildMatchingBitset(ix, w.automaton, maxDoc)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("matching bitset built",
		"max_doc", maxDoc,
		"terms_visited", stats.termsVisited,
		"terms_matched", stats.termsMatched,
		"docs_matched", bits.Count(),
	)
	return bits, nil
}

type bitsetStats struct {
	termsVisited int
	termsMatched int
}

// buildMatchingBitset sets, for every term of ix accepted by a, the docs of
// its postings list. Postings are read without frequencies.
func buildMatchingBitset[A automaton.Automaton](ix index.InvertedIndex, a A, maxDoc uint32) (*bitset.BitSet, bitsetStats, error) {
	bits := bitset.New(uint(maxDoc))

	stream, err := termdict.Search(ix.Terms(), a)
	if err != nil {
		return nil, bitsetStats{}, fmt.Errorf("open term stream: %w", err)
	}
	defer stream.Close()

	for stream.Advance() {
		p, err := ix.ReadBlockPostings(stream.Value(), postings.Basic)
		if err != nil {
			return nil, bitsetStats{}, fmt.Errorf("read postings of %q: %w", stream.Key(), err)
		}
		for p.Advance() {
			for _, doc := range p.Docs() {
				if doc >= maxDoc {
					return nil, bitsetStats{}, fmt.Errorf("%w: term %q has doc %d >= max doc %d",
						postings.ErrCorrupt, stream.Key(), doc, maxDoc)
				}
				bits.Set(uint(doc))
			}
		}
		if err := p.Err(); err != nil {
			return nil, bitsetStats{}, fmt.Errorf("decode postings of %q: %w", stream.Key(), err)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, bitsetStats{}, fmt.Errorf("walk term dictionary: %w", err)
	}

	return bits, bitsetStats{termsVisited: stream.Visited(), termsMatched: stream.Matched()}, nil
}
