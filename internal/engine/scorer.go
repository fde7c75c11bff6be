package engine

import (
	"errors"
	"fmt"

	"AutomatonSearch/internal/index"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDocNotFound is returned by Explain for a doc id outside the segment.
	ErrDocNotFound = fmt.Errorf("%w: document does not exist in segment", ErrInvalidArgument)

	// ErrDocNotMatched is returned by Explain for a doc the query does not match.
	ErrDocNotMatched = fmt.Errorf("%w: document does not match", ErrInvalidArgument)
)

// Scorer is a DocSet that scores the doc it is positioned on.
type Scorer interface {
	DocSet
	Score() float32
}

// Weight is a query bound to an index, ready to run against segments.
// Implementations must be safe for concurrent use.
type Weight interface {
	Scorer(reader index.SegmentReader) (Scorer, error)
	Explain(reader index.SegmentReader, doc uint32) (*Explanation, error)
}

// DefaultConstScore is the score a ConstScorer gives unless told otherwise.
const DefaultConstScore float32 = 1.0

// ConstScorer gives every doc of a DocSet the same score.
type ConstScorer struct {
	DocSet
	score float32
}

// NewConstScorer scores every doc of ds with DefaultConstScore.
func NewConstScorer(ds DocSet) *ConstScorer {
	return &ConstScorer{DocSet: ds, score: DefaultConstScore}
}

// SetScore changes the score for all docs.
func (c *ConstScorer) SetScore(score float32) {
	c.score = score
}

func (c *ConstScorer) Score() float32 {
	return c.score
}
