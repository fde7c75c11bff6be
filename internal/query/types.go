package query

import (
	"fmt"

	"AutomatonSearch/internal/automaton"
)

// TermQuery matches documents containing the exact term.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) Type() QueryType   { return QueryTypeTerm }
func (q *TermQuery) FieldName() string { return q.Field }

func (q *TermQuery) Automaton() (*automaton.TermAutomaton, error) {
	if q.Term == "" {
		return nil, ErrEmptyTerm
	}
	return automaton.NewTermAutomaton([]byte(q.Term)), nil
}

// PrefixQuery matches terms starting with the given prefix.
// An empty prefix matches every term of the field.
type PrefixQuery struct {
	Field  string
	Prefix string
}

func (q *PrefixQuery) Type() QueryType   { return QueryTypePrefix }
func (q *PrefixQuery) FieldName() string { return q.Field }

func (q *PrefixQuery) Automaton() *automaton.PrefixAutomaton {
	return automaton.NewPrefixAutomaton([]byte(q.Prefix))
}

// WildcardQuery matches terms using wildcard patterns (* and ?).
type WildcardQuery struct {
	Field   string
	Pattern string
}

func (q *WildcardQuery) Type() QueryType   { return QueryTypeWildcard }
func (q *WildcardQuery) FieldName() string { return q.Field }

func (q *WildcardQuery) Automaton() (*automaton.WildcardAutomaton, error) {
	a, err := automaton.NewWildcardAutomaton([]byte(q.Pattern))
	if err != nil {
		return nil, fmt.Errorf("wildcard %q: %w", q.Pattern, err)
	}
	return a, nil
}

// FuzzyQuery matches terms within an edit distance of the query term.
// Terms shorter than MinFuzzyTermLength only match exactly.
type FuzzyQuery struct {
	Field       string
	Term        string
	MaxDistance int
}

func (q *FuzzyQuery) Type() QueryType   { return QueryTypeFuzzy }
func (q *FuzzyQuery) FieldName() string { return q.Field }

// EffectiveDistance is the edit distance actually applied to q.Term.
func (q *FuzzyQuery) EffectiveDistance() int {
	if len(q.Term) < MinFuzzyTermLength {
		return 0
	}
	return q.MaxDistance
}

func (q *FuzzyQuery) Automaton() (*automaton.LevenshteinAutomaton, error) {
	if q.Term == "" {
		return nil, ErrEmptyTerm
	}
	if q.MaxDistance < 0 || q.MaxDistance > MaxFuzzyDistance {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrFuzzyDistance, q.MaxDistance, MaxFuzzyDistance)
	}
	return automaton.NewLevenshteinAutomaton([]byte(q.Term), q.EffectiveDistance())
}
