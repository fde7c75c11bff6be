// Package query turns term-level queries into weights that run against
// segments. Every query here compiles to an automaton over term bytes and
// is executed by AutomatonWeight.
package query

import (
	"errors"
	"fmt"
	"log/slog"

	"AutomatonSearch/internal/automaton"
	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/index"
)

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypePrefix
	QueryTypeWildcard
	QueryTypeFuzzy
)

func (t QueryType) String() string {
	switch t {
	case QueryTypeTerm:
		return "term"
	case QueryTypePrefix:
		return "prefix"
	case QueryTypeWildcard:
		return "wildcard"
	case QueryTypeFuzzy:
		return "fuzzy"
	default:
		return fmt.Sprintf("QueryType(%d)", int(t))
	}
}

// Query is the interface for all query nodes.
type Query interface {
	Type() QueryType
	FieldName() string
}

// Fuzzy limits.
const (
	MaxFuzzyDistance   = automaton.MaxEditDistance
	MinFuzzyTermLength = 3
)

var (
	ErrEmptyTerm        = errors.New("query term must not be empty")
	ErrFuzzyDistance    = errors.New("fuzzy distance out of range")
	ErrUnsupportedQuery = errors.New("unsupported query type")
)

// NewWeight resolves q against schema and compiles its automaton.
// A nil logger falls back to slog.Default().
func NewWeight(q Query, schema *index.Schema, logger *slog.Logger) (engine.Weight, error) {
	field, err := schema.Field(q.FieldName())
	if err != nil {
		return nil, err
	}

	switch v := q.(type) {
	case *TermQuery:
		a, err := v.Automaton()
		if err != nil {
			return nil, err
		}
		return NewAutomatonWeight(field, a, logger), nil
	case *PrefixQuery:
		return NewAutomatonWeight(field, v.Automaton(), logger), nil
	case *WildcardQuery:
		a, err := v.Automaton()
		if err != nil {
			return nil, err
		}
		return NewAutomatonWeight(field, a, logger), nil
	case *FuzzyQuery:
		a, err := v.Automaton()
		if err != nil {
			return nil, err
		}
		return NewAutomatonWeight(field, a, logger), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedQuery, q)
	}
}
