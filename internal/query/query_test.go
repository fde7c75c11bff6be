package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutomatonSearch/internal/automaton"
	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/index"
)

func testSchema() *index.Schema {
	return &index.Schema{
		Version: 1,
		Fields: []index.FieldDef{
			{Name: "body", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard},
			{Name: "tag", Type: index.FieldTypeKeyword},
		},
	}
}

func TestQueryTypes(t *testing.T) {
	tests := []struct {
		q    Query
		want QueryType
		name string
	}{
		{&TermQuery{Field: "body", Term: "hello"}, QueryTypeTerm, "term"},
		{&PrefixQuery{Field: "body", Prefix: "hel"}, QueryTypePrefix, "prefix"},
		{&WildcardQuery{Field: "body", Pattern: "h*o"}, QueryTypeWildcard, "wildcard"},
		{&FuzzyQuery{Field: "body", Term: "search", MaxDistance: 1}, QueryTypeFuzzy, "fuzzy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Type())
			assert.Equal(t, tt.name, tt.q.Type().String())
			assert.Equal(t, "body", tt.q.FieldName())
		})
	}
}

func TestNewWeight_ResolvesField(t *testing.T) {
	w, err := NewWeight(&TermQuery{Field: "tag", Term: "go"}, testSchema(), nil)
	require.NoError(t, err)

	tw, ok := w.(*AutomatonWeight[*automaton.TermAutomaton])
	require.True(t, ok, "got %T", w)
	assert.Equal(t, index.Field(1), tw.Field())
}

func TestNewWeight_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want error
	}{
		{"unknown field", &TermQuery{Field: "nope", Term: "x"}, index.ErrUnknownField},
		{"empty term", &TermQuery{Field: "body"}, ErrEmptyTerm},
		{"empty fuzzy term", &FuzzyQuery{Field: "body", MaxDistance: 1}, ErrEmptyTerm},
		{"fuzzy distance", &FuzzyQuery{Field: "body", Term: "hello", MaxDistance: 3}, ErrFuzzyDistance},
		{"negative fuzzy distance", &FuzzyQuery{Field: "body", Term: "hello", MaxDistance: -1}, ErrFuzzyDistance},
		{"long wildcard", &WildcardQuery{Field: "body", Pattern: strings.Repeat("a", automaton.MaxWildcardPatternLength+1)}, automaton.ErrWildcardPatternTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeight(tt.q, testSchema(), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFuzzyQuery_ShortTermIsExact(t *testing.T) {
	q := &FuzzyQuery{Field: "body", Term: "go", MaxDistance: 2}
	assert.Equal(t, 0, q.EffectiveDistance())

	a, err := q.Automaton()
	require.NoError(t, err)
	assert.True(t, automaton.Matches(a, []byte("go")))
	assert.False(t, automaton.Matches(a, []byte("gp")))

	q.Term = "gopher"
	assert.Equal(t, 2, q.EffectiveDistance())
}

func TestNewWeight_EndToEnd(t *testing.T) {
	schema := testSchema()
	b := index.NewSegmentBuilder()
	for doc, term := range []string{"hello", "help", "world", "yellow", "hallo"} {
		b.Add(0, term, uint32(doc), 1)
	}
	seg, err := b.Build(5)
	require.NoError(t, err)

	tests := []struct {
		q    Query
		want []uint32
	}{
		{&TermQuery{Field: "body", Term: "help"}, []uint32{1}},
		{&PrefixQuery{Field: "body", Prefix: "hel"}, []uint32{0, 1}},
		{&WildcardQuery{Field: "body", Pattern: "*llo*"}, []uint32{0, 3, 4}},
		{&FuzzyQuery{Field: "body", Term: "hello", MaxDistance: 1}, []uint32{0, 4}},
		{&TermQuery{Field: "tag", Term: "help"}, nil},
	}
	for _, tt := range tests {
		w, err := NewWeight(tt.q, schema, nil)
		require.NoError(t, err)
		s, err := w.Scorer(seg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, engine.Collect(s), "%s %+v", tt.q.Type(), tt.q)
	}
}
