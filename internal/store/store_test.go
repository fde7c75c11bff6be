package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"AutomatonSearch/internal/automaton"
	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/query"
	"AutomatonSearch/internal/storage"
	"AutomatonSearch/internal/termdict"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const (
	bodyField index.Field = 0
	tagField  index.Field = 1
)

var bodyTerms = [][]string{
	{"apple", "banana"},
	{"application", "cherry"},
	{"apply", "banana", "date"},
	{"grape"},
	{"applesauce", "zucchini"},
}

func testSegment(t *testing.T) *index.MemSegment {
	t.Helper()
	b := index.NewSegmentBuilder()
	ids := make([]string, len(bodyTerms))
	for doc, terms := range bodyTerms {
		for _, term := range terms {
			b.Add(bodyField, term, uint32(doc), 1)
		}
		ids[doc] = fmt.Sprintf("doc-%d", doc)
	}
	b.Add(tagField, "fruit", 0, 1)
	b.Add(tagField, "fruit", 3, 1)
	b.SetExternalIDs(ids)
	seg, err := b.Build(uint32(len(bodyTerms)))
	require.NoError(t, err)
	return seg
}

func collect(t *testing.T, field index.Field, a automaton.Automaton, r index.SegmentReader) []uint32 {
	t.Helper()
	s, err := query.NewAutomatonWeight(field, a, nil).Scorer(r)
	require.NoError(t, err)
	return engine.Collect(s)
}

func TestSchemaRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadSchema()
	assert.ErrorIs(t, err, ErrNoSchema)

	schema := &index.Schema{
		Version: 1,
		Fields: []index.FieldDef{
			{Name: "body", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard},
			{Name: "tag", Type: index.FieldTypeKeyword},
		},
	}
	require.NoError(t, s.SaveSchema(schema))

	got, err := s.LoadSchema()
	require.NoError(t, err)
	assert.Equal(t, schema.Fields, got.Fields)
}

func TestSaveSchema_Invalid(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveSchema(&index.Schema{
		Version: 1,
		Fields: []index.FieldDef{
			{Name: "body", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard},
			{Name: "body", Type: index.FieldTypeKeyword},
		},
	})
	assert.ErrorIs(t, err, index.ErrSchemaDuplicateField)

	_, err = s.LoadSchema()
	assert.ErrorIs(t, err, ErrNoSchema)
}

func TestSegment_MatchesMemSegment(t *testing.T) {
	s := newTestStore(t)
	mem := testSegment(t)

	id, err := s.CreateSegment(mem)
	require.NoError(t, err)
	assert.Equal(t, "seg_000001", id)

	seg, err := s.OpenSegment(id)
	require.NoError(t, err)
	assert.Equal(t, mem.MaxDoc(), seg.MaxDoc())

	wildcard, err := automaton.NewWildcardAutomaton([]byte("*an*"))
	require.NoError(t, err)
	fuzzy, err := automaton.NewLevenshteinAutomaton([]byte("apple"), 1)
	require.NoError(t, err)

	cases := []struct {
		name  string
		field index.Field
		a     automaton.Automaton
	}{
		{"term", bodyField, automaton.NewTermAutomaton([]byte("banana"))},
		{"prefix", bodyField, automaton.NewPrefixAutomaton([]byte("app"))},
		{"empty prefix", bodyField, automaton.NewPrefixAutomaton(nil)},
		{"wildcard", bodyField, wildcard},
		{"fuzzy", bodyField, fuzzy},
		{"missing term", bodyField, automaton.NewTermAutomaton([]byte("kiwi"))},
		{"tag", tagField, automaton.NewTermAutomaton([]byte("fruit"))},
		{"absent field", 7, automaton.NewPrefixAutomaton(nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, collect(t, tc.field, tc.a, mem), collect(t, tc.field, tc.a, seg))
		})
	}

	assert.Equal(t, []uint32{0, 1, 2, 4}, collect(t, bodyField, automaton.NewPrefixAutomaton([]byte("app")), seg))
}

func TestSegment_Explain(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateSegment(testSegment(t))
	require.NoError(t, err)
	seg, err := s.OpenSegment(id)
	require.NoError(t, err)

	w := query.NewAutomatonWeight(bodyField, automaton.NewTermAutomaton([]byte("banana")), nil)

	expl, err := w.Explain(seg, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), expl.Value)

	_, err = w.Explain(seg, 1)
	assert.ErrorIs(t, err, engine.ErrDocNotMatched)
	_, err = w.Explain(seg, 99)
	assert.ErrorIs(t, err, engine.ErrDocNotFound)
}

func TestSegment_ExternalIDs(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateSegment(testSegment(t))
	require.NoError(t, err)
	seg, err := s.OpenSegment(id)
	require.NoError(t, err)

	ext, ok := seg.ExternalID(3)
	assert.True(t, ok)
	assert.Equal(t, "doc-3", ext)

	_, ok = seg.ExternalID(5)
	assert.False(t, ok)
}

func TestSegments_ListAndDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveSegment("b", testSegment(t)))
	require.NoError(t, s.SaveSegment("a", testSegment(t)))

	infos, err := s.Segments()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].SegmentID)
	assert.Equal(t, "b", infos[1].SegmentID)
	assert.Equal(t, uint32(5), infos[0].MaxDoc)
	assert.Equal(t, 1, infos[0].Fields[tagField].TermCount)

	err = s.SaveSegment("a", testSegment(t))
	assert.ErrorIs(t, err, ErrSegmentExists)

	require.NoError(t, s.DeleteSegment("a"))
	assert.ErrorIs(t, s.DeleteSegment("a"), ErrSegmentNotFound)

	_, err = s.OpenSegment("a")
	assert.ErrorIs(t, err, ErrSegmentNotFound)

	infos, err = s.Segments()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestSegment_TamperedPostings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSegment("seg", testSegment(t)))

	err := s.db.Update(func(tx *bolt.Tx) error {
		fb, err := fieldBucket(tx, "seg", bodyField)
		if err != nil {
			return err
		}
		blob := append([]byte(nil), fb.Get(keyPostings)...)
		blob[len(blob)-1] ^= 0xff
		return fb.Put(keyPostings, blob)
	})
	require.NoError(t, err)

	seg, err := s.OpenSegment("seg")
	require.NoError(t, err)

	_, err = query.NewAutomatonWeight(bodyField, automaton.NewPrefixAutomaton(nil), nil).Scorer(seg)
	assert.ErrorIs(t, err, storage.ErrChecksumMismatch)

	// Other fields are unaffected.
	assert.Equal(t, []uint32{0, 3}, collect(t, tagField, automaton.NewTermAutomaton([]byte("fruit")), seg))
}

func TestSegment_CorruptTermInfo(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSegment("seg", testSegment(t)))

	err := s.db.Update(func(tx *bolt.Tx) error {
		fb, err := fieldBucket(tx, "seg", bodyField)
		if err != nil {
			return err
		}
		return fb.Bucket(bucketTerms).Put([]byte("banana"), []byte{0xff})
	})
	require.NoError(t, err)

	seg, err := s.OpenSegment("seg")
	require.NoError(t, err)

	_, err = query.NewAutomatonWeight(bodyField, automaton.NewPrefixAutomaton(nil), nil).Scorer(seg)
	assert.ErrorIs(t, err, ErrCorruptSegment)
}

func TestBoltDictionary_Pruning(t *testing.T) {
	s := newTestStore(t)

	b := index.NewSegmentBuilder()
	for i := 0; i < 200; i++ {
		b.Add(bodyField, fmt.Sprintf("term%03d", i), uint32(i), 1)
	}
	b.Add(bodyField, "zebra", 0, 1)
	mem, err := b.Build(200)
	require.NoError(t, err)
	require.NoError(t, s.SaveSegment("seg", mem))

	seg, err := s.OpenSegment("seg")
	require.NoError(t, err)
	ix, err := seg.InvertedIndex(bodyField)
	require.NoError(t, err)

	stream, err := termdict.Search(ix.Terms(), automaton.NewTermAutomaton([]byte("zebra")))
	require.NoError(t, err)
	defer stream.Close()

	var keys []string
	for stream.Advance() {
		keys = append(keys, string(stream.Key()))
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"zebra"}, keys)
	assert.Less(t, stream.Visited(), 10)
}

func TestBoltCursor_Seek(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSegment("seg", testSegment(t)))
	seg, err := s.OpenSegment("seg")
	require.NoError(t, err)
	ix, err := seg.InvertedIndex(bodyField)
	require.NoError(t, err)

	c, err := ix.Terms().Cursor()
	require.NoError(t, err)

	term, _, ok := c.Seek(nil)
	require.True(t, ok)
	assert.Equal(t, "apple", string(term))

	term, info, ok := c.Seek([]byte("bb"))
	require.True(t, ok)
	assert.Equal(t, "cherry", string(term))
	assert.Equal(t, uint32(1), info.DocFreq)

	_, _, ok = c.Seek([]byte("zz"))
	assert.False(t, ok)
	assert.NoError(t, c.Err())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, _, ok = c.Next()
	assert.False(t, ok)
}

func TestSegment_ConcurrentScorers(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSegment("seg", testSegment(t)))
	seg, err := s.OpenSegment("seg")
	require.NoError(t, err)

	w := query.NewAutomatonWeight(bodyField, automaton.NewPrefixAutomaton([]byte("app")), nil)
	want := []uint32{0, 1, 2, 4}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc, err := w.Scorer(seg)
			if err != nil {
				errs <- err
				return
			}
			if got := engine.Collect(sc); !assert.ObjectsAreEqual(want, got) {
				errs <- fmt.Errorf("got %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTermInfoCodec(t *testing.T) {
	info := termdict.TermInfo{DocFreq: 300, PostingsOffset: 1 << 40, PostingsLen: 70000}
	got, err := decodeTermInfo(encodeTermInfo(info))
	require.NoError(t, err)
	assert.Equal(t, info, got)

	for _, bad := range [][]byte{nil, {0x80}, append(encodeTermInfo(info), 0x01)} {
		_, err := decodeTermInfo(bad)
		assert.ErrorIs(t, err, ErrCorruptSegment)
	}
}
