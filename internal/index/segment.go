package index

import (
	"errors"
	"fmt"

	"AutomatonSearch/internal/postings"
	"AutomatonSearch/internal/termdict"
)

var (
	ErrDocOutOfRange = errors.New("doc id out of segment range")
	ErrBadLocator    = errors.New("postings locator out of bounds")
)

// SegmentReader is a read view over one immutable segment.
type SegmentReader interface {
	// MaxDoc is the exclusive upper bound of doc ids in the segment.
	MaxDoc() uint32

	// InvertedIndex returns the per-field term dictionary and postings.
	// A field with no indexed terms yields an empty index, not an error.
	InvertedIndex(field Field) (InvertedIndex, error)
}

// InvertedIndex gives access to one field's terms and postings lists.
type InvertedIndex interface {
	Terms() termdict.Dictionary
	ReadBlockPostings(info termdict.TermInfo, opt postings.RecordOption) (*postings.BlockPostings, error)
}

// SliceInvertedIndex serves a field from a sorted dictionary and one
// contiguous postings blob. TermInfo offsets index into the blob.
type SliceInvertedIndex struct {
	dict     *termdict.SortedDictionary
	postings []byte
}

// NewSliceInvertedIndex wraps a dictionary and its postings blob.
func NewSliceInvertedIndex(dict *termdict.SortedDictionary, blob []byte) *SliceInvertedIndex {
	return &SliceInvertedIndex{dict: dict, postings: blob}
}

// EmptyInvertedIndex returns an index with no terms.
func EmptyInvertedIndex() *SliceInvertedIndex {
	return NewSliceInvertedIndex(termdict.NewBuilder().Build(), nil)
}

func (ix *SliceInvertedIndex) Terms() termdict.Dictionary {
	return ix.dict
}

// Dictionary returns the concrete dictionary.
func (ix *SliceInvertedIndex) Dictionary() *termdict.SortedDictionary {
	return ix.dict
}

// Postings returns the raw postings blob.
func (ix *SliceInvertedIndex) Postings() []byte {
	return ix.postings
}

func (ix *SliceInvertedIndex) ReadBlockPostings(info termdict.TermInfo, opt postings.RecordOption) (*postings.BlockPostings, error) {
	end := info.PostingsOffset + uint64(info.PostingsLen)
	if end < info.PostingsOffset || end > uint64(len(ix.postings)) {
		return nil, fmt.Errorf("%w: [%d, %d) of %d bytes", ErrBadLocator, info.PostingsOffset, end, len(ix.postings))
	}
	return postings.Open(ix.postings[info.PostingsOffset:end], opt)
}
