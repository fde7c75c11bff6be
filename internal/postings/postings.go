// Package postings encodes and decodes per-term postings lists.
//
// Layout of one postings list:
//
//	uvarint  len(docs)
//	[]byte   Roaring bitmap of doc IDs (portable serialization)
//	uvarint* term frequency per doc, in ascending doc ID order
package postings

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// BlockSize is the number of doc IDs decoded per block.
const BlockSize = 128

var (
	ErrCorrupt       = errors.New("postings: corrupt postings data")
	ErrUnsortedDocs  = errors.New("postings: doc IDs must be strictly ascending")
	ErrFreqsMismatch = errors.New("postings: frequency count does not match doc count")
)

// RecordOption selects how much of a postings list is decoded.
type RecordOption int

const (
	// Basic decodes doc IDs only.
	Basic RecordOption = iota
	// WithFreqs decodes doc IDs and term frequencies.
	WithFreqs
)

func (o RecordOption) String() string {
	switch o {
	case Basic:
		return "basic"
	case WithFreqs:
		return "with_freqs"
	default:
		return fmt.Sprintf("RecordOption(%d)", int(o))
	}
}

// Encode serializes a postings list. freqs may be nil, in which case every
// frequency is 1; otherwise it must be as long as docs.
func Encode(docs, freqs []uint32) ([]byte, error) {
	if freqs != nil && len(freqs) != len(docs) {
		return nil, ErrFreqsMismatch
	}
	for i := 1; i < len(docs); i++ {
		if docs[i] <= docs[i-1] {
			return nil, ErrUnsortedDocs
		}
	}

	bm := roaring.BitmapOf(docs...)
	bm.RunOptimize()
	bitmap, err := bm.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize doc bitmap: %w", err)
	}

	out := make([]byte, 0, binary.MaxVarintLen64+len(bitmap)+len(docs))
	out = binary.AppendUvarint(out, uint64(len(bitmap)))
	out = append(out, bitmap...)
	for i := range docs {
		f := uint32(1)
		if freqs != nil {
			f = freqs[i]
		}
		out = binary.AppendUvarint(out, uint64(f))
	}
	return out, nil
}

// BlockPostings iterates a decoded postings list one block at a time.
type BlockPostings struct {
	docCount uint64
	iter     roaring.ManyIntIterable
	opt      RecordOption

	freqData []byte
	docs     []uint32
	freqs    []uint32
	n        int
	err      error
}

// Open decodes the header and doc bitmap of a postings list. With Basic the
// frequency section is never read.
func Open(data []byte, opt RecordOption) (*BlockPostings, error) {
	size, n := binary.Uvarint(data)
	if n <= 0 || size > uint64(len(data)-n) {
		return nil, fmt.Errorf("%w: bad bitmap header", ErrCorrupt)
	}
	bitmap := data[n : n+int(size)]

	bm := roaring.New()
	if err := bm.UnmarshalBinary(bitmap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	p := &BlockPostings{
		docCount: bm.GetCardinality(),
		iter:     bm.ManyIterator(),
		opt:      opt,
		docs:     make([]uint32, BlockSize),
	}
	if opt == WithFreqs {
		p.freqData = data[n+int(size):]
		p.freqs = make([]uint32, BlockSize)
	}
	return p, nil
}

// Advance decodes the next block. It returns false when the list is
// exhausted or decoding failed; check Err afterwards.
func (p *BlockPostings) Advance() bool {
	if p.err != nil {
		return false
	}
	p.n = p.iter.NextMany(p.docs)
	if p.n == 0 {
		return false
	}
	if p.opt == WithFreqs {
		for i := 0; i < p.n; i++ {
			f, k := binary.Uvarint(p.freqData)
			if k <= 0 {
				p.err = fmt.Errorf("%w: truncated frequencies", ErrCorrupt)
				p.n = 0
				return false
			}
			p.freqs[i] = uint32(f)
			p.freqData = p.freqData[k:]
		}
	}
	return true
}

// Docs returns the doc IDs of the current block, ascending.
// The slice is reused by the next Advance.
func (p *BlockPostings) Docs() []uint32 {
	return p.docs[:p.n]
}

// Freqs returns the term frequencies of the current block. Nil with Basic.
func (p *BlockPostings) Freqs() []uint32 {
	if p.freqs == nil {
		return nil
	}
	return p.freqs[:p.n]
}

// DocCount returns the total number of docs in the list.
func (p *BlockPostings) DocCount() uint64 {
	return p.docCount
}

// Err returns the decoding error that stopped iteration, if any.
func (p *BlockPostings) Err() error {
	return p.err
}
