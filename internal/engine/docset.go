package engine

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// TerminatedDoc is the doc id reported by an exhausted DocSet.
const TerminatedDoc uint32 = math.MaxUint32

// SkipResult reports where SkipTo landed.
type SkipResult int

const (
	// SkipReached means the target doc itself is in the set.
	SkipReached SkipResult = iota
	// SkipOverStep means the set is positioned on the first doc after the target.
	SkipOverStep
	// SkipEnd means no doc >= target exists; the set is exhausted.
	SkipEnd
)

func (r SkipResult) String() string {
	switch r {
	case SkipReached:
		return "reached"
	case SkipOverStep:
		return "overstep"
	case SkipEnd:
		return "end"
	default:
		return "unknown"
	}
}

// DocSet is a sorted, duplicate-free sequence of doc ids.
//
// Doc is only meaningful after Advance returned true or SkipTo returned
// something other than SkipEnd. An exhausted set reports TerminatedDoc.
type DocSet interface {
	// Advance moves to the next doc. It returns false once exhausted.
	Advance() bool

	Doc() uint32

	// SkipTo moves forward to the first doc >= target. A set already
	// positioned at or past target does not move.
	SkipTo(target uint32) SkipResult

	// SizeHint estimates the number of docs in the set.
	SizeHint() uint32
}

// Collect drains ds and returns the remaining doc ids.
func Collect(ds DocSet) []uint32 {
	var out []uint32
	for ds.Advance() {
		out = append(out, ds.Doc())
	}
	return out
}

// BitSetDocSet iterates the set bits of a bitset in ascending order.
// It owns the bitset.
type BitSetDocSet struct {
	bits    *bitset.BitSet
	doc     uint32
	started bool
}

// NewBitSetDocSet wraps bits. The doc id space is [0, bits.Len()).
func NewBitSetDocSet(bits *bitset.BitSet) *BitSetDocSet {
	return &BitSetDocSet{bits: bits, doc: TerminatedDoc}
}

func (d *BitSetDocSet) Advance() bool {
	if !d.started {
		d.started = true
		return d.seek(0)
	}
	if d.doc == TerminatedDoc {
		return false
	}
	return d.seek(uint(d.doc) + 1)
}

func (d *BitSetDocSet) Doc() uint32 {
	return d.doc
}

func (d *BitSetDocSet) SkipTo(target uint32) SkipResult {
	if d.started {
		switch {
		case d.doc == TerminatedDoc:
			return SkipEnd
		case d.doc == target:
			return SkipReached
		case d.doc > target:
			return SkipOverStep
		}
	}
	d.started = true
	if !d.seek(uint(target)) {
		return SkipEnd
	}
	if d.doc == target {
		return SkipReached
	}
	return SkipOverStep
}

func (d *BitSetDocSet) SizeHint() uint32 {
	return uint32(d.bits.Count())
}

// Contains reports whether doc is in the set, regardless of position.
func (d *BitSetDocSet) Contains(doc uint32) bool {
	return uint(doc) < d.bits.Len() && d.bits.Test(uint(doc))
}

func (d *BitSetDocSet) seek(from uint) bool {
	if from < d.bits.Len() {
		if next, ok := d.bits.NextSet(from); ok {
			d.doc = uint32(next)
			return true
		}
	}
	d.doc = TerminatedDoc
	return false
}
