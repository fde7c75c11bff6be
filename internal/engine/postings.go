package engine

import "sort"

// VecDocSet is a DocSet backed by a sorted slice of doc ids.
type VecDocSet struct {
	docs []uint32
	pos  int
}

// NewVecDocSet creates a DocSet from docs, which must be sorted ascending
// without duplicates.
func NewVecDocSet(docs []uint32) *VecDocSet {
	return &VecDocSet{docs: docs, pos: -1}
}

func (v *VecDocSet) Advance() bool {
	if v.pos < len(v.docs) {
		v.pos++
	}
	return v.pos < len(v.docs)
}

func (v *VecDocSet) Doc() uint32 {
	if v.pos < 0 || v.pos >= len(v.docs) {
		return TerminatedDoc
	}
	return v.docs[v.pos]
}

func (v *VecDocSet) SkipTo(target uint32) SkipResult {
	if v.pos >= len(v.docs) {
		return SkipEnd
	}
	if v.pos < 0 || v.docs[v.pos] < target {
		from := max(v.pos, 0)
		v.pos = from + sort.Search(len(v.docs)-from, func(i int) bool {
			return v.docs[from+i] >= target
		})
		if v.pos >= len(v.docs) {
			return SkipEnd
		}
	}
	if v.docs[v.pos] == target {
		return SkipReached
	}
	return SkipOverStep
}

func (v *VecDocSet) SizeHint() uint32 {
	return uint32(len(v.docs))
}
