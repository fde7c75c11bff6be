// Package termdict holds the per-field term dictionary of a segment and the
// automaton-driven traversal over it.
package termdict

import (
	"bytes"
	"errors"
	"sort"
)

var (
	ErrOutOfOrder = errors.New("termdict: terms must be inserted in strictly ascending order")
	ErrEmptyTerm  = errors.New("termdict: empty term")
)

// TermInfo locates a term's postings list inside a field's postings data.
type TermInfo struct {
	DocFreq        uint32
	PostingsOffset uint64
	PostingsLen    uint32
}

// Cursor walks a dictionary in ascending byte order.
// The term slice returned by Seek and Next is only valid until the next call.
type Cursor interface {
	// Seek positions the cursor at the first term >= key.
	// ok is false when no such term exists or an error occurred.
	Seek(key []byte) (term []byte, info TermInfo, ok bool)

	// Next moves to the term after the current one.
	Next() (term []byte, info TermInfo, ok bool)

	// Err returns the first error encountered by Seek or Next.
	Err() error

	// Close releases resources held by the cursor.
	Close() error
}

// Dictionary is a sorted mapping from term bytes to TermInfo.
// Every call to Cursor returns an independent cursor.
type Dictionary interface {
	Cursor() (Cursor, error)
}

// SortedDictionary is an immutable in-memory dictionary backed by sorted slices.
type SortedDictionary struct {
	terms [][]byte
	infos []TermInfo
}

// Len returns the number of terms.
func (d *SortedDictionary) Len() int {
	return len(d.terms)
}

// Get returns the TermInfo for an exact term.
func (d *SortedDictionary) Get(term []byte) (TermInfo, bool) {
	i := d.search(term)
	if i < len(d.terms) && bytes.Equal(d.terms[i], term) {
		return d.infos[i], true
	}
	return TermInfo{}, false
}

// Term returns the i-th term and its info in sorted order.
func (d *SortedDictionary) Term(i int) ([]byte, TermInfo) {
	return d.terms[i], d.infos[i]
}

func (d *SortedDictionary) Cursor() (Cursor, error) {
	return &sliceCursor{dict: d, pos: -1}, nil
}

func (d *SortedDictionary) search(key []byte) int {
	return sort.Search(len(d.terms), func(i int) bool {
		return bytes.Compare(d.terms[i], key) >= 0
	})
}

type sliceCursor struct {
	dict *SortedDictionary
	pos  int
}

func (c *sliceCursor) Seek(key []byte) ([]byte, TermInfo, bool) {
	c.pos = c.dict.search(key)
	return c.current()
}

func (c *sliceCursor) Next() ([]byte, TermInfo, bool) {
	if c.pos < len(c.dict.terms) {
		c.pos++
	}
	return c.current()
}

func (c *sliceCursor) current() ([]byte, TermInfo, bool) {
	if c.pos < 0 || c.pos >= len(c.dict.terms) {
		return nil, TermInfo{}, false
	}
	return c.dict.terms[c.pos], c.dict.infos[c.pos], true
}

func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }

// Builder accumulates terms in ascending order into a SortedDictionary.
type Builder struct {
	terms [][]byte
	infos []TermInfo
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Insert appends a term. Terms must be non-empty and strictly ascending.
func (b *Builder) Insert(term []byte, info TermInfo) error {
	if len(term) == 0 {
		return ErrEmptyTerm
	}
	if n := len(b.terms); n > 0 && bytes.Compare(b.terms[n-1], term) >= 0 {
		return ErrOutOfOrder
	}
	b.terms = append(b.terms, bytes.Clone(term))
	b.infos = append(b.infos, info)
	return nil
}

// Build returns the finished dictionary. The Builder must not be reused.
func (b *Builder) Build() *SortedDictionary {
	return &SortedDictionary{terms: b.terms, infos: b.infos}
}
