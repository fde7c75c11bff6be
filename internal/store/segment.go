package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/postings"
	"AutomatonSearch/internal/storage"
	"AutomatonSearch/internal/termdict"
)

// Segment reads one stored segment. Term dictionaries are served straight
// from bbolt; a field's postings blob is loaded and verified on first use
// by each InvertedIndex call.
type Segment struct {
	db          *bolt.DB
	id          string
	info        *index.SegmentInfo
	externalIDs []string
}

var _ index.SegmentReader = (*Segment)(nil)

func (s *Segment) ID() string {
	return s.id
}

// Info returns the segment metadata. The caller must not modify it.
func (s *Segment) Info() *index.SegmentInfo {
	return s.info
}

func (s *Segment) MaxDoc() uint32 {
	return s.info.MaxDoc
}

// ExternalID maps a segment-local doc id to the id the document was indexed
// with. ok is false when the segment stores no ids or doc is out of range.
func (s *Segment) ExternalID(doc uint32) (string, bool) {
	if int(doc) >= len(s.externalIDs) {
		return "", false
	}
	return s.externalIDs[doc], true
}

// InvertedIndex loads the postings blob of field and checks it against the
// checksum recorded in the segment info.
func (s *Segment) InvertedIndex(field index.Field) (index.InvertedIndex, error) {
	stats, ok := s.info.Fields[field]
	if !ok {
		return index.EmptyInvertedIndex(), nil
	}

	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		fb, err := fieldBucket(tx, s.id, field)
		if err != nil {
			return err
		}
		blob = append([]byte(nil), fb.Get(keyPostings)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	what := fmt.Sprintf("segment %s field %d postings", s.id, field)
	if err := storage.Verify(what, blob, stats.PostingsChecksum); err != nil {
		return nil, err
	}
	return &boltInvertedIndex{
		dict:     &boltDictionary{db: s.db, segment: s.id, field: field},
		postings: blob,
	}, nil
}

func fieldBucket(tx *bolt.Tx, segment string, field index.Field) (*bolt.Bucket, error) {
	sb := tx.Bucket(bucketSegments).Bucket([]byte(segment))
	if sb == nil {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	fb := sb.Bucket(fieldKey(field))
	if fb == nil {
		return nil, fmt.Errorf("%w: segment %s is missing field %d", ErrCorruptSegment, segment, field)
	}
	return fb, nil
}

type boltInvertedIndex struct {
	dict     *boltDictionary
	postings []byte
}

func (ix *boltInvertedIndex) Terms() termdict.Dictionary {
	return ix.dict
}

func (ix *boltInvertedIndex) ReadBlockPostings(info termdict.TermInfo, opt postings.RecordOption) (*postings.BlockPostings, error) {
	end := info.PostingsOffset + uint64(info.PostingsLen)
	if end < info.PostingsOffset || end > uint64(len(ix.postings)) {
		return nil, fmt.Errorf("%w: [%d, %d) of %d bytes", index.ErrBadLocator, info.PostingsOffset, end, len(ix.postings))
	}
	return postings.Open(ix.postings[info.PostingsOffset:end], opt)
}

// boltDictionary walks a field's terms bucket. Each cursor holds its own
// read-only transaction until closed.
type boltDictionary struct {
	db      *bolt.DB
	segment string
	field   index.Field
}

func (d *boltDictionary) Cursor() (termdict.Cursor, error) {
	tx, err := d.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	fb, err := fieldBucket(tx, d.segment, d.field)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	tb := fb.Bucket(bucketTerms)
	if tb == nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: segment %s field %d has no terms", ErrCorruptSegment, d.segment, d.field)
	}
	return &boltCursor{tx: tx, c: tb.Cursor()}, nil
}

type boltCursor struct {
	tx  *bolt.Tx
	c   *bolt.Cursor
	err error
}

func (c *boltCursor) Seek(key []byte) ([]byte, termdict.TermInfo, bool) {
	if c.tx == nil {
		return nil, termdict.TermInfo{}, false
	}
	if len(key) == 0 {
		return c.entry(c.c.First())
	}
	return c.entry(c.c.Seek(key))
}

func (c *boltCursor) Next() ([]byte, termdict.TermInfo, bool) {
	if c.tx == nil {
		return nil, termdict.TermInfo{}, false
	}
	return c.entry(c.c.Next())
}

func (c *boltCursor) entry(k, v []byte) ([]byte, termdict.TermInfo, bool) {
	if k == nil || c.err != nil {
		return nil, termdict.TermInfo{}, false
	}
	info, err := decodeTermInfo(v)
	if err != nil {
		c.err = fmt.Errorf("term %q: %w", k, err)
		return nil, termdict.TermInfo{}, false
	}
	return k, info, true
}

func (c *boltCursor) Err() error {
	return c.err
}

func (c *boltCursor) Close() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}
