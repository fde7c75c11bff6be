// Package store persists schemas and segments in a bbolt database.
//
// Layout:
//
//	meta/schema                      checksummed schema JSON
//	segments/<id>/info               checksummed index.SegmentInfo JSON
//	segments/<id>/ids                external document ids, JSON array
//	segments/<id>/f<field>/postings  postings blob of the field
//	segments/<id>/f<field>/terms/    one key per term, value is the TermInfo
//
// A field's term bucket is walked directly by the term dictionary cursor, so
// automaton pruning skips whole key ranges on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/storage"
)

var (
	bucketMeta     = []byte("meta")
	bucketSegments = []byte("segments")
	bucketTerms    = []byte("terms")
	keySchema      = []byte("schema")
	keyInfo        = []byte("info")
	keyIDs         = []byte("ids")
	keyPostings    = []byte("postings")
)

var (
	ErrNoSchema        = errors.New("store has no schema")
	ErrSegmentNotFound = errors.New("segment not found")
	ErrSegmentExists   = errors.New("segment already exists")
	ErrCorruptSegment  = errors.New("corrupt segment data")
)

// Store is a bbolt-backed segment store. It is safe for concurrent use.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (or creates) the store at path. A nil logger falls back to
// slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, storage.FilePerm, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketSegments)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db, logger: logger.With("component", "store", "path", path)}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSchema validates and stores the schema, replacing any previous one.
func (s *Store) SaveSchema(schema *index.Schema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	data, err := index.MarshalSchema(schema)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchema, data)
	})
}

// LoadSchema reads and verifies the stored schema.
func (s *Store) LoadSchema() (*index.Schema, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keySchema); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoSchema
	}
	return index.UnmarshalSchema(data)
}

// CreateSegment stores seg under a freshly allocated id and returns the id.
func (s *Store) CreateSegment(seg *index.MemSegment) (string, error) {
	var id string
	err := s.db.Update(func(tx *bolt.Tx) error {
		segs := tx.Bucket(bucketSegments)
		seq, err := segs.NextSequence()
		if err != nil {
			return err
		}
		id = fmt.Sprintf("seg_%06d", seq)
		return writeSegment(segs, id, seg)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("segment saved", "segment", id, "max_doc", seg.MaxDoc())
	return id, nil
}

// SaveSegment stores seg under id. The id must not exist yet.
func (s *Store) SaveSegment(id string, seg *index.MemSegment) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return writeSegment(tx.Bucket(bucketSegments), id, seg)
	})
	if err != nil {
		return err
	}
	s.logger.Info("segment saved", "segment", id, "max_doc", seg.MaxDoc())
	return nil
}

func writeSegment(segs *bolt.Bucket, id string, seg *index.MemSegment) error {
	if id == "" {
		return fmt.Errorf("%w: empty segment id", ErrCorruptSegment)
	}
	if segs.Bucket([]byte(id)) != nil {
		return fmt.Errorf("%w: %s", ErrSegmentExists, id)
	}
	b, err := segs.CreateBucket([]byte(id))
	if err != nil {
		return fmt.Errorf("create segment bucket %s: %w", id, err)
	}

	info, err := index.MarshalSegmentInfo(index.NewSegmentInfo(id, seg, time.Now()))
	if err != nil {
		return err
	}
	if err := b.Put(keyInfo, info); err != nil {
		return err
	}
	if ids := seg.ExternalIDs(); ids != nil {
		data, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("marshal external ids: %w", err)
		}
		if err := b.Put(keyIDs, data); err != nil {
			return err
		}
	}

	for _, field := range seg.Fields() {
		ix, _ := seg.FieldIndex(field)
		fb, err := b.CreateBucket(fieldKey(field))
		if err != nil {
			return err
		}
		if err := fb.Put(keyPostings, ix.Postings()); err != nil {
			return err
		}
		tb, err := fb.CreateBucket(bucketTerms)
		if err != nil {
			return err
		}
		dict := ix.Dictionary()
		for i := 0; i < dict.Len(); i++ {
			term, ti := dict.Term(i)
			if err := tb.Put(term, encodeTermInfo(ti)); err != nil {
				return fmt.Errorf("put term %q: %w", term, err)
			}
		}
	}
	return nil
}

// OpenSegment loads a segment's metadata and returns a reader over it.
func (s *Store) OpenSegment(id string) (*Segment, error) {
	var infoData, idsData []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSegments).Bucket([]byte(id))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
		}
		infoData = append([]byte(nil), b.Get(keyInfo)...)
		if v := b.Get(keyIDs); v != nil {
			idsData = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info, err := index.UnmarshalSegmentInfo(infoData)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", id, err)
	}
	seg := &Segment{db: s.db, id: id, info: info}
	if idsData != nil {
		if err := json.Unmarshal(idsData, &seg.externalIDs); err != nil {
			return nil, fmt.Errorf("%w: segment %s external ids: %v", ErrCorruptSegment, id, err)
		}
	}
	return seg, nil
}

// Segments returns the metadata of every stored segment, ordered by id.
func (s *Store) Segments() ([]*index.SegmentInfo, error) {
	var out []*index.SegmentInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSegments).ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			info, err := index.UnmarshalSegmentInfo(tx.Bucket(bucketSegments).Bucket(k).Get(keyInfo))
			if err != nil {
				return fmt.Errorf("segment %s: %w", k, err)
			}
			out = append(out, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentID < out[j].SegmentID })
	return out, nil
}

// DeleteSegment removes a segment and all its data.
func (s *Store) DeleteSegment(id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketSegments).DeleteBucket([]byte(id))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
		}
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("segment deleted", "segment", id)
	return nil
}
