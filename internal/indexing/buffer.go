package indexing

import (
	"errors"
	"sync/atomic"

	"AutomatonSearch/internal/index"
)

// Buffer limits.
const (
	DefaultBufferMemoryLimit = 64 * 1024 * 1024 // 64MB
	DefaultMaxDocsPerSegment = 100_000
)

var (
	ErrBufferFull      = errors.New("write buffer memory limit reached")
	ErrDuplicateDoc    = errors.New("duplicate document ID in buffer")
	ErrWriterNotActive = errors.New("writer is not active")
)

// WriteBuffer accumulates documents until they are flushed into a segment.
type WriteBuffer struct {
	segment *index.SegmentBuilder

	// ExternalIDs[docID] is the external id of each buffered document.
	ExternalIDs        []string
	externalToInternal map[string]uint32

	memoryUsed  atomic.Int64
	MemoryLimit int64
	MaxDocs     int
}

// NewWriteBuffer creates a new empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		segment:            index.NewSegmentBuilder(),
		externalToInternal: make(map[string]uint32),
		MemoryLimit:        DefaultBufferMemoryLimit,
		MaxDocs:            DefaultMaxDocsPerSegment,
	}
}

// AddPosting records freq occurrences of term in docID.
func (b *WriteBuffer) AddPosting(field index.Field, term string, docID, freq uint32) {
	b.segment.Add(field, term, docID, freq)

	// Approximate memory tracking.
	b.memoryUsed.Add(int64(16 + len(term)))
}

// AllocateDocID assigns the next internal doc ID to an external ID.
func (b *WriteBuffer) AllocateDocID(externalID string) (uint32, error) {
	if _, exists := b.externalToInternal[externalID]; exists {
		return 0, ErrDuplicateDoc
	}
	docID := uint32(len(b.ExternalIDs))
	b.ExternalIDs = append(b.ExternalIDs, externalID)
	b.externalToInternal[externalID] = docID
	b.memoryUsed.Add(int64(len(externalID)))
	return docID, nil
}

// DocCount returns the number of buffered documents.
func (b *WriteBuffer) DocCount() int {
	return len(b.ExternalIDs)
}

// TermCount returns the number of distinct (field, term) pairs buffered.
func (b *WriteBuffer) TermCount() int {
	return b.segment.TermCount()
}

// MemoryUsed returns the approximate memory used by the buffer.
func (b *WriteBuffer) MemoryUsed() int64 {
	return b.memoryUsed.Load()
}

// IsFull returns true if the buffer has reached its memory or document limit.
func (b *WriteBuffer) IsFull() bool {
	return b.DocCount() >= b.MaxDocs || b.memoryUsed.Load() >= b.MemoryLimit
}

// Build encodes the buffered documents into a segment. The buffer is left
// untouched; call Reset to reuse it.
func (b *WriteBuffer) Build() (*index.MemSegment, error) {
	b.segment.SetExternalIDs(b.ExternalIDs)
	return b.segment.Build(uint32(b.DocCount()))
}

// Reset clears the buffer for reuse.
func (b *WriteBuffer) Reset() {
	b.segment = index.NewSegmentBuilder()
	b.ExternalIDs = nil
	b.externalToInternal = make(map[string]uint32)
	b.memoryUsed.Store(0)
}
