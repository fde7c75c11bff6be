package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AutomatonSearch/internal/storage"
)

// SegmentFormatVersion is bumped whenever the persisted segment layout changes.
const SegmentFormatVersion uint32 = 1

var ErrSegmentInfoCorrupt = errors.New("segment info checksum verification failed")

// SegmentInfo is the persisted metadata of one segment.
type SegmentInfo struct {
	SegmentID     string               `json:"segment_id"`
	FormatVersion uint32               `json:"format_version"`
	CreatedAt     time.Time            `json:"created_at"`
	MaxDoc        uint32               `json:"max_doc"`
	Fields        map[Field]FieldStats `json:"fields"`
	Checksum      storage.Checksum     `json:"checksum"`
}

// FieldStats describes one field's data inside a segment.
type FieldStats struct {
	TermCount        int              `json:"term_count"`
	SumDocFreq       uint64           `json:"sum_doc_freq"`
	PostingsBytes    int              `json:"postings_bytes"`
	PostingsChecksum storage.Checksum `json:"postings_checksum"`
}

// NewSegmentInfo collects the metadata of seg.
func NewSegmentInfo(id string, seg *MemSegment, now time.Time) *SegmentInfo {
	info := &SegmentInfo{
		SegmentID:     id,
		FormatVersion: SegmentFormatVersion,
		CreatedAt:     now.UTC(),
		MaxDoc:        seg.MaxDoc(),
		Fields:        make(map[Field]FieldStats, len(seg.fields)),
	}
	for field, ix := range seg.fields {
		stats := FieldStats{
			TermCount:        ix.dict.Len(),
			PostingsBytes:    len(ix.postings),
			PostingsChecksum: storage.ComputeChecksum(ix.postings),
		}
		for i := 0; i < ix.dict.Len(); i++ {
			_, ti := ix.dict.Term(i)
			stats.SumDocFreq += uint64(ti.DocFreq)
		}
		info.Fields[field] = stats
	}
	return info
}

// MarshalSegmentInfo serializes segment info to JSON with a checksum.
func MarshalSegmentInfo(info *SegmentInfo) ([]byte, error) {
	checksum, err := computeSegmentInfoChecksum(info)
	if err != nil {
		return nil, fmt.Errorf("compute segment info checksum: %w", err)
	}
	info.Checksum = checksum

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal segment info: %w", err)
	}
	return data, nil
}

// UnmarshalSegmentInfo deserializes segment info from JSON and verifies its checksum.
func UnmarshalSegmentInfo(data []byte) (*SegmentInfo, error) {
	var info SegmentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal segment info: %w", err)
	}

	saved := info.Checksum
	computed, err := computeSegmentInfoChecksum(&info)
	if err != nil {
		return nil, fmt.Errorf("compute segment info checksum for verification: %w", err)
	}
	if computed != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrSegmentInfoCorrupt, saved, computed)
	}
	if info.FormatVersion != SegmentFormatVersion {
		return nil, fmt.Errorf("segment %s: unsupported format version %d", info.SegmentID, info.FormatVersion)
	}
	return &info, nil
}

func computeSegmentInfoChecksum(info *SegmentInfo) (storage.Checksum, error) {
	saved := info.Checksum
	info.Checksum = ""
	defer func() { info.Checksum = saved }()

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}
	return storage.ComputeChecksum(data), nil
}
