package index

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"AutomatonSearch/internal/storage"
)

func buildTestSegment(t *testing.T) *MemSegment {
	t.Helper()
	b := NewSegmentBuilder()
	b.Add(0, "help", 0, 1)
	b.Add(0, "hello", 0, 1)
	b.Add(0, "hello", 1, 2)
	b.Add(2, "world", 1, 1)
	seg, err := b.Build(2)
	if err != nil {
		t.Fatal(err)
	}
	return seg
}

func TestNewSegmentInfo(t *testing.T) {
	seg := buildTestSegment(t)
	info := NewSegmentInfo("seg_1", seg, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))

	if info.MaxDoc != 2 {
		t.Errorf("MaxDoc = %d, want 2", info.MaxDoc)
	}
	if len(info.Fields) != 2 {
		t.Fatalf("Fields = %d, want 2", len(info.Fields))
	}
	stats := info.Fields[0]
	if stats.TermCount != 2 || stats.SumDocFreq != 3 {
		t.Errorf("field 0 stats = %+v", stats)
	}
	ix, _ := seg.FieldIndex(0)
	if err := storage.Verify("field 0", ix.Postings(), stats.PostingsChecksum); err != nil {
		t.Errorf("postings checksum: %v", err)
	}
}

func TestMarshalUnmarshalSegmentInfo_RoundTrip(t *testing.T) {
	info := NewSegmentInfo("seg_1", buildTestSegment(t), time.Now())
	data, err := MarshalSegmentInfo(info)
	if err != nil {
		t.Fatal(err)
	}

	got, err := UnmarshalSegmentInfo(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.SegmentID != "seg_1" || got.MaxDoc != info.MaxDoc {
		t.Errorf("got %+v", got)
	}
	if got.Fields[2] != info.Fields[2] {
		t.Errorf("field 2 = %+v, want %+v", got.Fields[2], info.Fields[2])
	}
}

func TestUnmarshalSegmentInfo_Tampered(t *testing.T) {
	data, err := MarshalSegmentInfo(NewSegmentInfo("seg_1", buildTestSegment(t), time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	tampered := bytes.Replace(data, []byte(`"max_doc": 2`), []byte(`"max_doc": 9`), 1)

	if _, err := UnmarshalSegmentInfo(tampered); !errors.Is(err, ErrSegmentInfoCorrupt) {
		t.Errorf("expected ErrSegmentInfoCorrupt, got: %v", err)
	}
}
