package store

import (
	"encoding/binary"
	"fmt"

	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/termdict"
)

// encodeTermInfo writes a TermInfo as three uvarints:
// DocFreq, PostingsOffset, PostingsLen.
func encodeTermInfo(info termdict.TermInfo) []byte {
	buf := make([]byte, 0, 3*binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(info.DocFreq))
	buf = binary.AppendUvarint(buf, info.PostingsOffset)
	buf = binary.AppendUvarint(buf, uint64(info.PostingsLen))
	return buf
}

func decodeTermInfo(data []byte) (termdict.TermInfo, error) {
	var vals [3]uint64
	for i := range vals {
		v, n := binary.Uvarint(data)
		if n <= 0 {
			return termdict.TermInfo{}, fmt.Errorf("%w: truncated term info", ErrCorruptSegment)
		}
		vals[i] = v
		data = data[n:]
	}
	if len(data) != 0 || vals[0] > 1<<32-1 || vals[2] > 1<<32-1 {
		return termdict.TermInfo{}, fmt.Errorf("%w: malformed term info", ErrCorruptSegment)
	}
	return termdict.TermInfo{
		DocFreq:        uint32(vals[0]),
		PostingsOffset: vals[1],
		PostingsLen:    uint32(vals[2]),
	}, nil
}

// fieldKey names a field's bucket inside a segment bucket.
func fieldKey(f index.Field) []byte {
	key := make([]byte, 0, 5)
	key = append(key, 'f')
	return binary.BigEndian.AppendUint32(key, uint32(f))
}
