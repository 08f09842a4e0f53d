package encoding

import (
	"encoding/binary"
	"fmt"
)

// EncodeRuns encodes a sequence of palette ids as varint (block_id, run_len) pairs.
func EncodeRuns(ids []uint16) []byte {
	out := make([]byte, 0, 64)
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		b := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == b && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(b))
		out = append(out, tmp[:n]...)
		n = binary.PutUvarint(tmp[:], uint64(run))
		out = append(out, tmp[:n]...)

		i += run
	}
	return out
}

// DecodeRuns decodes EncodeRuns output and requires exactly want ids.
func DecodeRuns(raw []byte, want int) ([]uint16, error) {
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if run == 0 {
			return nil, fmt.Errorf("zero-length run at %d", i)
		}
		if uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("runs exceed %d ids", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("runs decode to %d ids, want %d", len(out), want)
	}
	return out, nil
}
