// Package payload turns user input (hex strings, Intel HEX images) into
// batches of PassThru messages.
package payload

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/marcinbor85/gohex"

	"github.com/LoveWonYoung/passthru/j2534"
)

// SplitBlock cuts data into consecutive chunks of at most blockSize bytes.
// The chunks alias data.
func SplitBlock(data []byte, blockSize int) [][]byte {
	if blockSize <= 0 {
		blockSize = len(data)
	}
	var blocks [][]byte
	for i := 0; i < len(data); i += blockSize {
		end := i + blockSize
		// 最后一块可能不足 blockSize
		if end > len(data) {
			end = len(data)
		}
		blocks = append(blocks, data[i:end])
	}
	return blocks
}

// ParseHex decodes a hex string such as "00 00 07 DF 02 01 00" or
// "0x01,0x02". Spaces, tabs, colons and commas between bytes are ignored and
// each token may carry a 0x prefix.
func ParseHex(s string) ([]byte, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', ':', ',', '\n', '\r':
			return true
		}
		return false
	})
	for i, tok := range tokens {
		tokens[i] = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	}
	clean := strings.Join(tokens, "")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return data, nil
}

// Segment is one contiguous block of an Intel HEX image.
type Segment struct {
	Address uint32
	Data    []byte
}

// ReadIntelHex parses the Intel HEX file at path.
func ReadIntelHex(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var segments []Segment
	for _, seg := range mem.GetDataSegments() {
		segments = append(segments, Segment{Address: seg.Address, Data: seg.Data})
	}
	return segments, nil
}

// Messages wraps each block in a Message carrying prefix followed by the
// block. prefix is typically the 4-byte CAN id of ISO15765 frames.
func Messages(blocks [][]byte, prefix []byte, flags uint32) ([]j2534.Message, error) {
	msgs := make([]j2534.Message, 0, len(blocks))
	for i, block := range blocks {
		p := make([]byte, 0, len(prefix)+len(block))
		p = append(append(p, prefix...), block...)
		if len(p) > j2534.DataCapacity {
			return nil, fmt.Errorf("block %d: %d bytes exceeds message capacity %d", i, len(p), j2534.DataCapacity)
		}
		msgs = append(msgs, j2534.Message{Payload: p, Flags: flags})
	}
	return msgs, nil
}

// FromIntelHex loads an Intel HEX image and splits every segment into
// messages of at most blockSize data bytes after prefix.
func FromIntelHex(path string, blockSize int, prefix []byte, flags uint32) ([]j2534.Message, error) {
	segments, err := ReadIntelHex(path)
	if err != nil {
		return nil, err
	}
	var msgs []j2534.Message
	for _, seg := range segments {
		batch, err := Messages(SplitBlock(seg.Data, blockSize), prefix, flags)
		if err != nil {
			return nil, fmt.Errorf("segment 0x%08X: %w", seg.Address, err)
		}
		msgs = append(msgs, batch...)
	}
	return msgs, nil
}
