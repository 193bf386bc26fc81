package payload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoveWonYoung/passthru/j2534"
)

func TestSplitBlock(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, [][]byte{{1, 2, 3}, {4, 5, 6}, {7}}, SplitBlock(data, 3))
	assert.Equal(t, [][]byte{{1, 2, 3, 4, 5, 6, 7}}, SplitBlock(data, 0))
	assert.Equal(t, [][]byte{{1, 2, 3, 4, 5, 6, 7}}, SplitBlock(data, 100))
	assert.Nil(t, SplitBlock(nil, 8))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"00 00 07 DF 02 01 00", []byte{0x00, 0x00, 0x07, 0xDF, 0x02, 0x01, 0x00}},
		{"0x0102", []byte{0x01, 0x02}},
		{"0x01 0x02", []byte{0x01, 0x02}},
		{"0X7E,0x80", []byte{0x7E, 0x80}},
		{"de:ad:be:ef", []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"", []byte{}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseHex("0G")
	assert.Error(t, err)
	_, err = ParseHex("123")
	assert.Error(t, err)
}

func TestMessages(t *testing.T) {
	msgs, err := Messages([][]byte{{0x10}, {0x20, 0x21}}, []byte{0x00, 0x00, 0x07, 0xE0}, j2534.ISO15765_FRAME_PAD)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte{0x00, 0x00, 0x07, 0xE0, 0x20, 0x21}, msgs[1].Payload)
	assert.Equal(t, j2534.ISO15765_FRAME_PAD, msgs[1].Flags)

	_, err = Messages([][]byte{make([]byte, j2534.DataCapacity)}, []byte{0x00}, 0)
	assert.Error(t, err)
}

func TestFromIntelHex(t *testing.T) {
	// Six data bytes at 0x0000 followed by the end-of-file record.
	image := ":06000000010203040506E5\n:00000001FF\n"
	path := filepath.Join(t.TempDir(), "image.hex")
	require.NoError(t, os.WriteFile(path, []byte(image), 0o644))

	msgs, err := FromIntelHex(path, 4, []byte{0xAA}, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte{0xAA, 0x01, 0x02, 0x03, 0x04}, msgs[0].Payload)
	assert.Equal(t, []byte{0xAA, 0x05, 0x06}, msgs[1].Payload)
}

func TestFromIntelHex_Errors(t *testing.T) {
	_, err := FromIntelHex(filepath.Join(t.TempDir(), "missing.hex"), 8, nil, 0)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.hex")
	require.NoError(t, os.WriteFile(path, []byte(":0600000001020304050600\n:00000001FF\n"), 0o644))
	_, err = FromIntelHex(path, 8, nil, 0)
	assert.Error(t, err)
}
