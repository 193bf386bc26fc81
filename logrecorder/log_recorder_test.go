package logrecorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoveWonYoung/passthru/j2534"
)

func TestMakeDir(t *testing.T) {
	base := t.TempDir()
	dir, err := MakeDir(base)
	require.NoError(t, err)
	assert.Equal(t, base, filepath.Dir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directories are reused.
	again, err := MakeDir(base)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestNewLogger(t *testing.T) {
	base := t.TempDir()
	logger, err := NewLogger("debug", base, "passthru_")
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	dir, err := MakeDir(base)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "passthru_"))

	_, err = NewLogger("loud", "", "x")
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	rec, err := NewRecorder(t.TempDir(), "capture_")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())

	tx := []j2534.Message{{Payload: []byte{0x00, 0x00, 0x07, 0xDF, 0x01, 0x00}, Flags: j2534.ISO15765_FRAME_PAD}}
	rx := []j2534.Message{
		{Payload: []byte{0x00, 0x00, 0x07, 0xE8, 0x41, 0x00}, Timestamp: 1234},
		{Payload: []byte{0x00, 0x00, 0x07, 0xE9, 0x41, 0x00}, Flags: 0x02, Timestamp: 1240},
	}
	require.NoError(t, rec.Record(TX, j2534.ISO15765, tx))
	require.NoError(t, rec.Record(RX, j2534.ISO15765, rx))
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	// Ignored once closed.
	assert.NoError(t, rec.Record(TX, j2534.ISO15765, tx))

	frames, err := ReadFrames(rec.Path())
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, TX, frames[0].Direction)
	assert.Equal(t, j2534.ISO15765_FRAME_PAD, frames[0].Flags)
	assert.Equal(t, tx[0].Payload, frames[0].Data)
	assert.Equal(t, RX, frames[2].Direction)
	assert.Equal(t, uint32(1240), frames[2].Timestamp)
	assert.Equal(t, uint32(0x02), frames[2].Flags)
	for _, f := range frames {
		assert.Equal(t, rec.ID(), f.Capture)
		assert.Equal(t, j2534.ISO15765, f.ProtocolID)
	}
}
