package j2534

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLayout(t *testing.T) {
	// sizeof(PASSTHRU_MSG) with 32-bit unsigned long.
	assert.Equal(t, 4152, RecordSize)

	rec := Record{
		ProtocolID:     0x11223344,
		RxStatus:       0x01,
		TxFlags:        0x40,
		Timestamp:      0xAABBCCDD,
		DataSize:       3,
		ExtraDataIndex: 0,
	}
	copy(rec.Data[:], []byte{0xDE, 0xAD, 0xBF})

	b := make([]byte, RecordSize)
	rec.MarshalTo(b)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, b[0:4])
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, b[4:8])
	assert.Equal(t, []byte{0x40, 0x00, 0x00, 0x00}, b[8:12])
	assert.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA}, b[12:16])
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00}, b[16:20])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, b[20:24])
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBF, 0x00}, b[24:28])

	var back Record
	back.UnmarshalFrom(b)
	assert.Equal(t, rec, back)
}

func TestMarshalTo_ClearsStaleData(t *testing.T) {
	b := bytes.Repeat([]byte{0xFF}, RecordSize)
	rec := Record{DataSize: 1}
	rec.Data[0] = 0x01
	rec.MarshalTo(b)
	assert.Equal(t, byte(0x01), b[offData])
	assert.Equal(t, make([]byte, DataCapacity-1), b[offData+1:RecordSize])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 8, 64, 4095, DataCapacity}
	for _, n := range sizes {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		rec, err := Encode(Message{Payload: payload, Flags: 0x40, Timestamp: 123}, ISO15765)
		require.NoError(t, err)
		assert.Equal(t, uint32(n), rec.DataSize)
		assert.Equal(t, ISO15765, rec.ProtocolID)
		assert.Equal(t, uint32(0x40), rec.TxFlags)
		assert.Zero(t, rec.RxStatus)
		assert.Zero(t, rec.Timestamp)

		msg, err := Decode(&rec)
		require.NoError(t, err)
		assert.Equal(t, payload, msg.Payload, "size %d", n)
	}
}

func TestEncode_Oversized(t *testing.T) {
	_, err := Encode(Message{Payload: make([]byte, DataCapacity+1)}, CAN)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, InvalidArgument, FromError(err).Status)
}

func TestDecode(t *testing.T) {
	rec := Record{RxStatus: 0x02, Timestamp: 999, DataSize: 2}
	copy(rec.Data[:], []byte{0x10, 0x20, 0x30})

	msg, err := Decode(&rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x20}, msg.Payload)
	assert.Equal(t, uint32(0x02), msg.Flags)
	assert.Equal(t, uint32(999), msg.Timestamp)

	// The payload does not alias the record.
	rec.Data[0] = 0xFF
	assert.Equal(t, byte(0x10), msg.Payload[0])
}

func TestDecode_SizeBeyondCapacity(t *testing.T) {
	rec := Record{DataSize: DataCapacity + 1}
	_, err := Decode(&rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDriver))
}

func TestEncodeBatch(t *testing.T) {
	msgs := []Message{
		{Payload: []byte{0x01}, Flags: 1},
		{Payload: []byte{0x02, 0x03}, Flags: 2},
	}
	buf, err := EncodeBatch(msgs, CAN)
	require.NoError(t, err)
	require.Len(t, buf, 2*RecordSize)

	out, err := DecodeBatch(nil, buf, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []byte{0x02, 0x03}, out[1].Payload)

	_, err = EncodeBatch(append(msgs, Message{Payload: make([]byte, DataCapacity+1)}), CAN)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDecodeBatch_ClampsCount(t *testing.T) {
	buf, err := EncodeBatch([]Message{{Payload: []byte{0x01}}}, CAN)
	require.NoError(t, err)

	out, err := DecodeBatch(nil, buf, 5)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestReadBatchSize(t *testing.T) {
	tests := []struct {
		hint int
		want int
	}{
		{-1, MaxReadBatch},
		{0, MaxReadBatch},
		{1, 1},
		{7, 7},
		{16, 16},
		{17, 16},
		{1 << 20, 16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadBatchSize(tt.hint), "hint %d", tt.hint)
	}
}
