package j2534

import "encoding/binary"

// PASSTHRU_MSG layout. Every header field is an `unsigned long`, which is
// 32 bits on Windows for both 386 and amd64, so the record has no padding.
// All supported Windows targets are little-endian.
const (
	offProtocolID     = 0
	offRxStatus       = 4
	offTxFlags        = 8
	offTimestamp      = 12
	offDataSize       = 16
	offExtraDataIndex = 20
	offData           = 24

	// DataCapacity is the fixed size of the Data array.
	DataCapacity = 4128
	// RecordSize is sizeof(PASSTHRU_MSG).
	RecordSize = offData + DataCapacity

	// MaxReadBatch caps the records requested by a single read.
	MaxReadBatch = 16
)

// Message is the application-side view of a PassThru message.
// Flags travel as TxFlags on send and come back from RxStatus on receive.
// Timestamp is assigned by the driver and ignored on send.
type Message struct {
	Payload   []byte
	Flags     uint32
	Timestamp uint32
}

// Record mirrors one PASSTHRU_MSG slot.
type Record struct {
	ProtocolID     uint32
	RxStatus       uint32
	TxFlags        uint32
	Timestamp      uint32
	DataSize       uint32
	ExtraDataIndex uint32
	Data           [DataCapacity]byte
}

// Encode builds the outbound record for msg on a channel of protocolID.
func Encode(msg Message, protocolID uint32) (Record, error) {
	var rec Record
	if len(msg.Payload) > DataCapacity {
		return rec, NewError(InvalidArgument, "message payload of %d bytes exceeds J2534 limit of %d", len(msg.Payload), DataCapacity)
	}
	rec.ProtocolID = protocolID
	rec.TxFlags = msg.Flags
	rec.DataSize = uint32(len(msg.Payload))
	copy(rec.Data[:], msg.Payload)
	return rec, nil
}

// Decode converts a record filled by the driver. A DataSize beyond the
// buffer is a driver contract violation.
func Decode(rec *Record) (Message, error) {
	if rec.DataSize > DataCapacity {
		return Message{}, NewError(DriverError, "driver reported payload of %d bytes, larger than buffer of %d", rec.DataSize, DataCapacity)
	}
	payload := make([]byte, rec.DataSize)
	copy(payload, rec.Data[:rec.DataSize])
	return Message{
		Payload:   payload,
		Flags:     rec.RxStatus,
		Timestamp: rec.Timestamp,
	}, nil
}

// MarshalTo writes r into b, which must hold at least RecordSize bytes.
// Only DataSize bytes of Data are copied; the remainder of the slot is
// zeroed.
func (r *Record) MarshalTo(b []byte) {
	_ = b[RecordSize-1]
	binary.LittleEndian.PutUint32(b[offProtocolID:], r.ProtocolID)
	binary.LittleEndian.PutUint32(b[offRxStatus:], r.RxStatus)
	binary.LittleEndian.PutUint32(b[offTxFlags:], r.TxFlags)
	binary.LittleEndian.PutUint32(b[offTimestamp:], r.Timestamp)
	binary.LittleEndian.PutUint32(b[offDataSize:], r.DataSize)
	binary.LittleEndian.PutUint32(b[offExtraDataIndex:], r.ExtraDataIndex)
	n := copy(b[offData:offData+DataCapacity], r.Data[:min(r.DataSize, DataCapacity)])
	clear(b[offData+n : offData+DataCapacity])
}

// UnmarshalFrom reads a record from b, which must hold at least RecordSize
// bytes. DataSize is taken as-is and validated by Decode.
func (r *Record) UnmarshalFrom(b []byte) {
	_ = b[RecordSize-1]
	r.ProtocolID = binary.LittleEndian.Uint32(b[offProtocolID:])
	r.RxStatus = binary.LittleEndian.Uint32(b[offRxStatus:])
	r.TxFlags = binary.LittleEndian.Uint32(b[offTxFlags:])
	r.Timestamp = binary.LittleEndian.Uint32(b[offTimestamp:])
	r.DataSize = binary.LittleEndian.Uint32(b[offDataSize:])
	r.ExtraDataIndex = binary.LittleEndian.Uint32(b[offExtraDataIndex:])
	copy(r.Data[:], b[offData:offData+DataCapacity])
}

// NewBuffer allocates a contiguous PASSTHRU_MSG array of n slots.
func NewBuffer(n int) []byte {
	return make([]byte, n*RecordSize)
}

// EncodeBatch encodes msgs into a contiguous record array. Every payload is
// validated before the buffer is returned, so a failure means nothing
// reaches the driver.
func EncodeBatch(msgs []Message, protocolID uint32) ([]byte, error) {
	buf := NewBuffer(len(msgs))
	for i, msg := range msgs {
		rec, err := Encode(msg, protocolID)
		if err != nil {
			return nil, err
		}
		rec.MarshalTo(buf[i*RecordSize:])
	}
	return buf, nil
}

// DecodeBatch appends the first n records of buf to dst in driver order.
// n is clamped to the number of slots in buf.
func DecodeBatch(dst []Message, buf []byte, n int) ([]Message, error) {
	if slots := len(buf) / RecordSize; n > slots {
		n = slots
	}
	var rec Record
	for i := 0; i < n; i++ {
		rec.UnmarshalFrom(buf[i*RecordSize:])
		msg, err := Decode(&rec)
		if err != nil {
			return dst, err
		}
		dst = append(dst, msg)
	}
	return dst, nil
}

// ReadBatchSize turns a caller's buffer capacity into the number of records
// requested from the driver, within [1, MaxReadBatch]. A zero hint means the
// caller did not size its buffer and gets the full batch.
func ReadBatchSize(hint int) int {
	if hint <= 0 {
		return MaxReadBatch
	}
	return min(hint, MaxReadBatch)
}
