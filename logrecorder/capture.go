package logrecorder

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/LoveWonYoung/passthru/j2534"
)

// Direction of a captured message.
type Direction uint8

const (
	RX Direction = 0
	TX Direction = 1
)

func (d Direction) String() string {
	if d == TX {
		return "TX"
	}
	return "RX"
}

// Frame is one captured PassThru message. CBOR uses integer keys.
type Frame struct {
	Time       time.Time `cbor:"1,keyasint"`
	Capture    string    `cbor:"2,keyasint"`
	Direction  Direction `cbor:"3,keyasint"`
	ProtocolID uint32    `cbor:"4,keyasint"`
	Flags      uint32    `cbor:"5,keyasint"`
	Timestamp  uint32    `cbor:"6,keyasint,omitempty"`
	Data       []byte    `cbor:"7,keyasint"`
}

var captureEncMode cbor.EncMode

func init() {
	var err error
	captureEncMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(err)
	}
}

// Recorder appends captured frames to a CBOR sequence file. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	id      string
	path    string
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewRecorder creates dir/<date>/<name><stamp>.cbor.
func NewRecorder(dir, name string) (*Recorder, error) {
	dated, err := MakeDir(dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dated, name+NowString()+".cbor")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		id:      uuid.NewString(),
		path:    path,
		file:    f,
		encoder: captureEncMode.NewEncoder(f),
	}, nil
}

func (r *Recorder) Path() string { return r.path }

// ID is the capture identifier stamped on every frame.
func (r *Recorder) ID() string { return r.id }

// Record writes msgs in order. Calls after Close are ignored.
func (r *Recorder) Record(dir Direction, protocolID uint32, msgs []j2534.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	now := time.Now()
	for _, m := range msgs {
		f := Frame{
			Time:       now,
			Capture:    r.id,
			Direction:  dir,
			ProtocolID: protocolID,
			Flags:      m.Flags,
			Timestamp:  m.Timestamp,
			Data:       m.Payload,
		}
		if err := r.encoder.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the capture file. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadFrames decodes every frame of a capture file.
func ReadFrames(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var frames []Frame
	for {
		var fr Frame
		if err := dec.Decode(&fr); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, fr)
	}
}
