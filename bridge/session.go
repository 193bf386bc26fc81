package bridge

import (
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LoveWonYoung/passthru/j2534"
)

// Session is the Bridge that talks to a real driver library.
//
// Handles are only meaningful in the states that own them: lib and
// deviceID from Opened on, channelID and protocolID only while Connected.
type Session struct {
	loader Loader

	state      State
	lib        j2534.Library
	deviceID   uint32
	channelID  uint32
	protocolID uint32

	// id tags log lines of one open..close cycle.
	id string
}

var _ Bridge = (*Session)(nil)

// NewSession returns a closed Session that loads drivers with loader.
// A Session dropped without Close is closed by the garbage collector.
func NewSession(loader Loader) *Session {
	s := &Session{loader: loader}
	runtime.SetFinalizer(s, (*Session).finalize)
	return s
}

func (s *Session) finalize() {
	if s.state == Closed {
		return
	}
	Logger().Warn("bridge session garbage collected while open", s.fields()...)
	s.Close()
}

func (s *Session) State() State { return s.state }

// ID identifies the current open..close cycle; empty while Closed.
func (s *Session) ID() string { return s.id }

func (s *Session) fields(extra ...zap.Field) []zap.Field {
	fields := []zap.Field{zap.String("session", s.id), zap.Stringer("state", s.state)}
	if s.state != Closed {
		fields = append(fields, zap.Uint32("device", s.deviceID))
	}
	if s.state == Connected {
		fields = append(fields, zap.Uint32("channel", s.channelID), zap.Uint32("protocol", s.protocolID))
	}
	return append(fields, extra...)
}

func (s *Session) fail(op string, r j2534.Result) j2534.Result {
	Logger().Warn(op+" failed", s.fields(zap.Stringer("status", r.Status), zap.String("reason", r.Message))...)
	return r
}

func (s *Session) reset() {
	s.state = Closed
	s.lib = nil
	s.deviceID = 0
	s.channelID = 0
	s.protocolID = 0
	s.id = ""
}

func (s *Session) Open(path string) j2534.Result {
	if s.state != Closed {
		return j2534.Fail(j2534.InvalidState, "driver already open")
	}
	if path == "" {
		return j2534.Fail(j2534.InvalidArgument, "driver path is empty or invalid")
	}

	lib, err := s.loader.Load(path)
	if err != nil {
		return s.fail("open", j2534.FromError(err))
	}

	deviceID, code := lib.PassThruOpen()
	if code != j2534.STATUS_NOERROR {
		r := j2534.FromStatus(code)
		if err := lib.Unload(); err != nil {
			Logger().Warn("unload after failed PassThruOpen", zap.String("path", path), zap.Error(err))
		}
		return s.fail("open", r)
	}

	s.lib = lib
	s.deviceID = deviceID
	s.state = Opened
	s.id = uuid.NewString()
	Logger().Info("driver opened", s.fields(zap.String("path", path))...)
	return j2534.OK
}

func (s *Session) Close() j2534.Result {
	if s.state == Closed {
		return j2534.OK
	}

	// First failure wins; later steps still run so nothing leaks.
	first := j2534.OK
	latch := func(r j2534.Result) {
		if first.IsOK() && !r.IsOK() {
			first = r
		}
	}

	if s.state == Connected {
		latch(j2534.FromStatus(s.lib.PassThruDisconnect(s.channelID)))
	}
	latch(j2534.FromStatus(s.lib.PassThruClose(s.deviceID)))
	latch(j2534.FromError(s.lib.Unload()))

	fields := s.fields()
	s.reset()
	if !first.IsOK() {
		Logger().Warn("close completed with error", append(fields, zap.String("reason", first.Message))...)
		return first
	}
	Logger().Info("driver closed", fields...)
	return j2534.OK
}

func (s *Session) Connect(protocolID, flags, baudRate uint32) j2534.Result {
	switch s.state {
	case Closed:
		return j2534.Fail(j2534.InvalidState, "driver is not open")
	case Connected:
		return j2534.Fail(j2534.InvalidState, "channel already connected")
	}

	channelID, code := s.lib.PassThruConnect(s.deviceID, protocolID, flags, baudRate)
	if code != j2534.STATUS_NOERROR {
		return s.fail("connect", j2534.FromStatus(code))
	}

	s.channelID = channelID
	s.protocolID = protocolID
	s.state = Connected
	Logger().Info("channel connected", s.fields(zap.Uint32("flags", flags), zap.Uint32("baud", baudRate))...)
	return j2534.OK
}

func (s *Session) Disconnect() j2534.Result {
	switch s.state {
	case Closed:
		return j2534.Fail(j2534.InvalidState, "driver is not open")
	case Opened:
		return j2534.OK
	}
	if s.lib == nil {
		return j2534.Fail(j2534.InvalidState, "disconnect entry point not available")
	}

	if code := s.lib.PassThruDisconnect(s.channelID); code != j2534.STATUS_NOERROR {
		return s.fail("disconnect", j2534.FromStatus(code))
	}

	Logger().Info("channel disconnected", s.fields()...)
	s.channelID = 0
	s.protocolID = 0
	s.state = Opened
	return j2534.OK
}

func (s *Session) requireChannel() (j2534.Result, bool) {
	switch s.state {
	case Closed:
		return j2534.Fail(j2534.InvalidState, "driver is not open"), false
	case Opened:
		return j2534.Fail(j2534.InvalidState, "channel is not connected"), false
	}
	return j2534.OK, true
}

func (s *Session) ReadMessages(dst []j2534.Message, timeoutMs uint32) ([]j2534.Message, j2534.Result) {
	out := dst[:0]
	if r, ok := s.requireChannel(); !ok {
		return out, r
	}

	batch := j2534.ReadBatchSize(cap(dst))
	buf := j2534.NewBuffer(batch)
	numMsgs := uint32(batch)
	code := s.lib.PassThruReadMsgs(s.channelID, buf, &numMsgs, timeoutMs)
	if code == j2534.ERR_BUFFER_EMPTY {
		return out, j2534.FromReadStatus(code)
	}
	if code != j2534.STATUS_NOERROR {
		return out, s.fail("read", j2534.FromStatus(code))
	}

	out, err := j2534.DecodeBatch(out, buf, int(numMsgs))
	if err != nil {
		return dst[:0], s.fail("read", j2534.FromError(err))
	}
	return out, j2534.OK
}

func (s *Session) WriteMessages(msgs []j2534.Message, timeoutMs uint32) j2534.Result {
	if len(msgs) == 0 {
		return j2534.Fail(j2534.InvalidArgument, "no messages to send")
	}
	if r, ok := s.requireChannel(); !ok {
		return r
	}

	buf, err := j2534.EncodeBatch(msgs, s.protocolID)
	if err != nil {
		return j2534.FromError(err)
	}

	numMsgs := uint32(len(msgs))
	if code := s.lib.PassThruWriteMsgs(s.channelID, buf, &numMsgs, timeoutMs); code != j2534.STATUS_NOERROR {
		return s.fail("write", j2534.FromStatus(code))
	}
	if numMsgs != uint32(len(msgs)) {
		return s.fail("write", j2534.Fail(j2534.DriverError, "driver wrote %d of %d messages", numMsgs, len(msgs)))
	}
	return j2534.OK
}

func (s *Session) Ioctl(ioctlID uint32, payload []byte) j2534.Result {
	if r, ok := s.requireChannel(); !ok {
		return r
	}
	if len(payload) == 0 {
		payload = nil
	}
	if code := s.lib.PassThruIoctl(s.channelID, ioctlID, payload); code != j2534.STATUS_NOERROR {
		return s.fail("ioctl", j2534.FromStatus(code))
	}
	return j2534.OK
}
