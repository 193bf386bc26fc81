package bridge

import "github.com/LoveWonYoung/passthru/j2534"

const unsupportedMessage = "PassThru bridge is only available on Windows"

// Unsupported is the Bridge for platforms without J2534 driver support.
// Every operation reports Unimplemented and performs no I/O.
type Unsupported struct{}

var _ Bridge = Unsupported{}

func unimplemented() j2534.Result {
	return j2534.Result{Status: j2534.Unimplemented, Message: unsupportedMessage}
}

func (Unsupported) Open(string) j2534.Result { return unimplemented() }
func (Unsupported) Close() j2534.Result { return unimplemented() }
func (Unsupported) Connect(uint32, uint32, uint32) j2534.Result { return unimplemented() }
func (Unsupported) Disconnect() j2534.Result { return unimplemented() }
func (Unsupported) Ioctl(uint32, []byte) j2534.Result { return unimplemented() }
func (Unsupported) State() State { return Closed }

func (Unsupported) ReadMessages(dst []j2534.Message, _ uint32) ([]j2534.Message, j2534.Result) {
	return dst[:0], unimplemented()
}

func (Unsupported) WriteMessages([]j2534.Message, uint32) j2534.Result {
	return unimplemented()
}
