// Package bridge drives a J2534 PassThru driver through its open/connect
// lifecycle.
//
// A Bridge owns at most one driver library, one device and one channel.
// Every operation returns a j2534.Result; nothing panics across the API.
// A Bridge is not safe for concurrent use: callers serialise access.
package bridge

import (
	"fmt"

	"github.com/LoveWonYoung/passthru/j2534"
)

// State is the lifecycle position of a Bridge.
type State int

const (
	Closed State = iota
	Opened
	Connected
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Opened:
		return "Opened"
	case Connected:
		return "Connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Bridge is the public operation surface. New picks the implementation
// for the running platform.
type Bridge interface {
	// Open loads the driver at path and opens its device.
	Open(path string) j2534.Result
	// Close disconnects, closes the device and unloads the driver, in that
	// order, attempting every step. Closing a closed bridge succeeds.
	Close() j2534.Result
	Connect(protocolID, flags, baudRate uint32) j2534.Result
	Disconnect() j2534.Result
	// ReadMessages reads up to min(cap(dst), 16) messages into dst[:0]
	// (16 when dst has no capacity). On failure the returned slice is empty.
	ReadMessages(dst []j2534.Message, timeoutMs uint32) ([]j2534.Message, j2534.Result)
	// WriteMessages sends msgs as one batch. It succeeds only if the driver
	// accepted every message.
	WriteMessages(msgs []j2534.Message, timeoutMs uint32) j2534.Result
	// Ioctl passes payload to the driver for the connected channel. Any
	// output the driver produces is discarded.
	Ioctl(ioctlID uint32, payload []byte) j2534.Result
	State() State
}

// Loader binds a driver library. driver.Loader is the production loader.
type Loader interface {
	Load(path string) (j2534.Library, error)
}
