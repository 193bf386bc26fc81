//go:build windows

package driver

import (
	"fmt"
	"syscall"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/LoveWonYoung/passthru/j2534"
)

// procs holds the resolved PassThru exports, in the order they are looked up.
type procs struct {
	open       uintptr
	close      uintptr
	connect    uintptr
	disconnect uintptr
	readMsgs   uintptr
	writeMsgs  uintptr
	ioctl      uintptr
}

// DLL is a J2534 driver loaded with LoadLibrary.
type DLL struct {
	path   string
	handle windows.Handle
	procs  procs
}

// Load loads the driver DLL at path and binds all seven PassThru exports.
// If any export is missing the DLL is freed before returning.
func Load(path string) (j2534.Library, error) {
	if path == "" {
		return nil, j2534.NewError(j2534.InvalidArgument, "driver path is empty")
	}
	// LoadLibraryW takes UTF-16; reject paths that cannot be represented.
	if _, err := windows.UTF16PtrFromString(path); err != nil {
		return nil, &j2534.Error{Status: j2534.InvalidArgument, Message: "driver path is invalid", Cause: err}
	}

	handle, err := windows.LoadLibrary(path)
	if err != nil {
		Logger().Warn("LoadLibrary failed", zap.String("path", path), zap.Error(err))
		return nil, j2534.NewError(j2534.DriverError, "load %s: %s", path, formatOSError(err))
	}

	d := &DLL{path: path, handle: handle}
	targets := []struct {
		name string
		dst  *uintptr
	}{
		{"PassThruOpen", &d.procs.open},
		{"PassThruClose", &d.procs.close},
		{"PassThruConnect", &d.procs.connect},
		{"PassThruDisconnect", &d.procs.disconnect},
		{"PassThruReadMsgs", &d.procs.readMsgs},
		{"PassThruWriteMsgs", &d.procs.writeMsgs},
		{"PassThruIoctl", &d.procs.ioctl},
	}
	for _, t := range targets {
		proc, err := windows.GetProcAddress(handle, t.name)
		if err != nil {
			_ = windows.FreeLibrary(handle)
			Logger().Warn("driver export missing", zap.String("path", path), zap.String("symbol", t.name))
			return nil, j2534.NewError(j2534.DriverError, "missing symbol %s: %s", t.name, formatOSError(err))
		}
		*t.dst = proc
	}

	Logger().Debug("driver loaded", zap.String("path", path))
	return d, nil
}

// Unload frees the DLL. Calling it again, or on a nil *DLL, does nothing.
func (d *DLL) Unload() error {
	if d == nil || d.handle == 0 {
		return nil
	}
	handle := d.handle
	d.handle = 0
	d.procs = procs{}
	if err := windows.FreeLibrary(handle); err != nil {
		return j2534.NewError(j2534.DriverError, "unload %s: %s", d.path, formatOSError(err))
	}
	return nil
}

// Pointer arguments are converted inside the SyscallN argument list so the
// referenced memory stays live for the duration of the call.

// PassThruOpen long PassThruOpen(void *pName, unsigned long *pDeviceID);
func (d *DLL) PassThruOpen() (uint32, j2534.StatusCode) {
	var deviceID uint32
	ret, _, _ := syscall.SyscallN(d.procs.open, 0, uintptr(unsafe.Pointer(&deviceID)))
	return deviceID, status(ret)
}

// PassThruClose long PassThruClose(unsigned long DeviceID);
func (d *DLL) PassThruClose(deviceID uint32) j2534.StatusCode {
	ret, _, _ := syscall.SyscallN(d.procs.close, uintptr(deviceID))
	return status(ret)
}

// PassThruConnect long PassThruConnect(unsigned long DeviceID, unsigned long ProtocolID, unsigned long Flags, unsigned long BaudRate, unsigned long *pChannelID);
func (d *DLL) PassThruConnect(deviceID, protocolID, flags, baudRate uint32) (uint32, j2534.StatusCode) {
	var channelID uint32
	ret, _, _ := syscall.SyscallN(d.procs.connect,
		uintptr(deviceID),
		uintptr(protocolID),
		uintptr(flags),
		uintptr(baudRate),
		uintptr(unsafe.Pointer(&channelID)),
	)
	return channelID, status(ret)
}

// PassThruDisconnect long PassThruDisconnect(unsigned long ChannelID);
func (d *DLL) PassThruDisconnect(channelID uint32) j2534.StatusCode {
	ret, _, _ := syscall.SyscallN(d.procs.disconnect, uintptr(channelID))
	return status(ret)
}

// PassThruReadMsgs long PassThruReadMsgs(unsigned long ChannelID, PASSTHRU_MSG *pMsg, unsigned long *pNumMsgs, unsigned long Timeout);
func (d *DLL) PassThruReadMsgs(channelID uint32, records []byte, numMsgs *uint32, timeoutMs uint32) j2534.StatusCode {
	ret, _, _ := syscall.SyscallN(d.procs.readMsgs,
		uintptr(channelID),
		uintptr(unsafe.Pointer(unsafe.SliceData(records))),
		uintptr(unsafe.Pointer(numMsgs)),
		uintptr(timeoutMs),
	)
	return status(ret)
}

// PassThruWriteMsgs long PassThruWriteMsgs(unsigned long ChannelID, PASSTHRU_MSG *pMsg, unsigned long *pNumMsgs, unsigned long Timeout);
func (d *DLL) PassThruWriteMsgs(channelID uint32, records []byte, numMsgs *uint32, timeoutMs uint32) j2534.StatusCode {
	ret, _, _ := syscall.SyscallN(d.procs.writeMsgs,
		uintptr(channelID),
		uintptr(unsafe.Pointer(unsafe.SliceData(records))),
		uintptr(unsafe.Pointer(numMsgs)),
		uintptr(timeoutMs),
	)
	return status(ret)
}

// PassThruIoctl long PassThruIoctl(unsigned long HandleID, unsigned long IoctlID, void *pInput, void *pOutput);
func (d *DLL) PassThruIoctl(handleID, ioctlID uint32, input []byte) j2534.StatusCode {
	ret, _, _ := syscall.SyscallN(d.procs.ioctl,
		uintptr(handleID),
		uintptr(ioctlID),
		uintptr(unsafe.Pointer(unsafe.SliceData(input))),
		0,
	)
	return status(ret)
}

// status sign-extends the 32-bit `long` result.
func status(ret uintptr) j2534.StatusCode {
	return j2534.StatusCode(int32(ret))
}

// formatOSError renders a loader error through FormatMessage, falling back
// to the raw code when the system has no text for it.
func formatOSError(err error) string {
	errno, ok := err.(syscall.Errno)
	if !ok {
		return err.Error()
	}
	buf := make([]uint16, 512)
	flags := uint32(windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS)
	n, ferr := windows.FormatMessage(flags, 0, uint32(errno), 0, buf, nil)
	if ferr != nil || n == 0 {
		return fmt.Sprintf("Windows error code: %d", uint32(errno))
	}
	// FormatMessage terminates system messages with CRLF.
	for n > 0 && (buf[n-1] == '\n' || buf[n-1] == '\r' || buf[n-1] == '.') {
		n--
	}
	return fmt.Sprintf("%s (code %d)", windows.UTF16ToString(buf[:n]), uint32(errno))
}
