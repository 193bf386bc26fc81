package j2534

// EntryPoints is the PassThru function table of a loaded driver. An
// implementation is either complete or does not exist; there is no way to
// hold a table with some entry points missing.
//
// Record buffers are contiguous PASSTHRU_MSG arrays built with NewBuffer
// or EncodeBatch. numMsgs is in/out as in the C API.
type EntryPoints interface {
	PassThruOpen() (deviceID uint32, code StatusCode)
	PassThruClose(deviceID uint32) StatusCode
	PassThruConnect(deviceID, protocolID, flags, baudRate uint32) (channelID uint32, code StatusCode)
	PassThruDisconnect(channelID uint32) StatusCode
	PassThruReadMsgs(channelID uint32, records []byte, numMsgs *uint32, timeoutMs uint32) StatusCode
	PassThruWriteMsgs(channelID uint32, records []byte, numMsgs *uint32, timeoutMs uint32) StatusCode
	// PassThruIoctl passes input through untouched. The output pointer is
	// always NULL.
	PassThruIoctl(handleID, ioctlID uint32, input []byte) StatusCode
}

// Library is a loaded driver module. Unload releases it and is safe to
// call more than once.
type Library interface {
	EntryPoints
	Unload() error
}
