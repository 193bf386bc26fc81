//go:build !windows

package bridge

// New returns Unsupported: J2534 drivers only exist as Windows DLLs.
func New() Bridge {
	return Unsupported{}
}
