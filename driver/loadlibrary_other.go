//go:build !windows

package driver

import "github.com/LoveWonYoung/passthru/j2534"

// Load is only implemented on Windows, where J2534 drivers are DLLs.
func Load(path string) (j2534.Library, error) {
	return nil, j2534.NewError(j2534.Unimplemented, "PassThru drivers can only be loaded on Windows")
}
