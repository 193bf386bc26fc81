//go:build windows

package bridge

import "github.com/LoveWonYoung/passthru/driver"

// New returns a Session that loads drivers from DLLs.
func New() Bridge {
	return NewSession(driver.Loader{})
}
