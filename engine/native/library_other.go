//go:build !(darwin || linux || freebsd)

package native

import (
	"fmt"
	"runtime"
)

// OpenLibrary is unavailable on this platform; use the "builtin:" locator instead.
func OpenLibrary(path string) (Module, error) {
	return nil, fmt.Errorf("open %s: shared libraries are not supported on %s", path, runtime.GOOS)
}
