package native

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// BuiltinLocator selects the in-process Go implementation instead of a shared library.
const BuiltinLocator = "builtin:"

// Load resolves a module locator. The BuiltinLocator prefix yields the Go implementation; anything else is
// treated as a shared library path.
//
// Parameters:
//   - locator: "builtin:" or a path to the weaver shared library
//
// Returns:
//   - Module: the loaded module
//   - error: error if the library could not be loaded
func Load(locator string) (Module, error) {
	if strings.HasPrefix(locator, BuiltinLocator) {
		common.Logger().Info("native module loaded", "locator", locator, "kind", "builtin")
		return NewBuiltin(), nil
	}
	lib, err := OpenLibrary(locator)
	if err != nil {
		return nil, err
	}
	common.Logger().Info("native module loaded", "locator", locator, "kind", "shared")
	return lib, nil
}
