package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V binary.
const spirvMagic = 0x07230203

// Validate compiles a processed WGSL module to SPIR-V with naga. A module that parses, lowers
// and validates is accepted by the GPU driver's WGSL front end as well, so this catches
// malformed shaders before a pipeline is created.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - error: the compiler error, or nil if the module compiled to a well-formed SPIR-V binary
func Validate(source string) error {
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv[:4]) != spirvMagic {
		return fmt.Errorf("validate: compiler produced no SPIR-V module")
	}
	return nil
}
