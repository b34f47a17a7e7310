// annotations.go defines the annotation types and parser for the badge WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @badge: that drive struct
// injection and bind group declaration. The parsed results are stored as Annotation
// values and consumed by the PreProcessor.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@badge:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@badge:include <struct_key>
	//
	// Example: //@badge:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list.
	//
	// Syntax: //@badge:group <group> <binding> <address_space> <var_name> <struct_key>
	//
	// Example: //@badge:group 0 0 uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation represents a single parsed @badge: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include or group).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct key (e.g. "camera")
	//   - group:   [0] = address space, [1] = var name, [2] = struct key
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string used as an argument in annotations.
type AnnotationArg string

// Struct keys built into every PreProcessor. Each maps to a Go GPU type with an embedded .wgsl asset.
const (
	// AnnotationArgCamera identifies the CameraUniform struct (engine/camera).
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLights identifies the Lights struct (engine/light).
	AnnotationArgLights AnnotationArg = "lights"

	// AnnotationArgVertex identifies the VertexInput struct (engine/geometry).
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgPointInstance identifies the per-instance PointInstance struct (engine/geometry).
	AnnotationArgPointInstance AnnotationArg = "point_instance"

	// AnnotationArgPhysical identifies the PhysicalUniform struct (engine/renderer/material).
	AnnotationArgPhysical AnnotationArg = "physical"

	// AnnotationArgHeart identifies the HeartUniform struct (engine/renderer/material).
	AnnotationArgHeart AnnotationArg = "heart"

	// AnnotationArgInk identifies the InkUniform struct (engine/renderer/material).
	AnnotationArgInk AnnotationArg = "ink"

	// AnnotationArgPoints identifies the PointsUniform struct (engine/renderer/material).
	AnnotationArgPoints AnnotationArg = "points"

	// AnnotationArgSprite identifies the SpriteUniform struct (engine/renderer/material).
	AnnotationArgSprite AnnotationArg = "sprite"
)

// Address space arguments of @badge:group annotations.
const (
	// annotationArgUniform maps to var<uniform> in WGSL.
	annotationArgUniform AnnotationArg = "uniform"

	// annotationArgStorageRead maps to var<storage, read> in WGSL.
	annotationArgStorageRead AnnotationArg = "storage_read"
)

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @badge:group annotations.
var validAddressSpaces = []AnnotationArg{
	annotationArgUniform,
	annotationArgStorageRead,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @badge: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Struct keys
// are not checked here; the PreProcessor resolves them against its registry.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @badge annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @badge include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @badge group annotation requires exactly five arguments (group, binding, address space, var name, struct key)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil || groupInt < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @badge group annotation", lineNum, args[1])
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil || bindingInt < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @badge group annotation", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @badge group annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @badge annotation type %q", lineNum, args[0])
	}
}
