// pre_processor.go implements the badge WGSL shader pre-processor. It scans shader
// source code for @badge: annotations, replaces them with generated WGSL declarations
// or injected struct source, and collects the generated binding declarations.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources and their
//     resolved type names. Used by @badge:include (to inject the struct source) and
//     @badge:group (to resolve the WGSL type name in the generated declaration).
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-badges/engine/camera"
	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/light"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @badge:include.
	Source string

	// Type is the WGSL type name emitted in @badge:group declarations (e.g. "CameraUniform").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @badge: annotations,
// replacing them with generated declarations or injected struct sources.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and replaces @badge: annotations with their
	// WGSL output. Include annotations are replaced with embedded struct source text, group
	// annotations with generated @group/@binding variable declarations. A struct included
	// more than once is emitted only at its first include site.
	//
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown struct
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent call to
	// Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the engine's GPU struct types and address
// space mappings pre-populated. Additional structs can be registered with WithStruct.
//
// Parameters:
//   - options: variadic list of PreProcessorBuilderOption functions
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:        {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLights:        {Source: light.GPULightsSource, Type: "Lights"},
			AnnotationArgVertex:        {Source: geometry.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgPointInstance: {Source: geometry.GPUPointInstanceSource, Type: "PointInstance"},
			AnnotationArgPhysical:      {Source: material.GPUPhysicalUniformSource, Type: "PhysicalUniform"},
			AnnotationArgHeart:         {Source: material.GPUHeartUniformSource, Type: "HeartUniform"},
			AnnotationArgInk:           {Source: material.GPUInkUniformSource, Type: "InkUniform"},
			AnnotationArgPoints:        {Source: material.GPUPointsUniformSource, Type: "PointsUniform"},
			AnnotationArgSprite:        {Source: material.GPUSpriteUniformSource, Type: "SpriteUniform"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgUniform:     "var<uniform>",
			annotationArgStorageRead: "var<storage, read>",
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct %q in @badge:include", i+1, a.Args[0])
			}
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct %q in @badge:group", i+1, a.Args[2])
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
