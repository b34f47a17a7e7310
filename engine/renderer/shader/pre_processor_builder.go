package shader

// PreProcessorBuilderOption is a functional option applied to a pre-processor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithStruct registers an additional struct that can be referenced by @badge:include and
// @badge:group annotations. Registering an existing key replaces its entry.
//
// Parameters:
//   - key: the struct key used in annotations
//   - typeName: the WGSL type name declared by source
//   - source: the WGSL struct definition
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the struct option to a pre-processor
func WithStruct(key, typeName, source string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structRegistry[AnnotationArg(key)] = registryEntry{Source: source, Type: typeName}
	}
}
