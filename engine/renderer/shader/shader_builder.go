package shader

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithPreProcessor sets the pre-processor used to expand the shader's annotations. Use it to
// resolve structs registered with WithStruct. Defaults to NewPreProcessor().
//
// Parameters:
//   - pp: the pre-processor to use
//
// Returns:
//   - ShaderBuilderOption: a function that applies the pre-processor option to a shader
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}

// WithValidation enables compiling the processed source to SPIR-V as a front-end check before
// the shader is accepted.
//
// Parameters:
//   - enabled: true to validate the shader in NewShader
//
// Returns:
//   - ShaderBuilderOption: a function that applies the validation option to a shader
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}
