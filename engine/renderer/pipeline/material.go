package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ForMaterial builds the pipeline that draws meshes with the given material. Materials that
// share a PipelineKey share a pipeline, so the result is keyed by it.
//
// Parameters:
//   - m: the material whose shading model and blend state the pipeline uses
//   - format: the color target format the scene is drawn into
//   - shaderOptions: options applied to both stages, such as shader.WithValidation
//
// Returns:
//   - Pipeline: the pipeline description, not yet registered with a renderer
//   - error: an error if the material's shader fails to pre-process or validate
func ForMaterial(m material.Material, format wgpu.TextureFormat, shaderOptions ...shader.ShaderBuilderOption) (Pipeline, error) {
	key := m.PipelineKey()
	source := m.ShaderSource()

	vs, err := shader.NewShader(key+"/vs", shader.ShaderTypeVertex, source, shaderOptions...)
	if err != nil {
		return nil, fmt.Errorf("material pipeline: %w", err)
	}
	fs, err := shader.NewShader(key+"/fs", shader.ShaderTypeFragment, source, shaderOptions...)
	if err != nil {
		return nil, fmt.Errorf("material pipeline: %w", err)
	}

	opts := []PipelineBuilderOption{
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithTargetFormat(format),
		WithDepthWriteEnabled(m.DepthWrite()),
		WithBlendEnabled(m.Transparent()),
	}
	if m.Blending() == material.BlendingAdditive {
		opts = append(opts, WithBlendState(AdditiveBlend()))
	}
	return NewPipeline(key, opts...)
}
