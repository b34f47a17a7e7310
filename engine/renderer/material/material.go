package material

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

//go:embed assets/shaders/*.wgsl
var shaderFS embed.FS

// Kind identifies the shading model of a material. Every kind has its own WGSL program
// and GPU uniform layout.
type Kind int

const (
	// KindPhysical is the metallic-roughness surface with sheen, iridescence and emission.
	KindPhysical Kind = iota

	// KindHeart is the time-driven heart shader lit by an explicitly supplied light position.
	KindHeart

	// KindInk is the animated ink blot backdrop.
	KindInk

	// KindPoints renders particle clouds as instanced camera-facing quads.
	KindPoints

	// KindSprite renders a textured camera-facing billboard.
	KindSprite
)

// Kinds lists every material kind in declaration order.
var Kinds = []Kind{KindPhysical, KindHeart, KindInk, KindPoints, KindSprite}

// String returns the lowercase name of the kind, which is also the base name of its shader asset.
func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindHeart:
		return "heart"
	case KindInk:
		return "ink"
	case KindPoints:
		return "points"
	case KindSprite:
		return "sprite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Blending selects how fragments are combined with the color already in the target.
type Blending int

const (
	// BlendingNormal uses straight alpha blending for transparent materials and no blending otherwise.
	BlendingNormal Blending = iota

	// BlendingAdditive adds the source color weighted by its alpha onto the target.
	BlendingAdditive
)

// ShaderSource returns the annotated WGSL source of the given kind's shader program.
// Unknown kinds return an empty string.
//
// Parameters:
//   - k: the material kind
//
// Returns:
//   - string: the raw WGSL source before pre-processing
func ShaderSource(k Kind) string {
	data, err := shaderFS.ReadFile("assets/shaders/" + k.String() + ".wgsl")
	if err != nil {
		return ""
	}
	return string(data)
}

// material is the implementation of the Material interface.
type material struct {
	name        string
	kind        Kind
	color       [3]float32
	opacity     float32
	transparent bool
	blending    Blending
	depthWrite  bool

	metalness         float32
	roughness         float32
	sheen             float32
	sheenColor        [3]float32
	iridescence       float32
	iridescenceIOR    float32
	emissive          [3]float32
	emissiveIntensity float32

	size            float32
	sizeAttenuation bool
	noiseScale      float32
	texture         *common.TextureStagingData

	time          float32
	lightPosition [3]float32

	disposed bool
}

// Material describes how a mesh is shaded. It carries the CPU-side surface parameters and
// knows how to serialize them, together with the owning object's world matrix, into the
// uniform layout expected by its shader.
//
// A material holds no GPU resources; the mesh that draws it owns the uniform buffer and
// bind group. One material can therefore be shared by several meshes.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind retrieves the shading model of the material.
	//
	// Returns:
	//   - Kind: the material kind
	Kind() Kind

	// PipelineKey retrieves the key of the render pipeline variant this material needs.
	// Materials with the same kind, blend mode and depth write setting share a pipeline.
	//
	// Returns:
	//   - string: the pipeline key, e.g. "physical/opaque" or "points/additive/nodepth"
	PipelineKey() string

	// ShaderSource retrieves the annotated WGSL source of this material's shader.
	//
	// Returns:
	//   - string: the raw WGSL source
	ShaderSource() string

	// Color retrieves the linear RGB base color.
	Color() [3]float32

	// Opacity retrieves the alpha written by the shader.
	Opacity() float32

	// Transparent reports whether the material is drawn with blending enabled.
	Transparent() bool

	// Blending retrieves the blend mode.
	Blending() Blending

	// DepthWrite reports whether the material writes to the depth buffer.
	DepthWrite() bool

	Metalness() float32
	Roughness() float32
	Sheen() float32
	SheenColor() [3]float32
	Iridescence() float32
	IridescenceIOR() float32
	Emissive() [3]float32
	EmissiveIntensity() float32

	// Size retrieves the point size of a points material.
	Size() float32

	// SizeAttenuation reports whether point size shrinks with distance.
	SizeAttenuation() bool

	// NoiseScale retrieves the uv scale of the ink blot noise.
	NoiseScale() float32

	// Texture retrieves the staged texture of a sprite material, or nil if none is set or the
	// material has been disposed.
	//
	// Returns:
	//   - *common.TextureStagingData: the texture pixels, or nil
	Texture() *common.TextureStagingData

	// Time retrieves the elapsed-time uniform of animated materials.
	Time() float32

	// LightPosition retrieves the light position uniform of the heart material.
	LightPosition() [3]float32

	// SetColor sets the linear RGB base color.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c [3]float32)

	// SetOpacity sets the alpha written by the shader.
	//
	// Parameters:
	//   - o: the new opacity in [0, 1]
	SetOpacity(o float32)

	// SetTime sets the elapsed-time uniform.
	//
	// Parameters:
	//   - t: elapsed seconds
	SetTime(t float32)

	// SetLightPosition copies a world-space light position into the material.
	//
	// Parameters:
	//   - p: the light position
	SetLightPosition(p [3]float32)

	// UniformSize returns the byte size of the uniform produced by MarshalUniform.
	//
	// Returns:
	//   - int: the uniform size in bytes
	UniformSize() int

	// MarshalUniform serializes the material parameters together with the drawing object's
	// world matrix into the GPU uniform layout of this material's kind.
	//
	// Parameters:
	//   - model: the column-major world matrix of the object being drawn
	//
	// Returns:
	//   - []byte: UniformSize() bytes ready for upload
	MarshalUniform(model [16]float32) []byte

	// Dispose drops the staged texture and marks the material unusable. Calling Dispose more
	// than once has no further effect.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool
}

var _ Material = &material{}

// newMaterial creates a material of the given kind with neutral defaults, then applies options.
func newMaterial(kind Kind, options ...MaterialBuilderOption) Material {
	m := &material{
		name:           kind.String(),
		kind:           kind,
		color:          [3]float32{1, 1, 1},
		opacity:        1,
		depthWrite:     true,
		roughness:      1,
		iridescenceIOR: 1.3,
		size:           1,
		noiseScale:     3,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// New creates a material of the given kind with that kind's defaults.
//
// Parameters:
//   - kind: the shading model
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func New(kind Kind, options ...MaterialBuilderOption) Material {
	switch kind {
	case KindHeart:
		return NewHeart(options...)
	case KindInk:
		return NewInk(options...)
	case KindPoints:
		return NewPoints(options...)
	case KindSprite:
		return NewSprite(options...)
	default:
		return NewPhysical(options...)
	}
}

// NewPhysical creates a metallic-roughness material.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewPhysical(options ...MaterialBuilderOption) Material {
	return newMaterial(KindPhysical, options...)
}

// NewHeart creates the heart shader material. The light position defaults to (0, 0, 8).
func NewHeart(options ...MaterialBuilderOption) Material {
	return newMaterial(KindHeart, append([]MaterialBuilderOption{WithLightPosition([3]float32{0, 0, 8})}, options...)...)
}

// NewInk creates the ink blot backdrop material. It is transparent and does not write depth.
func NewInk(options ...MaterialBuilderOption) Material {
	return newMaterial(KindInk, append([]MaterialBuilderOption{WithTransparent(true), WithDepthWrite(false)}, options...)...)
}

// NewPoints creates a particle material with size attenuation enabled.
func NewPoints(options ...MaterialBuilderOption) Material {
	return newMaterial(KindPoints, append([]MaterialBuilderOption{WithSizeAttenuation(true)}, options...)...)
}

// NewSprite creates a transparent billboard material.
func NewSprite(options ...MaterialBuilderOption) Material {
	return newMaterial(KindSprite, append([]MaterialBuilderOption{WithTransparent(true)}, options...)...)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) PipelineKey() string {
	blend := "opaque"
	switch {
	case m.blending == BlendingAdditive:
		blend = "additive"
	case m.transparent:
		blend = "alpha"
	}
	key := m.kind.String() + "/" + blend
	if !m.depthWrite {
		key += "/nodepth"
	}
	return key
}

func (m *material) ShaderSource() string {
	return ShaderSource(m.kind)
}

func (m *material) Color() [3]float32 {
	return m.color
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) Blending() Blending {
	return m.blending
}

func (m *material) DepthWrite() bool {
	return m.depthWrite
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Sheen() float32 {
	return m.sheen
}

func (m *material) SheenColor() [3]float32 {
	return m.sheenColor
}

func (m *material) Iridescence() float32 {
	return m.iridescence
}

func (m *material) IridescenceIOR() float32 {
	return m.iridescenceIOR
}

func (m *material) Emissive() [3]float32 {
	return m.emissive
}

func (m *material) EmissiveIntensity() float32 {
	return m.emissiveIntensity
}

func (m *material) Size() float32 {
	return m.size
}

func (m *material) SizeAttenuation() bool {
	return m.sizeAttenuation
}

func (m *material) NoiseScale() float32 {
	return m.noiseScale
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) Time() float32 {
	return m.time
}

func (m *material) LightPosition() [3]float32 {
	return m.lightPosition
}

func (m *material) SetColor(c [3]float32) {
	m.color = c
}

func (m *material) SetOpacity(o float32) {
	m.opacity = common.Clamp(o, 0, 1)
}

func (m *material) SetTime(t float32) {
	m.time = t
}

func (m *material) SetLightPosition(p [3]float32) {
	m.lightPosition = p
}

func (m *material) UniformSize() int {
	switch m.kind {
	case KindPhysical:
		var u GPUPhysicalUniform
		return u.Size()
	case KindHeart:
		var u GPUHeartUniform
		return u.Size()
	case KindInk:
		var u GPUInkUniform
		return u.Size()
	case KindPoints:
		var u GPUPointsUniform
		return u.Size()
	case KindSprite:
		var u GPUSpriteUniform
		return u.Size()
	default:
		return 0
	}
}

func (m *material) MarshalUniform(model [16]float32) []byte {
	color := [4]float32{m.color[0], m.color[1], m.color[2], m.opacity}
	switch m.kind {
	case KindPhysical:
		u := GPUPhysicalUniform{
			Model:        model,
			NormalMatrix: NormalMatrix(model),
			Color:        color,
			Emissive: [4]float32{
				m.emissive[0] * m.emissiveIntensity,
				m.emissive[1] * m.emissiveIntensity,
				m.emissive[2] * m.emissiveIntensity,
				0,
			},
			SheenColor: [4]float32{m.sheenColor[0], m.sheenColor[1], m.sheenColor[2], m.sheen},
			Params:     [4]float32{m.metalness, m.roughness, m.iridescence, m.iridescenceIOR},
		}
		return u.Marshal()
	case KindHeart:
		u := GPUHeartUniform{
			Model:         model,
			NormalMatrix:  NormalMatrix(model),
			Color:         color,
			LightPosition: [4]float32{m.lightPosition[0], m.lightPosition[1], m.lightPosition[2], 1},
			Params:        [4]float32{m.time, 0, 0, 0},
		}
		return u.Marshal()
	case KindInk:
		u := GPUInkUniform{
			Model:  model,
			Color:  color,
			Params: [4]float32{m.time, m.noiseScale, 0, 0},
		}
		return u.Marshal()
	case KindPoints:
		var attenuation float32
		if m.sizeAttenuation {
			attenuation = 1
		}
		u := GPUPointsUniform{
			Model:  model,
			Color:  color,
			Params: [4]float32{m.size, attenuation, 0, 0},
		}
		return u.Marshal()
	case KindSprite:
		u := GPUSpriteUniform{
			Model: model,
			Color: color,
		}
		return u.Marshal()
	default:
		return nil
	}
}

func (m *material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.texture = nil
}

func (m *material) Disposed() bool {
	return m.disposed
}

// NormalMatrix returns the inverse transpose of a column-major model matrix as a 4x4 matrix
// whose upper-left 3x3 block transforms normals. A singular model matrix yields the identity.
//
// Parameters:
//   - model: the column-major world matrix
//
// Returns:
//   - [16]float32: the column-major normal matrix
func NormalMatrix(model [16]float32) [16]float32 {
	var inv, out [16]float32
	if !common.Invert4(inv[:], model[:]) {
		common.Identity(out[:])
		return out
	}
	for c := range 4 {
		for r := range 4 {
			out[c*4+r] = inv[r*4+c]
		}
	}
	// drop the translation row so w stays zero for directions
	out[3], out[7], out[11] = 0, 0, 0
	out[12], out[13], out[14] = 0, 0, 0
	out[15] = 1
	return out
}
