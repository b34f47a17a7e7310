package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient represents a uniform fill light with no position.
	// Every fragment receives color * intensity regardless of orientation.
	LightTypeAmbient LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range, shaped by a decay exponent.
	LightTypePoint
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	lightType  LightType
	position   [3]float32
	color      [3]float32
	intensity  float32
	lightRange float32
	decay      float32
	enabled    bool
}

// Light defines the interface for a light source in the scene.
//
// The badge scene uses one ambient light and one point light that follows the pointer.
// Lights are marshaled into the per-frame GPU lights uniform via ToGPULights.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (ambient or point)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for ambient lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the distance at which a point light's contribution reaches zero.
	// Zero means unlimited.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// Decay returns the distance falloff exponent for point lights.
	//
	// Returns:
	//   - float32: the decay exponent
	Decay() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// SetColor sets the linear RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: the color components
	SetColor(r, g, b float32)

	// SetIntensity sets the intensity multiplier.
	//
	// Parameters:
	//   - intensity: the new intensity
	SetIntensity(intensity float32)

	// SetEnabled toggles whether the light contributes to rendering.
	//
	// Parameters:
	//   - enabled: true to enable the light
	SetEnabled(enabled bool)

	// Follow moves the light a fraction of the remaining distance toward target.
	// Repeated calls with the same target converge geometrically without overshooting
	// for any alpha in (0, 1].
	//
	// Parameters:
	//   - target: the world-space point to move toward
	//   - alpha: the fraction of the remaining distance to cover
	//
	// Returns:
	//   - [3]float32: the new position
	Follow(target [3]float32, alpha float32) [3]float32
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with white color, unit intensity
// and any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (ambient or point)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:         &sync.Mutex{},
		lightType:  lightType,
		color:      [3]float32{1, 1, 1},
		intensity:  1.0,
		lightRange: 0,
		decay:      2,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Decay() float32 {
	return l.decay
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) Follow(target [3]float32, alpha float32) [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = common.Lerp3(l.position, target, common.Clamp(alpha, 0, 1))
	return l.position
}
