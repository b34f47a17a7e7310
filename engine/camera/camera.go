package camera

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix                  [16]float32
	projectionMatrix            [16]float32
	viewProjectionMatrix        [16]float32
	inverseViewProjectionMatrix [16]float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for a perspective camera.
// The camera holds its own position and look-at target and keeps the view, projection and
// view-projection matrices current whenever one of its parameters changes.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the camera position
	Position() [3]float32

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - [3]float32: the look-at target
	Target() [3]float32

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Unproject maps a normalized device coordinate back into world space.
	// x and y are in [-1, 1]; z is the normalized depth in [0, 1] (0 at the near plane).
	//
	// Parameters:
	//   - ndc: the normalized device coordinate
	//
	// Returns:
	//   - [3]float32: the world-space point
	Unproject(ndc [3]float32) [3]float32

	// Project maps a world-space point to normalized device coordinates.
	//
	// Parameters:
	//   - world: the world-space point
	//
	// Returns:
	//   - [3]float32: x and y in [-1, 1] when on screen, z the normalized depth
	Project(world [3]float32) [3]float32

	// Uniform builds the GPU camera uniform for the current frame.
	//
	// Parameters:
	//   - elapsed: seconds since the scene started, exposed to shaders as position.w
	//   - width, height: drawing buffer size in physical pixels
	//   - pixelRatio: device pixel ratio applied to the drawing buffer
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready to marshal
	Uniform(elapsed float32, width, height int, pixelRatio float32) GPUCameraUniform

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: the new world-space position
	SetPosition(x, y, z float32)

	// SetTarget changes the look-at target and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: the new world-space target
	SetTarget(x, y, z float32)

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - x, y, z: up vector components
	SetUp(x, y, z float32)

	// SetFov sets the field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new perspective Camera. Without options the camera sits at (0, 0, 12)
// looking at the origin with a 50 degree vertical field of view, near 0.1 and far 1000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0, 12},
		up:       [3]float32{0, 1, 0},
		fov:      50.0 * (math.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      1000.0,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Unproject(ndc [3]float32) [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.TransformPoint(c.inverseViewProjectionMatrix[:], ndc)
}

func (c *cameraImpl) Project(world [3]float32) [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.TransformPoint(c.viewProjectionMatrix[:], world)
}

func (c *cameraImpl) Uniform(elapsed float32, width, height int, pixelRatio float32) GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		View:     c.viewMatrix,
		Position: [4]float32{c.position[0], c.position[1], c.position[2], elapsed},
		Viewport: [4]float32{float32(width), float32(height), pixelRatio, 0},
	}
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider = provider
}

// updateMatrices recalculates the view, projection, view-projection and inverse view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:],
		c.position[0], c.position[1], c.position[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)

	common.Perspective(c.projectionMatrix[:],
		c.fov, c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	if !common.Invert4(c.inverseViewProjectionMatrix[:], c.viewProjectionMatrix[:]) {
		common.Identity(c.inverseViewProjectionMatrix[:])
	}
}
