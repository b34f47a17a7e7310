// Package scene owns what a frame needs besides the badge itself: the camera, the lights, the
// frame uniforms and the postprocess chain that turns the scene into the picture on the surface.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/camera"
	"github.com/Carmen-Shannon/oxy-badges/engine/light"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/postprocess"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group layout shared by every material shader.
const (
	frameGroup       = 0
	objectGroup      = 1
	cameraBinding    = 0
	lightsBinding    = 1
	maxPixelRatio    = 2
	defaultSmoothing = 0.1
)

// ErrReleased is returned by operations on a manager after Release.
var ErrReleased = errors.New("scene manager released")

// manager is the implementation of the Manager interface.
type manager struct {
	mu *sync.Mutex

	r             renderer.Renderer
	width, height int
	pixelRatio    float32

	cam     camera.Camera
	ambient light.Light
	pointer light.Light
	frame   bind_group_provider.BindGroupProvider

	root      *mesh.Group
	pipelines map[string]pipeline.Pipeline
	drawList  []mesh.Drawable

	composer   postprocess.Composer
	scenePass  postprocess.RenderPass
	bloom      postprocess.BloomPass
	godRays    postprocess.GodRaysPass
	aberration postprocess.ChromaticAberrationPass
	fxaa       postprocess.FXAAPass
	output     postprocess.OutputPass

	clearColor       wgpu.Color
	bloomConfig      postprocess.BloomConfig
	aberrationConfig postprocess.ChromaticAberrationConfig
	godRaysEnabled   bool
	godRaysConfig    postprocess.GodRaysConfig
	outputConfig     postprocess.OutputConfig
	smoothing        float32
	validateShaders  bool

	start        time.Time
	now          func() time.Time
	ownsRenderer bool
	released     bool
}

// Manager owns the camera, the lights and the postprocess chain of the badge scene. Objects are
// uploaded when added and their uniforms are refreshed on every Render. Render runs the whole
// chain; nothing is drawn to the surface directly.
type Manager interface {
	// Add attaches an object to the scene and uploads every drawable under it that has not been
	// uploaded yet.
	//
	// Parameters:
	//   - obj: the subtree to attach
	//
	// Returns:
	//   - error: an error if a pipeline or GPU resource could not be created
	Add(obj mesh.Object) error

	// Remove detaches an object from the scene. Its GPU resources stay alive; disposing them is up
	// to the owner of the object.
	//
	// Parameters:
	//   - obj: the subtree to detach
	//
	// Returns:
	//   - bool: true if obj was attached
	Remove(obj mesh.Object) bool

	// Objects returns the attached subtrees.
	Objects() []mesh.Object

	// Render writes the frame and object uniforms and runs the postprocess chain for one frame.
	//
	// Returns:
	//   - error: an error if the frame could not be acquired or a pass failed
	Render() error

	// Resize updates the camera aspect, the renderer's backing store and every pass. Calling it
	// with the current size does nothing.
	//
	// Parameters:
	//   - width: the logical width in pixels
	//   - height: the logical height in pixels
	//
	// Returns:
	//   - error: an error if the composer targets could not be recreated
	Resize(width, height int) error

	// Size returns the logical size the scene was last sized to.
	Size() (width, height int)

	// PixelRatio returns the ratio between drawing buffer and logical pixels.
	PixelRatio() float32

	// UpdatePointerLight casts a ray through the pointer position and moves the pointer light a
	// fraction of the way toward where the ray crosses the plane of the light.
	//
	// Parameters:
	//   - ndcX: the pointer x in normalized device coordinates, in [-1, 1]
	//   - ndcY: the pointer y in normalized device coordinates, in [-1, 1]
	//
	// Returns:
	//   - [3]float32: the new light position
	UpdatePointerLight(ndcX, ndcY float32) [3]float32

	// PointerLight returns the light that follows the pointer.
	PointerLight() light.Light

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Composer returns the postprocess chain.
	Composer() postprocess.Composer

	// Elapsed returns the seconds since the manager was created.
	Elapsed() float64

	// Release frees the postprocess chain and the frame uniforms. Attached objects are left to
	// their owners. Calling Release more than once is a no-op.
	Release()
}

var _ Manager = &manager{}
var _ postprocess.Drawer = &manager{}

// NewManager creates the scene for a renderer. The renderer is resized to the drawing buffer,
// which is the logical size scaled by the pixel ratio. The chain is scene, bloom, the optional
// god rays, chromatic aberration, FXAA and output.
//
// Parameters:
//   - r: the renderer bound to the surface
//   - width: the logical width in pixels
//   - height: the logical height in pixels
//   - pixelRatio: device pixels per logical pixel, clamped to [1, 2]
//   - options: variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the manager
//   - error: an error if the frame uniforms or a pass could not be created
func NewManager(r renderer.Renderer, width, height int, pixelRatio float32, options ...ManagerBuilderOption) (Manager, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene size %dx%d must be positive", width, height)
	}
	m := &manager{
		mu:               &sync.Mutex{},
		r:                r,
		width:            width,
		height:           height,
		pixelRatio:       clampPixelRatio(pixelRatio),
		root:             mesh.NewGroup("scene"),
		pipelines:        make(map[string]pipeline.Pipeline),
		clearColor:       wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		bloomConfig:      postprocess.DefaultBloomConfig,
		aberrationConfig: postprocess.DefaultChromaticAberrationConfig,
		godRaysConfig:    postprocess.DefaultGodRaysConfig,
		outputConfig:     postprocess.DefaultOutputConfig,
		smoothing:        defaultSmoothing,
		now:              time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	m.start = m.now()

	m.cam = camera.NewCamera(
		camera.WithFov(50*math.Pi/180),
		camera.WithNear(0.1),
		camera.WithFar(1000),
		camera.WithPosition(0, 0, 12),
		camera.WithAspect(float32(width)/float32(height)),
	)
	m.ambient = light.NewLight(light.LightTypeAmbient, light.WithColorHex(0xffffff), light.WithIntensity(0.5))
	m.pointer = light.NewLight(light.LightTypePoint,
		light.WithColorHex(0xffffff),
		light.WithIntensity(50),
		light.WithRange(100),
		light.WithDecay(2),
		light.WithPosition(0, 0, 8),
	)

	bw, bh := m.bufferSize(width, height)
	r.Resize(bw, bh)

	if err := m.initFrame(); err != nil {
		return nil, err
	}
	if err := m.initChain(bw, bh); err != nil {
		m.frame.Release()
		return nil, err
	}
	common.Logger().Info("scene attached", "width", width, "height", height, "pixelRatio", m.pixelRatio, "godRays", m.godRaysEnabled)
	return m, nil
}

// initFrame creates the group 0 uniforms from the layout every material shares and hands them
// to the camera.
func (m *manager) initFrame() error {
	ref := material.NewPhysical(material.WithName("frame layout"))
	defer ref.Dispose()
	p, err := pipeline.ForMaterial(ref, renderer.HDRFormat)
	if err != nil {
		return fmt.Errorf("frame layout: %w", err)
	}
	m.frame = bind_group_provider.NewBindGroupProvider("frame")
	if err := m.r.InitBindGroup(m.frame, p.BindGroupLayoutDescriptor(frameGroup), nil); err != nil {
		return fmt.Errorf("frame bind group: %w", err)
	}
	m.cam.SetBindGroupProvider(m.frame)
	return nil
}

func (m *manager) initChain(bw, bh int) error {
	composer, err := postprocess.NewComposer(m.r, bw, bh)
	if err != nil {
		return fmt.Errorf("composer: %w", err)
	}
	m.composer = composer

	m.scenePass = postprocess.NewRenderPass(m, m.clearColor)
	composer.AddPass(m.scenePass)

	if m.bloom, err = postprocess.NewBloomPass(m.r, m.bloomConfig); err != nil {
		composer.Release()
		return fmt.Errorf("bloom pass: %w", err)
	}
	composer.AddPass(m.bloom)

	if m.godRaysEnabled {
		if m.godRays, err = postprocess.NewGodRaysPass(m.r, m.pointer, m.cam, m.godRaysConfig); err != nil {
			composer.Release()
			return fmt.Errorf("god rays pass: %w", err)
		}
		composer.AddPass(m.godRays)
	}

	if m.aberration, err = postprocess.NewChromaticAberrationPass(m.r, m.aberrationConfig); err != nil {
		composer.Release()
		return fmt.Errorf("chromatic aberration pass: %w", err)
	}
	composer.AddPass(m.aberration)

	if m.fxaa, err = postprocess.NewFXAAPass(m.r); err != nil {
		composer.Release()
		return fmt.Errorf("fxaa pass: %w", err)
	}
	composer.AddPass(m.fxaa)

	if m.output, err = postprocess.NewOutputPass(m.r, m.outputConfig); err != nil {
		composer.Release()
		return fmt.Errorf("output pass: %w", err)
	}
	composer.AddPass(m.output)
	return nil
}

func (m *manager) Add(obj mesh.Object) error {
	if obj == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}

	for _, d := range mesh.Drawables(obj) {
		if d.Uploaded() {
			continue
		}
		p, err := m.pipelineFor(d.Material())
		if err != nil {
			return fmt.Errorf("add %s: %w", obj.Name(), err)
		}
		if err := d.Upload(m.r, p.BindGroupLayoutDescriptor(objectGroup)); err != nil {
			return fmt.Errorf("add %s: %w", obj.Name(), err)
		}
	}
	m.root.Add(obj)
	return nil
}

// pipelineFor returns the cached pipeline of a material, building and registering it on first use.
func (m *manager) pipelineFor(mat material.Material) (pipeline.Pipeline, error) {
	key := mat.PipelineKey()
	if p, ok := m.pipelines[key]; ok {
		return p, nil
	}
	p, err := pipeline.ForMaterial(mat, renderer.HDRFormat, shader.WithValidation(m.validateShaders))
	if err != nil {
		return nil, err
	}
	if err := m.r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("register %s: %w", key, err)
	}
	m.pipelines[key] = p
	return p, nil
}

func (m *manager) Remove(obj mesh.Object) bool {
	if obj == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root.Remove(obj)
}

func (m *manager) Objects() []mesh.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root.Children()
}

func (m *manager) Render() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}

	if err := m.r.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	bw, bh := m.bufferSize(m.width, m.height)
	cam := m.cam.Uniform(float32(m.elapsed()), bw, bh, m.pixelRatio)
	lights := light.ToGPULights([]light.Light{m.ambient, m.pointer})
	writes := []bind_group_provider.BufferWrite{
		{Provider: m.frame, Binding: cameraBinding, Data: cam.Marshal()},
		{Provider: m.frame, Binding: lightsBinding, Data: lights.Marshal()},
	}
	m.drawList = m.visible()
	for _, d := range m.drawList {
		writes = append(writes, d.UniformWrite())
	}
	m.r.WriteBuffers(writes)

	err := m.composer.Render()
	m.r.EndFrame()
	m.r.Present()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Draw issues the draw calls of the scene pass: opaque drawables first, then transparent ones in
// the order they were attached. It runs inside Render with the lock held.
func (m *manager) Draw(r renderer.Renderer) error {
	for _, d := range m.drawList {
		key := d.Material().PipelineKey()
		if err := r.DrawCall(key, d.Provider(), []bind_group_provider.BindGroupProvider{m.frame, d.Provider()}); err != nil {
			return fmt.Errorf("draw %s: %w", d.Name(), err)
		}
	}
	return nil
}

// visible returns the uploaded, visible drawables inside the view frustum with every opaque one
// ahead of the transparent ones.
func (m *manager) visible() []mesh.Drawable {
	vp := m.cam.ViewProjectionMatrix()
	frustum := common.ExtractFrustumFromMatrix(vp[:])

	var opaque, transparent []mesh.Drawable
	m.root.TraverseVisible(func(o mesh.Object) {
		d, ok := o.(mesh.Drawable)
		if !ok || !d.Uploaded() || d.Disposed() {
			return
		}
		if center, radius := mesh.BoundingSphere(d); !frustum.ContainsSphere(center, radius) {
			return
		}
		if d.Material().Transparent() {
			transparent = append(transparent, d)
		} else {
			opaque = append(opaque, d)
		}
	})
	return append(opaque, transparent...)
}

func (m *manager) Resize(width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("scene size %dx%d must be positive", width, height)
	}
	if width == m.width && height == m.height {
		return nil
	}
	m.width, m.height = width, height
	m.cam.SetAspect(float32(width) / float32(height))

	bw, bh := m.bufferSize(width, height)
	m.r.Resize(bw, bh)
	if err := m.composer.SetSize(bw, bh); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	common.Logger().Debug("scene resized", "width", width, "height", height, "buffer", [2]int{bw, bh})
	return nil
}

func (m *manager) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *manager) PixelRatio() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pixelRatio
}

func (m *manager) UpdatePointerLight(ndcX, ndcY float32) [3]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ndcX = common.Clamp(ndcX, -1, 1)
	ndcY = common.Clamp(ndcY, -1, 1)
	target, ok := m.pointerTarget(ndcX, ndcY)
	if !ok {
		return m.pointer.Position()
	}
	return m.pointer.Follow(target, m.smoothing)
}

// pointerTarget intersects the ray from the camera through the pointer with the plane z = depth of
// the pointer light. It fails when the ray runs parallel to the plane or points away from it.
func (m *manager) pointerTarget(ndcX, ndcY float32) ([3]float32, bool) {
	origin := m.cam.Position()
	through := m.cam.Unproject([3]float32{ndcX, ndcY, 0.5})
	dir := common.Normalize3(common.Sub3(through, origin))
	depth := m.pointer.Position()[2]

	if math.Abs(float64(dir[2])) < 1e-6 {
		return [3]float32{}, false
	}
	t := (depth - origin[2]) / dir[2]
	if t < 0 {
		return [3]float32{}, false
	}
	return common.Add3(origin, common.Scale3(dir, t)), true
}

func (m *manager) PointerLight() light.Light {
	return m.pointer
}

func (m *manager) Camera() camera.Camera {
	return m.cam
}

func (m *manager) Composer() postprocess.Composer {
	return m.composer
}

func (m *manager) Elapsed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed()
}

func (m *manager) elapsed() float64 {
	return m.now().Sub(m.start).Seconds()
}

func (m *manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.released = true
	m.drawList = nil
	m.composer.Release()
	m.frame.Release()
	if m.ownsRenderer {
		m.r.Release()
	}
	common.Logger().Debug("scene released", "pipelines", len(m.pipelines))
}

// bufferSize converts a logical size into drawing buffer pixels.
func (m *manager) bufferSize(width, height int) (int, int) {
	bw := int(math.Round(float64(width) * float64(m.pixelRatio)))
	bh := int(math.Round(float64(height) * float64(m.pixelRatio)))
	return max(bw, 1), max(bh, 1)
}

func clampPixelRatio(pr float32) float32 {
	if pr < 1 || math.IsNaN(float64(pr)) {
		return 1
	}
	return min(pr, maxPixelRatio)
}
