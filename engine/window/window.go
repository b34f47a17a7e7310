package window

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling for the badge host.
// Sizes and cursor positions are in logical (screen) pixels; PixelRatio converts them to framebuffer
// pixels.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving the new logical width and height
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetCursorCallback sets the callback for cursor movement inside the window.
	//
	// Parameters:
	//   - callback: function receiving the cursor position, origin top left
	SetCursorCallback(callback func(x, y float64))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PixelRatio returns framebuffer pixels per logical pixel.
	PixelRatio() float32

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// RequestClose asks the message loop to stop. Safe to call from any goroutine.
	RequestClose()

	// Close closes the window and releases platform resources. Must be called on the thread that
	// created the window, after ProcessMessages has returned.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the window message loop on the calling thread.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current logical client area width.
	Width() int

	// Height returns the current logical client area height.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight cap interactive resizing. Zero leaves the axis unbounded.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound interactive resizing from below.
	minWidth  int
	minHeight int

	// width and height are the logical client area size.
	width  int
	height int

	// pixelRatio is the framebuffer width divided by the logical width.
	pixelRatio float32

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onCursor  func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. It must be called from the main goroutine, which then owns
// the window: ProcessMessages and Close run there too.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		mu:         &sync.Mutex{},
		title:      "oxy badges",
		minWidth:   320,
		minHeight:  240,
		width:      1024,
		height:     768,
		pixelRatio: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetCursorCallback(callback func(x, y float64)) {
	w.onCursor = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PixelRatio() float32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pixelRatio
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// setSize records a new logical size and framebuffer size.
func (w *engineWindow) setSize(width, height, fbWidth int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = width
	w.height = height
	w.pixelRatio = ratio(fbWidth, width)
}

// ratio returns framebuffer pixels per logical pixel, 1 for a degenerate window.
func ratio(fbWidth, width int) float32 {
	if width <= 0 || fbWidth <= 0 {
		return 1
	}
	return float32(fbWidth) / float32(width)
}
