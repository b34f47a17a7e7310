// Package engine hosts the badge viewer: it owns the window on the main thread and drives the
// router goroutine that renders the badges.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/window"
	"github.com/Carmen-Shannon/oxy-badges/engine/worker"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/schollz/progressbar/v3"
)

// spinnerInterval is how often the loading spinner advances.
const spinnerInterval = 100 * time.Millisecond

// badgeKeys maps the number keys to the badges in display order.
var badgeKeys = map[uint32]badge.Variant{
	common.Key1: badge.VariantVotes,
	common.Key2: badge.VariantPosters,
	common.Key3: badge.VariantLikes,
	common.Key4: badge.VariantCommentators,
}

// host implements the Host interface.
type host struct {
	window window.Window
	router worker.Router

	routerOptions []worker.RouterBuilderOption
	badgeName     string
	native        string
	maxPixelRatio float32
	spinnerOut    io.Writer

	ready    atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	runOnce  sync.Once
	wg       sync.WaitGroup
}

// Host connects a window to a router. Input from the window becomes router messages: the cursor
// drives the pointer light once the router is ready, resizes are always forwarded, and the number
// keys 1 to 4 switch badges.
type Host interface {
	// Window returns the window the host drives.
	Window() window.Window

	// Router returns the router the host feeds.
	Router() worker.Router

	// Ready reports whether the router has signalled ready.
	Ready() bool

	// Select switches to the badge v and logs its title and description.
	//
	// Parameters:
	//   - v: the badge to show
	//
	// Returns:
	//   - error: worker.ErrStopped if the router has stopped
	Select(v badge.Variant) error

	// Run starts the router, hands it the window surface and blocks in the window message loop
	// until the window closes or Quit is called. The router is stopped and released before Run
	// returns.
	//
	// Returns:
	//   - error: an error if Run was called twice or the router rejected the surface
	Run() error

	// Quit closes the window and stops the router. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Host = &host{}

// NewHost creates a host for the window. The window's callbacks are taken over by the host.
//
// Parameters:
//   - w: the window, created on the main goroutine
//   - options: variadic list of HostBuilderOption functions
//
// Returns:
//   - Host: the host
//   - error: an error if w is nil
func NewHost(w window.Window, options ...HostBuilderOption) (Host, error) {
	if w == nil {
		return nil, errors.New("host needs a window")
	}
	h := &host{
		window:        w,
		badgeName:     badge.VariantVotes.String(),
		maxPixelRatio: 2,
		spinnerOut:    os.Stderr,
		quit:          make(chan struct{}),
	}
	for _, opt := range options {
		opt(h)
	}
	if h.router == nil {
		h.router = worker.NewRouter(h.routerOptions...)
	}

	w.SetCursorCallback(h.onCursor)
	w.SetResizeCallback(h.onResize)
	w.SetKeyDownCallback(h.onKey)
	return h, nil
}

func (h *host) Window() window.Window {
	return h.window
}

func (h *host) Router() worker.Router {
	return h.router
}

func (h *host) Ready() bool {
	return h.ready.Load()
}

func (h *host) Select(v badge.Variant) error {
	if d, ok := badge.Lookup(v); ok {
		common.Logger().Info("badge selected", "badge", v, "title", d.Title, "description", d.Description)
	}
	return h.router.Send(worker.SwitchBadge{BadgeName: v.String()})
}

func (h *host) Run() error {
	started := false
	h.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("host: Run called twice")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.wg.Wait()
	}()

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		if err := h.router.Run(ctx); err != nil {
			common.Logger().Error("router stopped with error", "err", err)
		}
	}()
	go func() {
		defer h.wg.Done()
		h.watch(ctx)
	}()

	pr := h.pixelRatio()
	msg := worker.Init{
		Surface:    snapshotSurface(h.window, pr),
		BadgeName:  h.badgeName,
		Width:      h.window.Width(),
		Height:     h.window.Height(),
		PixelRatio: pr,
		Native:     h.native,
	}
	if err := h.router.Send(msg); err != nil {
		h.Quit()
		return fmt.Errorf("host: init: %w", err)
	}

	h.window.ProcessMessages()
	h.Quit()
	return nil
}

func (h *host) Quit() {
	h.quitOnce.Do(func() {
		close(h.quit)
		h.window.RequestClose()
	})
}

// watch shows the spinner until the router is ready and logs router failures. The spinner keeps
// turning if ready never arrives.
func (h *host) watch(ctx context.Context) {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(h.spinnerOut),
		progressbar.OptionSetDescription("loading badge"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = spinner.Exit()
			return
		case <-h.quit:
			_ = spinner.Exit()
			return
		case <-ticker.C:
			if !h.ready.Load() {
				_ = spinner.Add(1)
			}
		case e := <-h.router.Events():
			switch e.Type {
			case worker.EventReady:
				h.ready.Store(true)
				_ = spinner.Finish()
				common.Logger().Info("badge ready", "badge", h.badgeName)
			case worker.EventError:
				common.Logger().Error("router error", "err", e.Err)
			}
		}
	}
}

func (h *host) onCursor(x, y float64) {
	if !h.ready.Load() {
		return
	}
	nx, ny := CursorToNDC(x, y, h.window.Width(), h.window.Height())
	h.send(worker.MouseMove{X: nx, Y: ny})
}

func (h *host) onResize(width, height int) {
	h.send(worker.Resize{Width: width, Height: height})
}

func (h *host) onKey(key uint32) {
	v, ok := VariantForKey(key)
	if !ok {
		return
	}
	if err := h.Select(v); err != nil {
		common.Logger().Debug("badge switch dropped", "badge", v, "err", err)
	}
}

func (h *host) send(msg worker.Message) {
	if err := h.router.Send(msg); err != nil {
		common.Logger().Debug("message dropped", "kind", msg.Kind(), "err", err)
	}
}

// pixelRatio returns the window pixel ratio capped at maxPixelRatio.
func (h *host) pixelRatio() float32 {
	pr := h.window.PixelRatio()
	if pr <= 0 {
		pr = 1
	}
	return min(pr, h.maxPixelRatio)
}

// CursorToNDC converts a cursor position in window pixels, origin top left, to normalized device
// coordinates with y up.
//
// Parameters:
//   - x, y: the cursor position
//   - width, height: the window size
//
// Returns:
//   - float32, float32: the position in [-1, 1] when the cursor is inside the window
func CursorToNDC(x, y float64, width, height int) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	nx := x/float64(width)*2 - 1
	ny := -(y/float64(height))*2 + 1
	return float32(nx), float32(ny)
}

// VariantForKey maps the number keys 1 to 4 to the four badges.
func VariantForKey(key uint32) (badge.Variant, bool) {
	v, ok := badgeKeys[key]
	return v, ok
}

// surface is the window surface as handed to the router: the descriptor is taken on the main
// thread and the router never calls back into the window.
type surface struct {
	descriptor    *wgpu.SurfaceDescriptor
	width, height int
}

func (s *surface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return s.descriptor }
func (s *surface) Width() int                                 { return s.width }
func (s *surface) Height() int                                { return s.height }

// snapshotSurface captures the window's surface descriptor and drawing buffer size.
func snapshotSurface(w window.Window, pixelRatio float32) worker.Surface {
	return &surface{
		descriptor: w.SurfaceDescriptor(),
		width:      int(math.Round(float64(float32(w.Width()) * pixelRatio))),
		height:     int(math.Round(float64(float32(w.Height()) * pixelRatio))),
	}
}
