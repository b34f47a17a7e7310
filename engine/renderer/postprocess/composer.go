package postprocess

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// composer is the implementation of the Composer interface.
type composer struct {
	mu *sync.Mutex

	r             renderer.Renderer
	width, height int
	write, read   renderer.RenderTarget
	passes        []Pass

	renderToScreen bool
	released       bool
}

// Composer runs a chain of passes over a pair of ping-pong HDR targets. Passes run in the
// order they were added; after each pass that needs a swap the targets trade places, so the
// next pass reads what the previous one wrote. The last enabled pass renders to the surface.
//
// The composer only encodes passes. The caller brackets Render with BeginFrame, EndFrame and
// Present.
type Composer interface {
	// AddPass appends a pass to the chain and sizes it to the composer.
	//
	// Parameters:
	//   - p: the pass to append
	AddPass(p Pass)

	// InsertPass inserts a pass at index, clamped to the chain length, and sizes it.
	//
	// Parameters:
	//   - p: the pass to insert
	//   - index: the position in the chain
	InsertPass(p Pass, index int)

	// RemovePass removes a pass from the chain without releasing it.
	//
	// Parameters:
	//   - p: the pass to remove
	RemovePass(p Pass)

	// Passes returns a copy of the chain in run order.
	Passes() []Pass

	// Render runs every enabled pass for the current frame.
	//
	// Returns:
	//   - error: the first pass error, wrapped with the failing pass position
	Render() error

	// SetSize recreates the ping-pong targets and resizes every pass.
	//
	// Parameters:
	//   - width: the drawing buffer width in pixels
	//   - height: the drawing buffer height in pixels
	//
	// Returns:
	//   - error: an error if a target could not be created
	SetSize(width, height int) error

	// Size returns the drawing buffer size the composer was last sized to.
	Size() (width, height int)

	// Release frees the ping-pong targets and every pass. Calling Release more than once is a no-op.
	Release()
}

var _ Composer = &composer{}

// NewComposer creates a composer with two targets of the given size.
//
// Parameters:
//   - r: the renderer used to create targets and encode passes
//   - width: the drawing buffer width in pixels
//   - height: the drawing buffer height in pixels
//   - options: variadic list of ComposerBuilderOption functions
//
// Returns:
//   - Composer: the composer with an empty chain
//   - error: an error if the targets could not be created
func NewComposer(r renderer.Renderer, width, height int, options ...ComposerBuilderOption) (Composer, error) {
	c := &composer{
		mu:             &sync.Mutex{},
		r:              r,
		renderToScreen: true,
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.SetSize(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *composer) AddPass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes = append(c.passes, p)
	p.SetSize(c.width, c.height)
}

func (c *composer) InsertPass(p Pass, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index = max(0, min(index, len(c.passes)))
	c.passes = slices.Insert(c.passes, index, p)
	p.SetSize(c.width, c.height)
}

func (c *composer) RemovePass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.passes, p); i >= 0 {
		c.passes = slices.Delete(c.passes, i, i+1)
	}
}

func (c *composer) Passes() []Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.passes)
}

func (c *composer) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return fmt.Errorf("composer: render after release")
	}

	last := -1
	for i, p := range c.passes {
		if p.Enabled() {
			last = i
		}
	}

	write, read := c.write, c.read
	for i, p := range c.passes {
		if !p.Enabled() {
			continue
		}
		p.SetRenderToScreen(c.renderToScreen && i == last)
		if err := p.Render(c.r, write, read); err != nil {
			return fmt.Errorf("composer: pass %d: %w", i, err)
		}
		if p.NeedsSwap() {
			write, read = read, write
		}
	}
	// the pairing carries over to the next frame
	c.write, c.read = write, read
	return nil
}

func (c *composer) SetSize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return fmt.Errorf("composer: resize after release")
	}

	width, height = max(width, 1), max(height, 1)
	write, err := c.r.CreateRenderTarget("composer target 1", width, height)
	if err != nil {
		return fmt.Errorf("composer: %w", err)
	}
	read, err := c.r.CreateRenderTarget("composer target 2", width, height)
	if err != nil {
		write.Release()
		return fmt.Errorf("composer: %w", err)
	}
	c.releaseTargets()
	c.write, c.read = write, read
	c.width, c.height = width, height

	for _, p := range c.passes {
		p.SetSize(width, height)
	}
	return nil
}

func (c *composer) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *composer) releaseTargets() {
	if c.write != nil {
		c.write.Release()
	}
	if c.read != nil {
		c.read.Release()
	}
	c.write, c.read = nil, nil
}

func (c *composer) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	for _, p := range c.passes {
		p.Release()
	}
	c.passes = nil
	c.releaseTargets()
}
