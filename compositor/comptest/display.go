// Package comptest provides an in-process fake compositor backend for
// tests and demos. It fulfils the compositor interfaces, records every
// request, and lets the test drive the asynchronous side: completing frame
// callbacks, sending configure and close events, and signalling buffer
// releases. All events are delivered from a single dispatch goroutine, the
// same contract a real protocol binding provides.
package comptest

import (
	"sync"

	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/media"
)

// Option configures the fake display's advertised capabilities.
type Option func(*Display)

// WithoutViewporter removes the viewport capability.
func WithoutViewporter() Option {
	return func(d *Display) { d.hasViewporter = false }
}

// WithoutShell removes the windowing protocol.
func WithoutShell() Option {
	return func(d *Display) { d.hasShell = false }
}

// WithFullscreenShell advertises the fullscreen-shell fallback.
func WithFullscreenShell() Option {
	return func(d *Display) { d.hasFullscreenShell = true }
}

// WithExplicitSync advertises the explicit-synchronization capability.
func WithExplicitSync() Option {
	return func(d *Display) { d.hasExplicitSync = true }
}

// WithoutSinglePixel removes the single-pixel buffer factory.
func WithoutSinglePixel() Option {
	return func(d *Display) { d.hasSinglePixel = false }
}

// WithoutAlpha removes the alpha-compositing capability.
func WithoutAlpha() Option {
	return func(d *Display) { d.hasAlpha = false }
}

// WithOutputSize sets the size reported for the output.
func WithOutputSize(w, h int) Option {
	return func(d *Display) { d.outputW, d.outputH = w, h }
}

// WithPreferredSize sets the initial window size hint.
func WithPreferredSize(w, h int) Option {
	return func(d *Display) { d.prefW, d.prefH = w, h }
}

// WithholdConfigure disables the automatic configure event normally sent
// after a toplevel's first commit, so tests can exercise the configure
// timeout or send sized configures themselves.
func WithholdConfigure() Option {
	return func(d *Display) { d.withholdConfigure = true }
}

// Display is the fake compositor connection.
type Display struct {
	hasViewporter      bool
	hasShell           bool
	hasFullscreenShell bool
	hasExplicitSync    bool
	hasSinglePixel     bool
	hasAlpha           bool
	withholdConfigure  bool
	outputW, outputH   int
	prefW, prefH       int

	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	surfaces     []*Surface
	buffers      []*Buffer
	toplevels    []*Toplevel
	surfaceSyncs []*SurfaceSync
	viewports    []*Viewport
	blenders     []*Blender
	presented    []*Surface // fullscreen-shell presentations
	destroyed    []any
	flushes      int
}

// New creates a fake display and starts its dispatch goroutine. By default
// every capability except explicit sync and the fullscreen shell is
// advertised, and the output size is 1920x1080.
func New(opts ...Option) *Display {
	d := &Display{
		hasViewporter:  true,
		hasShell:       true,
		hasSinglePixel: true,
		hasAlpha:       true,
		outputW:        1920,
		outputH:        1080,
		queue:          make(chan func(), 256),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

func (d *Display) run() {
	for {
		select {
		case fn := <-d.queue:
			fn()
		case <-d.done:
			return
		}
	}
}

// post schedules fn on the dispatch goroutine. It reports false when the
// display is already closed.
func (d *Display) post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- fn:
		return true
	case <-d.done:
		return false
	}
}

// Sync implements compositor.Display.
func (d *Display) Sync(fn func()) {
	d.post(fn)
}

// Roundtrip blocks until everything scheduled before it has run on the
// dispatch goroutine.
func (d *Display) Roundtrip() {
	ch := make(chan struct{})
	if !d.post(func() { close(ch) }) {
		return
	}
	<-ch
}

// Flush implements compositor.Display.
func (d *Display) Flush() error {
	d.mu.Lock()
	d.flushes++
	d.mu.Unlock()
	return nil
}

// Close stops the dispatch goroutine and closes every buffer's release
// channel so implicit-release watchers unblock. Pending queue entries are
// dropped.
func (d *Display) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.mu.Lock()
		buffers := append([]*Buffer(nil), d.buffers...)
		d.mu.Unlock()
		for _, b := range buffers {
			b.closeReleased()
		}
	})
}

// CreateSurface implements compositor.Display.
func (d *Display) CreateSurface() (compositor.Surface, error) {
	s := &Surface{d: d}
	d.mu.Lock()
	d.surfaces = append(d.surfaces, s)
	s.id = len(d.surfaces)
	d.mu.Unlock()
	return s, nil
}

// CreateSubsurface implements compositor.Display.
func (d *Display) CreateSubsurface(child, parent compositor.Surface) (compositor.Subsurface, error) {
	return &Subsurface{d: d, Child: child.(*Surface), Parent: parent.(*Surface)}, nil
}

// CreateRegion implements compositor.Display.
func (d *Display) CreateRegion() (compositor.Region, error) {
	return &Region{d: d}, nil
}

// CreateBuffer implements compositor.Display.
func (d *Display) CreateBuffer(data []byte, info media.VideoInfo) (compositor.Buffer, error) {
	if info.Format == media.PixelFormatUnknown {
		return nil, compositor.ErrUnsupportedFormat
	}
	b := &Buffer{d: d, Data: data, Info: info, released: make(chan struct{}, 4)}
	d.mu.Lock()
	d.buffers = append(d.buffers, b)
	d.mu.Unlock()
	return b, nil
}

// Capabilities implements compositor.Display.
func (d *Display) Capabilities() compositor.Capabilities {
	var caps compositor.Capabilities
	if d.hasViewporter {
		caps.Viewporter = viewporter{d}
	}
	if d.hasExplicitSync {
		caps.ExplicitSync = explicitSync{d}
	}
	if d.hasAlpha {
		caps.AlphaCompositing = alphaCompositing{d}
	}
	if d.hasShell {
		caps.Shell = shell{d}
	}
	if d.hasFullscreenShell {
		caps.FullscreenShell = fullscreenShell{d}
	}
	if d.hasSinglePixel {
		caps.SinglePixel = singlePixelFactory{d}
	}
	return caps
}

// OutputSize implements compositor.Display.
func (d *Display) OutputSize() (int, int) {
	return d.outputW, d.outputH
}

// PreferredSize implements compositor.Display.
func (d *Display) PreferredSize() (int, int) {
	return d.prefW, d.prefH
}

// Surfaces returns every surface created so far, in creation order.
func (d *Display) Surfaces() []*Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Surface(nil), d.surfaces...)
}

// Buffers returns every shared-memory buffer created so far.
func (d *Display) Buffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Buffer(nil), d.buffers...)
}

// Toplevels returns every toplevel created so far.
func (d *Display) Toplevels() []*Toplevel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Toplevel(nil), d.toplevels...)
}

// SurfaceSyncs returns every explicit-synchronization object handed out.
func (d *Display) SurfaceSyncs() []*SurfaceSync {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*SurfaceSync(nil), d.surfaceSyncs...)
}

// Viewports returns every viewport handed out, in creation order.
func (d *Display) Viewports() []*Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Viewport(nil), d.viewports...)
}

// Blenders returns every alpha blender handed out.
func (d *Display) Blenders() []*Blender {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Blender(nil), d.blenders...)
}

// Presented returns the surfaces handed to the fullscreen shell.
func (d *Display) Presented() []*Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Surface(nil), d.presented...)
}

// Flushes returns how many times Flush was called.
func (d *Display) Flushes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flushes
}

// DestroyOrder returns every destroyed object in destruction order. Tests
// compare positions to verify children go before parents.
func (d *Display) DestroyOrder() []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]any(nil), d.destroyed...)
}

func (d *Display) recordDestroy(obj any) {
	d.mu.Lock()
	d.destroyed = append(d.destroyed, obj)
	d.mu.Unlock()
}
