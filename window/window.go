// Package window implements the on-screen presentation engine: it owns the
// area/video surface pair, hands decoded frames to the compositor, and
// coordinates their lifetime with the compositor's frame-pacing and
// buffer-release protocol.
//
// Two execution contexts drive a Window: the producer (render) thread
// calling Submit and the geometry setters, and the backend's dispatch
// goroutine delivering frame acknowledgements, toplevel events, and buffer
// releases. At most one buffer is in flight awaiting a frame
// acknowledgement; one more may be staged, and a newer staged submission
// replaces (drops) the older one, bounding producer memory under a slow
// compositor.
package window

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/geometry"
	"github.com/ovlab/waysink/internal/panelcfg"
	"github.com/ovlab/waysink/media"
)

// ErrNoShell is returned by NewToplevel when the compositor offers neither
// a windowing protocol nor a fullscreen-shell fallback.
var ErrNoShell = errors.New("window: compositor offers no windowing protocol and no fullscreen shell")

// configure events smaller than twice this margin are resize-handle noise
// and are ignored.
const resizeMargin = 20

// defaultConfigureTimeout bounds the wait for the compositor's initial
// configure acknowledgement. On expiry the window proceeds unconfigured.
const defaultConfigureTimeout = 100 * time.Millisecond

// Event is a consumer-visible window notification.
type Event int

const (
	// EventMapped fires when the first frame becomes visible.
	EventMapped Event = iota
	// EventClosed fires when the compositor asks the window to close.
	EventClosed
)

func (e Event) String() string {
	switch e {
	case EventMapped:
		return "mapped"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Option configures a Window at creation.
type Option func(*Window)

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(w *Window) { w.log = log }
}

// WithPanelConfigPath overrides the panel configuration file location.
func WithPanelConfigPath(path string) Option {
	return func(w *Window) { w.panelPath = path }
}

// WithConfigureTimeout overrides the bounded wait for the compositor's
// initial configure event.
func WithConfigureTimeout(d time.Duration) Option {
	return func(w *Window) { w.configureTimeout = d }
}

// WithAppID sets the toplevel application id; the process name is used
// otherwise.
func WithAppID(id string) Option {
	return func(w *Window) { w.appID = id }
}

// Window is the presentation state machine for one video output: an area
// (background) surface with a video subsurface inside it, double-buffered
// frame slots, and the geometry needed to place the picture.
type Window struct {
	log     *slog.Logger
	display compositor.Display

	panelPath        string
	configureTimeout time.Duration
	appID            string

	areaSurface     compositor.Surface
	areaSubsurface  compositor.Subsurface // only when embedded in a parent surface
	areaViewport    compositor.Viewport
	videoSurface    compositor.Surface
	videoSubsurface compositor.Subsurface
	videoViewport   compositor.Viewport
	blender         compositor.Blender
	surfaceSync     compositor.SurfaceSync
	toplevel        compositor.Toplevel
	singlePixel     compositor.SinglePixelFactory

	configured   atomic.Bool
	configOnce   sync.Once
	configuredCh chan struct{}
	pumpDone     chan struct{}

	// mu guards the frame slots and the flags below; redrawCond waits on
	// it. This is the producer-side back-pressure lock.
	mu            sync.Mutex
	redrawCond    *sync.Cond
	next          *Buffer
	staged        *Buffer
	nextInfo      *media.VideoInfo
	redrawPending bool
	clearWindow   bool
	closed        bool

	// commitMu serializes the attach → geometry → commit sequence so a
	// late geometry change cannot tear a frame. It also guards the
	// geometry fields below.
	commitMu    sync.Mutex
	renderRect  media.Rect
	videoRect   media.Rect
	videoHeight int
	scaledWidth int
	transform   compositor.Transform
	crop        media.Rect // crop.W < 0 means no crop
	scale       int
	areaMapped  bool

	fullscreenW int
	fullscreenH int

	// renderMu serializes consumer-facing geometry operations against the
	// toplevel event pump.
	renderMu sync.Mutex

	closeOnce sync.Once
	events    chan Event
	stats     stats
}

// NewToplevel creates a top-level presentation window. The windowing
// protocol is preferred; a fullscreen shell is the fallback; with neither,
// creation fails with ErrNoShell. info sizes the initial window when the
// compositor expresses no preference.
func NewToplevel(display compositor.Display, info media.VideoInfo, fullscreen bool, opts ...Option) (*Window, error) {
	w, err := newWindow(display, opts)
	if err != nil {
		return nil, err
	}

	caps := display.Capabilities()
	switch {
	case caps.Shell != nil:
		tl, events, err := caps.Shell.CreateToplevel(w.areaSurface)
		if err != nil {
			w.destroySurfaces()
			return nil, err
		}
		w.toplevel = tl
		tl.SetAppID(w.appID)
		tl.SetTitle(w.appID)
		go w.pumpToplevel(events)

		if fullscreen {
			tl.SetFullscreen(true)
		}

		// Commit the bare surface to start the configure handshake, then
		// wait (bounded) for the acknowledgement.
		w.configured.Store(false)
		w.areaSurface.Commit()
		if err := display.Flush(); err != nil {
			w.log.Warn("flush failed", "error", err)
		}
		select {
		case <-w.configuredCh:
		case <-time.After(w.configureTimeout):
			w.log.Warn("compositor did not send the initial configure event, proceeding unconfigured")
		}

	case caps.FullscreenShell != nil:
		if err := caps.FullscreenShell.PresentSurface(w.areaSurface); err != nil {
			w.destroySurfaces()
			return nil, err
		}
		w.markConfigured()

	default:
		w.destroySurfaces()
		return nil, ErrNoShell
	}

	// In windowed-protocol fullscreen mode the render rectangle arrives
	// via the configure event; everywhere else pick an initial size.
	if !(caps.Shell != nil && fullscreen) {
		var width, height int
		pw, ph := display.PreferredSize()
		switch {
		case pw > 0 && ph > 0:
			width, height = pw, ph
		case w.fullscreenW <= 0:
			width, height = info.ScaledWidth(), info.Height
		default:
			width, height = w.fullscreenW, w.fullscreenH
		}
		w.SetRenderRectangle(0, 0, width, height)
	}

	return w, nil
}

// NewEmbedded creates a presentation window embedded as a subsurface of
// parent. The embedding application owns the parent surface and the
// render rectangle.
func NewEmbedded(display compositor.Display, parent compositor.Surface, opts ...Option) (*Window, error) {
	w, err := newWindow(display, opts)
	if err != nil {
		return nil, err
	}

	// Never take input when embedded: events belong to the host.
	if region, err := display.CreateRegion(); err == nil {
		w.areaSurface.SetInputRegion(region)
		region.Destroy()
	}

	sub, err := display.CreateSubsurface(w.areaSurface, parent)
	if err != nil {
		w.destroySurfaces()
		return nil, err
	}
	w.areaSubsurface = sub
	sub.SetDesync()
	parent.Commit()
	w.markConfigured()

	return w, nil
}

func newWindow(display compositor.Display, opts []Option) (*Window, error) {
	w := &Window{
		display:          display,
		panelPath:        panelcfg.DefaultPath,
		configureTimeout: defaultConfigureTimeout,
		configuredCh:     make(chan struct{}),
		pumpDone:         make(chan struct{}),
		events:           make(chan Event, 4),
		crop:             media.Rect{W: -1},
		scale:            1,
		fullscreenW:      -1,
		fullscreenH:      -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	w.log = w.log.With("component", "window")
	if w.appID == "" {
		if name := filepath.Base(os.Args[0]); name != "" && name != "." {
			w.appID = name
		} else {
			w.appID = "io.ovlab.waysink"
		}
	}
	w.redrawCond = sync.NewCond(&w.mu)
	w.configured.Store(true)

	area, err := display.CreateSurface()
	if err != nil {
		return nil, err
	}
	video, err := display.CreateSurface()
	if err != nil {
		area.Destroy()
		return nil, err
	}
	w.areaSurface = area
	w.videoSurface = video

	sub, err := display.CreateSubsurface(video, area)
	if err != nil {
		area.Destroy()
		video.Destroy()
		return nil, err
	}
	w.videoSubsurface = sub
	sub.SetDesync()

	// Resolve optional capabilities once; the engine never re-checks.
	caps := display.Capabilities()
	if caps.Viewporter != nil {
		if vp, err := caps.Viewporter.GetViewport(area); err == nil {
			w.areaViewport = vp
		}
		if vp, err := caps.Viewporter.GetViewport(video); err == nil {
			w.videoViewport = vp
		}
	}
	if caps.AlphaCompositing != nil {
		if bl, err := caps.AlphaCompositing.GetBlending(area); err == nil {
			w.blender = bl
		}
	}
	if caps.ExplicitSync != nil {
		if ss, err := caps.ExplicitSync.GetSynchronization(video); err == nil {
			w.surfaceSync = ss
		}
	}
	w.singlePixel = caps.SinglePixel

	// The picture never accepts input; pointer and touch fall through to
	// the area surface or the embedding parent.
	if region, err := display.CreateRegion(); err == nil {
		video.SetInputRegion(region)
		region.Destroy()
	}

	w.initSurfaceState()

	return w, nil
}

// initSurfaceState consults the panel configuration for an initial display
// scale and fullscreen size. Failures degrade to scale 1 and the output
// size with a warning; this is never fatal.
func (w *Window) initSurfaceState() {
	dw, dh := w.display.OutputSize()

	desk, err := panelcfg.Load(w.panelPath)
	if err == nil && dw > 0 && dh > 0 {
		scale := dw / desk.Width
		if scale == 1 || scale == 2 {
			w.scale = scale
			w.fullscreenW = desk.Width
			w.fullscreenH = desk.Height - panelcfg.PanelHeight
			return
		}
		w.log.Warn("panel config implies unsupported scale, falling back",
			"scale", scale, "desktop_w", desk.Width, "output_w", dw)
	} else if err != nil {
		w.log.Warn("panel config unavailable, falling back to scale 1", "error", err)
	}

	w.scale = 1
	w.fullscreenW = dw
	w.fullscreenH = dh - panelcfg.PanelHeight
}

// pumpToplevel is the single consumer of the shell's event channel. It
// runs until the toplevel is destroyed.
func (w *Window) pumpToplevel(events <-chan compositor.ToplevelEvent) {
	defer close(w.pumpDone)
	for ev := range events {
		switch ev.Kind {
		case compositor.ToplevelConfigure:
			w.markConfigured()
			if ev.Width <= 2*resizeMargin || ev.Height <= 2*resizeMargin {
				continue
			}
			w.SetRenderRectangle(0, 0, ev.Width, ev.Height)
		case compositor.ToplevelClose:
			w.log.Debug("compositor requested close")
			w.emit(EventClosed)
		}
	}
}

func (w *Window) markConfigured() {
	w.configured.Store(true)
	w.configOnce.Do(func() { close(w.configuredCh) })
}

// Submit hands a frame to the engine. A nil buffer clears the window to
// black. When a frame is already in flight the buffer is staged; a newer
// submission replaces a previously staged one, releasing it undisplayed.
// The return value reports whether such a replacement happened, for
// dropped-frame accounting.
//
// info, when non-nil, carries changed intrinsic video dimensions or pixel
// aspect and is applied atomically with this buffer's commit.
//
// Submit may block while a clear-to-black commit is still in flight; it is
// woken by the frame acknowledgement or by Close.
func (w *Window) Submit(buf *Buffer, info *media.VideoInfo) bool {
	if buf != nil {
		// Queue reference, dropped once the buffer has been committed
		// (or dropped from the staged slot).
		buf.Frame().Ref()
		w.stats.submitted.Add(1)
	}

	w.mu.Lock()
	if info != nil {
		infoCopy := *info
		w.nextInfo = &infoCopy
	}

	// Back-pressure: a pending cycle with an empty next slot (a clear in
	// flight) cannot absorb another submission. Spurious-wakeup safe;
	// teardown wakes and aborts.
	for w.redrawPending && w.next == nil && !w.closed {
		w.redrawCond.Wait()
	}
	if w.closed {
		w.mu.Unlock()
		if buf != nil {
			buf.Frame().Unref()
		}
		return false
	}

	dropped := false
	if w.next != nil && w.staged != nil {
		old := w.staged
		w.staged = nil
		w.log.Debug("staged buffer replaced before display")
		old.Frame().Unref()
		w.stats.dropped.Add(1)
		dropped = true
	}

	if w.next == nil {
		w.next = buf
		w.redrawPending = true
		w.display.Sync(w.commitNext)
	} else {
		w.staged = buf
	}
	// A staged clear that was just replaced must not execute later; only
	// this submission decides whether the window clears.
	w.clearWindow = buf == nil
	w.mu.Unlock()

	if err := w.display.Flush(); err != nil {
		w.log.Warn("flush failed", "error", err)
	}
	return dropped
}

// commitNext runs on the dispatch goroutine once the compositor has
// processed all prior requests, and performs the commit for the buffer
// occupying the next slot.
func (w *Window) commitNext() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	next := w.next
	w.mu.Unlock()

	w.commitBuffer(next)
	if next != nil {
		next.Frame().Unref() // queue reference
	}
}

// onFrameDone is the compositor's frame acknowledgement: the staged buffer
// (if any) moves into the next slot and is committed immediately (chained
// redraw), and any producer blocked in Submit is woken.
func (w *Window) onFrameDone() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	next := w.staged
	w.next = next
	w.staged = nil
	w.redrawPending = false
	clearRequested := w.clearWindow
	w.redrawCond.Broadcast()
	w.mu.Unlock()

	if next != nil || clearRequested {
		w.commitBuffer(next)
	}
	if next != nil {
		next.Frame().Unref() // queue reference
	}
}

// commitBuffer performs one attach → geometry → commit sequence on the
// dispatch goroutine. A nil buffer clears both surfaces. commitMu keeps a
// concurrent geometry change from interleaving with the sequence.
func (w *Window) commitBuffer(buf *Buffer) {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	info := w.nextInfo
	w.nextInfo = nil
	w.mu.Unlock()

	if info != nil {
		w.scaledWidth = info.ScaledWidth()
		w.videoHeight = info.Height

		// Position and size must land atomically with the parent commit.
		w.videoSubsurface.SetSync()
		w.resizeVideoSurface(false)
		w.setOpaque(*info)
	}

	if buf != nil {
		w.videoSurface.Frame(w.onFrameDone)
		buf.attach(w.videoSurface, w.surfaceSync)
		w.videoSurface.SetBufferScale(w.scale)
		w.videoSurface.DamageAll()
		w.videoSurface.Commit()
		w.stats.committed.Add(1)

		if !w.areaMapped {
			w.updateBorders()
			w.areaSurface.Commit()
			w.areaMapped = true
			w.emit(EventMapped)
		}
	} else {
		// Clear both the picture and the background. No frame callback
		// is requested for a nil attach, so finish the cycle here.
		w.videoSurface.Attach(nil)
		w.videoSurface.SetBufferScale(w.scale)
		w.videoSurface.Commit()
		w.areaSurface.Attach(nil)
		w.areaSurface.Commit()
		w.areaMapped = false

		w.mu.Lock()
		w.clearWindow = false
		w.redrawPending = false
		w.redrawCond.Broadcast()
		w.mu.Unlock()
	}

	if info != nil {
		// Commit the parent as well so the repositioned subsurface
		// applies, then decouple the video surface again.
		w.areaSurface.Commit()
		w.videoSubsurface.SetDesync()
	}
}

// resizeVideoSurface recomputes the video placement and programs the
// viewport and subsurface position. Callers hold commitMu.
func (w *Window) resizeVideoSurface(commit bool) {
	res, ok := geometry.Compute(geometry.Input{
		Info: media.VideoInfo{
			Width:  w.scaledWidth, // already par-scaled
			Height: w.videoHeight,
		},
		Crop:        w.crop,
		Transform:   w.transform,
		Scale:       w.scale,
		Dst:         media.Rect{W: w.renderRect.W, H: w.renderRect.H},
		HasViewport: w.videoViewport != nil,
	})
	if !ok {
		return
	}

	if w.videoViewport != nil {
		w.videoViewport.SetDestination(res.Dest.W, res.Dest.H)
		if res.HasSource {
			w.videoViewport.SetSource(res.Source.X, res.Source.Y, res.Source.W, res.Source.H)
		}
	}

	w.videoSubsurface.SetPosition(res.Dest.X, res.Dest.Y)
	w.videoSurface.SetBufferTransform(w.transform)

	if commit {
		w.videoSurface.Commit()
	}

	w.videoRect = res.Dest
}

// setOpaque marks the video surface opaque for alpha-less formats so the
// compositor can skip blending beneath it.
func (w *Window) setOpaque(info media.VideoInfo) {
	if info.Format.HasAlpha() {
		return
	}
	region, err := w.display.CreateRegion()
	if err != nil {
		return
	}
	region.Add(0, 0, math.MaxInt32, math.MaxInt32)
	w.videoSurface.SetOpaqueRegion(region)
	region.Destroy()
}

// updateBorders maintains the filler drawn behind the video. With a
// viewport the filler is a 1x1 buffer stretched to the render rectangle;
// without, a cleared buffer of the full size is allocated. Callers hold
// commitMu.
func (w *Window) updateBorders() {
	if w.areaViewport != nil {
		w.areaViewport.SetDestination(w.renderRect.W, w.renderRect.H)
		if w.areaMapped {
			// Already visible; resizing the viewport is enough.
			return
		}
	}

	width, height := 1, 1
	if w.areaViewport == nil {
		width, height = w.renderRect.W, w.renderRect.H
	}

	var proxy compositor.Buffer
	var err error
	var data []byte
	info := media.VideoInfo{Width: width, Height: height, Format: media.PixelFormatBGRx}

	if width == 1 && height == 1 && w.singlePixel != nil {
		proxy, err = w.singlePixel.CreateRGBA(0, 0, 0, math.MaxUint32)
	} else {
		data = make([]byte, width*height*info.Format.BytesPerPixel())
		proxy, err = w.display.CreateBuffer(data, info)
	}
	if err != nil {
		w.log.Warn("filler buffer creation failed", "error", err)
		return
	}

	// The proxy dies with the frame's last reference; the attach hold
	// keeps both alive until the compositor releases the filler.
	frame := media.NewPooledFrame(data, info, func(*media.Frame) {
		proxy.Destroy()
	})
	filler := NewBuffer(proxy, frame, w.log)
	filler.attach(w.areaSurface, nil)
	w.areaSurface.DamageAll()
	frame.Unref()
}

// updateGeometry applies a changed render rectangle, transform, or scale:
// repositions the area subsurface, refreshes the filler, and recommits the
// pair with the video surface temporarily synchronized so the new position
// and size apply atomically.
func (w *Window) updateGeometry() {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()

	if w.areaSubsurface != nil {
		w.areaSubsurface.SetPosition(w.renderRect.X, w.renderRect.Y)
	}
	if w.areaMapped {
		w.updateBorders()
	}

	if !w.configured.Load() {
		return
	}

	resize := w.scaledWidth != 0
	if resize {
		w.videoSubsurface.SetSync()
		w.resizeVideoSurface(true)
	}
	w.areaSurface.Commit()
	if resize {
		w.videoSubsurface.SetDesync()
	}
}

// SetRenderRectangle sets the destination geometry. Identical values are a
// no-op; degenerate rectangles are ignored.
func (w *Window) SetRenderRectangle(x, y, width, height int) {
	if width <= 0 || height <= 0 {
		w.log.Debug("ignoring degenerate render rectangle", "w", width, "h", height)
		return
	}

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.commitMu.Lock()
	r := media.Rect{X: x, Y: y, W: width, H: height}
	if w.renderRect == r {
		w.commitMu.Unlock()
		return
	}
	w.renderRect = r
	w.commitMu.Unlock()

	w.updateGeometry()
}

// SetSourceCrop records a source crop in buffer coordinates, applied at
// the next geometry recomputation alongside a commit. Crops wholly outside
// the source bounds are passed through unvalidated.
func (w *Window) SetSourceCrop(x, y, width, height int) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	w.commitMu.Lock()
	w.crop = media.Rect{X: x, Y: y, W: width, H: height}
	w.commitMu.Unlock()
}

// ClearSourceCrop removes the source crop; the full source is used again.
func (w *Window) ClearSourceCrop() {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	w.commitMu.Lock()
	w.crop = media.Rect{W: -1}
	w.commitMu.Unlock()
}

// SetRotation sets the buffer orientation applied at attach time and
// recomputes the geometry.
func (w *Window) SetRotation(o media.Orientation) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	w.commitMu.Lock()
	w.transform = transformFor(o)
	w.commitMu.Unlock()
	w.updateGeometry()
}

// SetScale sets the integer buffer-scale divisor for high-DPI outputs and
// recomputes the geometry. Values below 1 are ignored.
func (w *Window) SetScale(scale int) {
	if scale < 1 {
		w.log.Debug("ignoring invalid buffer scale", "scale", scale)
		return
	}
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	w.commitMu.Lock()
	w.scale = scale
	w.commitMu.Unlock()
	w.updateGeometry()
}

// SetAlpha sets the window-wide alpha in [0, 1]. Without the
// alpha-compositing capability this is a no-op.
func (w *Window) SetAlpha(alpha float64) {
	if w.blender == nil {
		w.log.Debug("alpha compositing not supported, ignoring")
		return
	}
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	w.blender.SetAlpha(alpha)
}

// EnsureFullscreen toggles fullscreen on the toplevel, if any.
func (w *Window) EnsureFullscreen(fullscreen bool) {
	if w.toplevel == nil {
		return
	}
	w.toplevel.SetFullscreen(fullscreen)
}

// IsToplevel reports whether the window owns a toplevel role (as opposed
// to being embedded or fullscreen-shell presented).
func (w *Window) IsToplevel() bool {
	return w.toplevel != nil
}

// RenderRectangle returns the current destination geometry.
func (w *Window) RenderRectangle() media.Rect {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()
	return w.renderRect
}

// VideoRectangle returns the last computed placement of the picture inside
// the render rectangle.
func (w *Window) VideoRectangle() media.Rect {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()
	return w.videoRect
}

// Scale returns the current buffer-scale divisor.
func (w *Window) Scale() int {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()
	return w.scale
}

// Events delivers mapped/closed notifications. The channel is closed by
// Close; slow consumers may miss events rather than block the engine.
func (w *Window) Events() <-chan Event {
	return w.events
}

// Stats returns a snapshot of the frame accounting counters.
func (w *Window) Stats() Stats {
	return w.stats.snapshot()
}

func (w *Window) emit(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		w.log.Debug("event dropped, consumer not draining", "event", ev)
	}
}

// Close tears the window down: the staged buffer is force-released, all
// producers blocked in Submit are woken and abandon their wait, and the
// surface objects are destroyed child-before-parent. Close is idempotent.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		staged := w.staged
		w.staged = nil
		w.redrawPending = false
		w.redrawCond.Broadcast()
		w.mu.Unlock()

		if staged != nil {
			staged.Frame().Unref() // queue reference, never displayed
		}

		if w.toplevel != nil {
			w.toplevel.Destroy()
			<-w.pumpDone
		}

		w.commitMu.Lock()
		w.destroySurfaces()
		w.commitMu.Unlock()

		close(w.events)
	})
}

// destroySurfaces walks the ownership tree in post-order: every child is
// destroyed before its parent.
func (w *Window) destroySurfaces() {
	if w.videoViewport != nil {
		w.videoViewport.Destroy()
	}
	if w.surfaceSync != nil {
		w.surfaceSync.Destroy()
	}
	if w.blender != nil {
		w.blender.Destroy()
	}
	if w.videoSubsurface != nil {
		w.videoSubsurface.Destroy()
	}
	if w.videoSurface != nil {
		w.videoSurface.Destroy()
	}
	if w.areaSubsurface != nil {
		w.areaSubsurface.Destroy()
	}
	if w.areaViewport != nil {
		w.areaViewport.Destroy()
	}
	if w.areaSurface != nil {
		w.areaSurface.Destroy()
	}
}

// transformFor maps the consumer-facing orientation onto the compositor's
// buffer transform.
func transformFor(o media.Orientation) compositor.Transform {
	switch o {
	case media.Orientation90R:
		return compositor.Transform90
	case media.Orientation180:
		return compositor.Transform180
	case media.Orientation90L:
		return compositor.Transform270
	case media.OrientationHorizontalFlip:
		return compositor.TransformFlipped
	case media.OrientationVerticalFlip:
		return compositor.TransformFlipped180
	case media.OrientationULLR:
		return compositor.TransformFlipped90
	case media.OrientationURLL:
		return compositor.TransformFlipped270
	default:
		return compositor.TransformNormal
	}
}
