// Package compositor defines the interface boundary between the
// presentation engine and the windowing-system compositor. The engine never
// talks to a display server directly; it drives these interfaces, and a
// backend (a real protocol binding, or comptest's in-process fake) fulfils
// them.
//
// Backends deliver all asynchronous events — frame callbacks, toplevel
// configure/close, buffer releases, Sync completions — from a single
// dispatch goroutine, the Go analogue of the compositor callback thread.
// The engine relies on that serialization.
package compositor

import (
	"errors"

	"github.com/ovlab/waysink/media"
)

// Sentinel errors surfaced across the boundary.
var (
	// ErrUnsupportedFormat is returned by buffer creation when the pixel
	// format cannot be expressed on the chosen transport.
	ErrUnsupportedFormat = errors.New("compositor: pixel format not supported by transport")
)

// Transform enumerates the buffer orientations the compositor can apply at
// scan-out, matching the wl_output_transform values.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

func (t Transform) String() string {
	switch t {
	case TransformNormal:
		return "normal"
	case Transform90:
		return "90"
	case Transform180:
		return "180"
	case Transform270:
		return "270"
	case TransformFlipped:
		return "flipped"
	case TransformFlipped90:
		return "flipped-90"
	case TransformFlipped180:
		return "flipped-180"
	case TransformFlipped270:
		return "flipped-270"
	default:
		return "unknown"
	}
}

// SwapsDimensions reports whether the transform is a 90°-class rotation,
// i.e. the buffer's stored width/height are swapped on screen.
func (t Transform) SwapsDimensions() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	default:
		return false
	}
}

// Buffer is a compositor-presentable buffer proxy (a wl_buffer analogue).
// Released delivers one value per attach/commit cycle when the compositor
// is done reading the buffer; it is the implicit-release path used when the
// explicit-synchronization capability is absent. The channel is closed
// without a value when the backend is torn down, so watchers can fail open
// instead of waiting forever.
type Buffer interface {
	Released() <-chan struct{}
	Destroy()
}

// Region is an area set used for input and opaque regions.
type Region interface {
	Add(x, y, w, h int)
	Destroy()
}

// Surface is a presentable region managed by the compositor.
type Surface interface {
	// Attach sets the buffer presented at the next Commit. A nil buffer
	// detaches, making the surface invisible.
	Attach(Buffer)
	SetBufferScale(scale int)
	SetBufferTransform(Transform)
	// DamageAll marks the whole buffer as damaged for the next commit.
	DamageAll()
	// SetInputRegion replaces the input-accepting area. An empty region
	// makes all input pass through to surfaces below.
	SetInputRegion(Region)
	SetOpaqueRegion(Region)
	// Frame requests a frame-done notification for the next commit. The
	// callback fires once, on the backend's dispatch goroutine, when the
	// committed content has been shown.
	Frame(done func())
	Commit()
	Destroy()
}

// Subsurface positions a surface relative to a parent surface.
type Subsurface interface {
	SetPosition(x, y int)
	// SetSync makes commits of the child apply atomically with the next
	// parent commit; SetDesync lets them apply independently.
	SetSync()
	SetDesync()
	Destroy()
}

// Viewport crops and scales a surface's content independently of its
// buffer's native size. Source coordinates are buffer-fractional; a value
// of -1 for any source field unsets the source rectangle.
type Viewport interface {
	SetSource(x, y, w, h float64)
	SetDestination(w, h int)
	Destroy()
}

// Viewporter hands out per-surface viewports (wp_viewporter analogue).
type Viewporter interface {
	GetViewport(Surface) (Viewport, error)
}

// Blender controls per-surface alpha compositing.
type Blender interface {
	// SetAlpha sets the surface-wide alpha in [0, 1], applied on commit.
	SetAlpha(alpha float64)
	Destroy()
}

// AlphaCompositing hands out per-surface blenders; an optional capability.
type AlphaCompositing interface {
	GetBlending(Surface) (Blender, error)
}

// ReleaseEvent reports that the compositor no longer needs a buffer that
// was attached under explicit synchronization. Fence is a file descriptor
// that becomes readable when the GPU has finished reading the buffer, or -1
// for an immediate release.
type ReleaseEvent struct {
	Fence int
}

// Release is a one-shot explicit-synchronization release token. Done
// delivers exactly one ReleaseEvent and is closed afterwards; the channel
// is closed without an event if the backend is torn down first.
type Release interface {
	Done() <-chan ReleaseEvent
	Destroy()
}

// SurfaceSync is the per-surface explicit-synchronization object. One
// Release may be requested per commit that attaches a new buffer.
type SurfaceSync interface {
	NewRelease() (Release, error)
	Destroy()
}

// ExplicitSync hands out per-surface synchronization objects; an optional
// capability.
type ExplicitSync interface {
	GetSynchronization(Surface) (SurfaceSync, error)
}

// ToplevelEventKind discriminates ToplevelEvent.
type ToplevelEventKind int

const (
	// ToplevelConfigure carries a size negotiation from the compositor.
	// Width/Height of zero mean the client picks its own size. Backends
	// acknowledge the configure before delivering the event.
	ToplevelConfigure ToplevelEventKind = iota
	// ToplevelClose is the compositor asking the window to close.
	ToplevelClose
)

// ToplevelEvent is delivered on the channel returned by CreateToplevel.
type ToplevelEvent struct {
	Kind   ToplevelEventKind
	Width  int
	Height int
}

// Toplevel is a surface promoted to a top-level window role.
type Toplevel interface {
	SetTitle(string)
	SetAppID(string)
	SetFullscreen(bool)
	// Destroy releases the role. The backend closes the event channel.
	Destroy()
}

// Shell is the toplevel-window negotiation protocol (xdg_wm_base
// analogue); an optional capability. Events on the returned channel are
// delivered from the dispatch goroutine and the channel is closed when the
// toplevel is destroyed.
type Shell interface {
	CreateToplevel(Surface) (Toplevel, <-chan ToplevelEvent, error)
}

// FullscreenShell is the single-surface fallback used when no windowing
// protocol is available: the surface is presented fullscreen with no
// negotiation.
type FullscreenShell interface {
	PresentSurface(Surface) error
}

// SinglePixelFactory creates 1x1 buffers of a solid color, used for the
// letterbox filler when a viewport can stretch them.
type SinglePixelFactory interface {
	// CreateRGBA takes 32-bit premultiplied channel values.
	CreateRGBA(r, g, b, a uint32) (Buffer, error)
}

// Capabilities is the optional-protocol set discovered at registry bind
// time. Nil fields mean the compositor lacks the capability; the engine
// reads this once at window creation and never re-checks.
type Capabilities struct {
	Viewporter       Viewporter
	ExplicitSync     ExplicitSync
	AlphaCompositing AlphaCompositing
	Shell            Shell
	FullscreenShell  FullscreenShell
	SinglePixel      SinglePixelFactory
}

// Display is the engine's handle on an established compositor connection.
// Connection setup, registry binding, and format negotiation happen before
// a Display is handed to the engine and are out of its scope.
type Display interface {
	CreateSurface() (Surface, error)
	CreateSubsurface(child, parent Surface) (Subsurface, error)
	CreateRegion() (Region, error)
	// CreateBuffer imports pixel data as a presentable buffer on the
	// shared-memory transport. Returns ErrUnsupportedFormat when the
	// format cannot be negotiated.
	CreateBuffer(data []byte, info media.VideoInfo) (Buffer, error)
	Capabilities() Capabilities
	// Sync schedules fn on the dispatch goroutine after all previously
	// issued requests have been processed (wl_display_sync analogue).
	Sync(fn func())
	// Flush pushes buffered requests to the compositor.
	Flush() error
	// OutputSize is the size of the output the surface will map on, in
	// compositor coordinates; zero when unknown.
	OutputSize() (w, h int)
	// PreferredSize is an optional initial window size hint; zero when
	// the compositor expressed none.
	PreferredSize() (w, h int)
}
