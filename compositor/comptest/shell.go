package comptest

import (
	"sync"

	"github.com/ovlab/waysink/compositor"
)

type shell struct {
	d *Display
}

// CreateToplevel implements compositor.Shell. Unless the display was built
// with WithholdConfigure, a zero-sized configure event is sent after the
// surface's first commit, mirroring the real protocol's handshake.
func (sh shell) CreateToplevel(s compositor.Surface) (compositor.Toplevel, <-chan compositor.ToplevelEvent, error) {
	surface := s.(*Surface)
	tl := &Toplevel{
		d:       sh.d,
		Surface: surface,
		events:  make(chan compositor.ToplevelEvent, 8),
	}
	sh.d.mu.Lock()
	sh.d.toplevels = append(sh.d.toplevels, tl)
	sh.d.mu.Unlock()

	if !sh.d.withholdConfigure {
		surface.mu.Lock()
		surface.onCommit = func() { tl.SendConfigure(0, 0) }
		surface.mu.Unlock()
	}
	return tl, tl.events, nil
}

// Toplevel is a fake window role. Tests drive the compositor side with
// SendConfigure and SendClose.
type Toplevel struct {
	d       *Display
	Surface *Surface

	mu         sync.Mutex
	events     chan compositor.ToplevelEvent
	title      string
	appID      string
	fullscreen bool
	destroyed  bool
}

// SetTitle implements compositor.Toplevel.
func (t *Toplevel) SetTitle(title string) {
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
}

// SetAppID implements compositor.Toplevel.
func (t *Toplevel) SetAppID(id string) {
	t.mu.Lock()
	t.appID = id
	t.mu.Unlock()
}

// SetFullscreen implements compositor.Toplevel.
func (t *Toplevel) SetFullscreen(fullscreen bool) {
	t.mu.Lock()
	t.fullscreen = fullscreen
	t.mu.Unlock()
}

// Destroy implements compositor.Toplevel. The event channel is closed.
func (t *Toplevel) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	close(t.events)
	t.mu.Unlock()
	t.d.recordDestroy(t)
}

// SendConfigure delivers a configure event from the dispatch goroutine.
func (t *Toplevel) SendConfigure(w, h int) {
	t.send(compositor.ToplevelEvent{Kind: compositor.ToplevelConfigure, Width: w, Height: h})
}

// SendClose delivers a close request from the dispatch goroutine.
func (t *Toplevel) SendClose() {
	t.send(compositor.ToplevelEvent{Kind: compositor.ToplevelClose})
}

func (t *Toplevel) send(ev compositor.ToplevelEvent) {
	t.d.post(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.destroyed {
			return
		}
		select {
		case t.events <- ev:
		default:
		}
	})
}

// Title returns the last set title.
func (t *Toplevel) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// AppID returns the last set application id.
func (t *Toplevel) AppID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appID
}

// Fullscreen returns the last requested fullscreen state.
func (t *Toplevel) Fullscreen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fullscreen
}

type fullscreenShell struct {
	d *Display
}

// PresentSurface implements compositor.FullscreenShell.
func (fs fullscreenShell) PresentSurface(s compositor.Surface) error {
	fs.d.mu.Lock()
	fs.d.presented = append(fs.d.presented, s.(*Surface))
	fs.d.mu.Unlock()
	return nil
}
