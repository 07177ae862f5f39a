package window

import (
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/media"
)

// ErrReleasePending is returned when a buffer is attached under explicit
// synchronization while a release token for it is still outstanding. The
// protocol allows exactly one token per buffer at a time.
var ErrReleasePending = errors.New("window: release token already outstanding for buffer")

// Buffer ties a compositor-presentable buffer to the video frame backing
// it. While the compositor holds the buffer the frame's memory must stay
// alive, so the handle keeps a frame reference from attach until the
// compositor's release arrives (immediately, fenced, or via the classic
// per-buffer release event).
type Buffer struct {
	log   *slog.Logger
	proxy compositor.Buffer
	frame *media.Frame

	mu      sync.Mutex
	held    bool               // compositor currently references the buffer
	release compositor.Release // outstanding explicit-sync token, if any
}

// NewBuffer wraps proxy and frame in a handle. The handle shares the
// caller's frame references; it takes its own on attach.
func NewBuffer(proxy compositor.Buffer, frame *media.Frame, log *slog.Logger) *Buffer {
	if log == nil {
		log = slog.Default()
	}
	return &Buffer{
		log:   log.With("component", "wl-buffer"),
		proxy: proxy,
		frame: frame,
	}
}

// Frame returns the backing frame.
func (b *Buffer) Frame() *media.Frame {
	return b.frame
}

// InUse reports whether the compositor currently holds the buffer.
func (b *Buffer) InUse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.held
}

// attach presents the buffer on surface and marks it compositor-held,
// taking a frame reference that is dropped when the release arrives. When
// sync is nil the classic release event on the proxy is watched instead of
// an explicit-sync token. Attaching an already-held buffer re-attaches
// without taking a second hold.
func (b *Buffer) attach(surface compositor.Surface, sync compositor.SurfaceSync) {
	b.mu.Lock()
	alreadyHeld := b.held
	b.held = true
	b.mu.Unlock()

	if !alreadyHeld {
		b.frame.Ref()
		if sync != nil {
			rel, err := sync.NewRelease()
			if err != nil {
				b.log.Warn("release token request failed, falling back to implicit release", "error", err)
				b.watchImplicitRelease()
			} else if err := b.trackRelease(rel); err != nil {
				// Cannot happen right after taking the hold; guard anyway.
				b.log.Error("release token rejected", "error", err)
				rel.Destroy()
				b.watchImplicitRelease()
			}
		} else {
			b.watchImplicitRelease()
		}
	}

	surface.Attach(b.proxy)
}

// trackRelease registers an explicit-sync release token for the buffer.
// Exactly one token may be outstanding; a second registration is a
// protocol violation and is rejected.
func (b *Buffer) trackRelease(rel compositor.Release) error {
	b.mu.Lock()
	if b.release != nil {
		b.mu.Unlock()
		return ErrReleasePending
	}
	b.release = rel
	b.mu.Unlock()

	// The wait runs off the producer thread: the goroutine stands in for
	// the compositor callback thread the event was delivered on. The hold
	// is kept through the fence wait; the GPU may still be reading.
	go func() {
		ev, ok := <-rel.Done()
		if !ok {
			// Backend torn down before the release arrived. Fail open
			// so the frame is not leaked forever.
			b.log.Warn("release token abandoned, releasing frame")
			b.finishRelease(rel)
			return
		}

		if ev.Fence >= 0 {
			if err := waitFence(ev.Fence); err != nil {
				b.log.Error("fence wait failed, releasing anyway", "fence", ev.Fence, "error", err)
			} else {
				b.log.Debug("fenced release", "fence", ev.Fence)
			}
			unix.Close(ev.Fence)
		} else {
			b.log.Debug("immediate release")
		}
		b.finishRelease(rel)
	}()
	return nil
}

// finishRelease returns the compositor hold once, racing safely with
// ForceRelease.
func (b *Buffer) finishRelease(rel compositor.Release) {
	b.mu.Lock()
	wasHeld := b.held
	b.held = false
	if b.release == rel {
		b.release = nil
	}
	b.mu.Unlock()
	if !wasHeld {
		// ForceRelease already returned the hold.
		return
	}
	rel.Destroy()
	b.frame.Unref()
}

// watchImplicitRelease waits for the classic per-buffer release event and
// drops the compositor hold when it arrives. A channel closed without an
// event means the backend is gone; fail open so the frame is not leaked.
func (b *Buffer) watchImplicitRelease() {
	go func() {
		_, ok := <-b.proxy.Released()
		b.mu.Lock()
		wasHeld := b.held
		b.held = false
		b.mu.Unlock()
		if !wasHeld {
			// ForceRelease already returned the hold.
			return
		}
		if !ok {
			b.log.Warn("backend gone before buffer release, releasing frame")
		} else {
			b.log.Debug("buffer released")
		}
		b.frame.Unref()
	}()
}

// ForceRelease drops the compositor hold without waiting for the release
// event, used during teardown when the compositor can no longer be trusted
// to deliver one. The frame reference taken at attach is returned.
func (b *Buffer) ForceRelease() {
	b.mu.Lock()
	wasHeld := b.held
	rel := b.release
	b.held = false
	b.release = nil
	b.mu.Unlock()

	if rel != nil {
		rel.Destroy()
	}
	if wasHeld {
		b.frame.Unref()
	}
}

// Destroy destroys the underlying compositor buffer proxy. The handle must
// not be attached afterwards.
func (b *Buffer) Destroy() {
	b.proxy.Destroy()
}
