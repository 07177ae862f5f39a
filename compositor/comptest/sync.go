package comptest

import (
	"sync"

	"github.com/ovlab/waysink/compositor"
)

type explicitSync struct {
	d *Display
}

func (es explicitSync) GetSynchronization(s compositor.Surface) (compositor.SurfaceSync, error) {
	ss := &SurfaceSync{d: es.d, Surface: s.(*Surface)}
	es.d.mu.Lock()
	es.d.surfaceSyncs = append(es.d.surfaceSyncs, ss)
	es.d.mu.Unlock()
	return ss, nil
}

// SurfaceSync is the fake per-surface explicit-synchronization object. It
// records every issued release token so tests can signal them.
type SurfaceSync struct {
	d       *Display
	Surface *Surface

	mu       sync.Mutex
	releases []*Release
}

// NewRelease implements compositor.SurfaceSync.
func (ss *SurfaceSync) NewRelease() (compositor.Release, error) {
	r := &Release{done: make(chan compositor.ReleaseEvent, 1)}
	ss.mu.Lock()
	ss.releases = append(ss.releases, r)
	ss.mu.Unlock()
	return r, nil
}

// Destroy implements compositor.SurfaceSync.
func (ss *SurfaceSync) Destroy() {
	ss.d.recordDestroy(ss)
}

// Releases returns every issued release token in creation order.
func (ss *SurfaceSync) Releases() []*Release {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]*Release(nil), ss.releases...)
}

// Release is a fake one-shot release token.
type Release struct {
	mu        sync.Mutex
	done      chan compositor.ReleaseEvent
	fired     bool
	destroyed bool
}

// Done implements compositor.Release.
func (r *Release) Done() <-chan compositor.ReleaseEvent {
	return r.done
}

// Destroy implements compositor.Release.
func (r *Release) Destroy() {
	r.mu.Lock()
	r.destroyed = true
	r.mu.Unlock()
}

// SignalImmediate delivers a fence-less release.
func (r *Release) SignalImmediate() {
	r.signal(compositor.ReleaseEvent{Fence: -1})
}

// SignalFenced delivers a release gated on the given fence descriptor. The
// receiver takes ownership of the descriptor.
func (r *Release) SignalFenced(fd int) {
	r.signal(compositor.ReleaseEvent{Fence: fd})
}

// Abandon closes the token without an event, simulating backend teardown.
func (r *Release) Abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fired {
		return
	}
	r.fired = true
	close(r.done)
}

func (r *Release) signal(ev compositor.ReleaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fired {
		return
	}
	r.fired = true
	r.done <- ev
	close(r.done)
}

// Destroyed reports whether the engine destroyed the token.
func (r *Release) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}
