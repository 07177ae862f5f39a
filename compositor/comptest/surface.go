package comptest

import (
	"sync"

	"github.com/ovlab/waysink/compositor"
)

// Surface records every request made against it and lets tests complete
// the frame callbacks the engine requested.
type Surface struct {
	d  *Display
	id int

	mu           sync.Mutex
	attached     compositor.Buffer
	attaches     []compositor.Buffer // every Attach argument, nil included
	commits      int
	scale        int
	transform    compositor.Transform
	damages      int
	inputSet     bool
	opaqueSet    bool
	pendingFrame func()
	armedFrames  []func()
	onCommit     func() // fired once, on the first commit
	destroyed    bool
}

// Attach implements compositor.Surface.
func (s *Surface) Attach(b compositor.Buffer) {
	s.mu.Lock()
	s.attached = b
	s.attaches = append(s.attaches, b)
	s.mu.Unlock()
}

// SetBufferScale implements compositor.Surface.
func (s *Surface) SetBufferScale(scale int) {
	s.mu.Lock()
	s.scale = scale
	s.mu.Unlock()
}

// SetBufferTransform implements compositor.Surface.
func (s *Surface) SetBufferTransform(t compositor.Transform) {
	s.mu.Lock()
	s.transform = t
	s.mu.Unlock()
}

// DamageAll implements compositor.Surface.
func (s *Surface) DamageAll() {
	s.mu.Lock()
	s.damages++
	s.mu.Unlock()
}

// SetInputRegion implements compositor.Surface.
func (s *Surface) SetInputRegion(compositor.Region) {
	s.mu.Lock()
	s.inputSet = true
	s.mu.Unlock()
}

// SetOpaqueRegion implements compositor.Surface.
func (s *Surface) SetOpaqueRegion(compositor.Region) {
	s.mu.Lock()
	s.opaqueSet = true
	s.mu.Unlock()
}

// Frame implements compositor.Surface. The callback arms on the next
// Commit and fires when the test calls CompleteFrame.
func (s *Surface) Frame(done func()) {
	s.mu.Lock()
	s.pendingFrame = done
	s.mu.Unlock()
}

// Commit implements compositor.Surface.
func (s *Surface) Commit() {
	s.mu.Lock()
	s.commits++
	if s.pendingFrame != nil {
		s.armedFrames = append(s.armedFrames, s.pendingFrame)
		s.pendingFrame = nil
	}
	var first func()
	if s.commits == 1 && s.onCommit != nil {
		first = s.onCommit
		s.onCommit = nil
	}
	s.mu.Unlock()
	if first != nil {
		first()
	}
}

// Destroy implements compositor.Surface.
func (s *Surface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
	s.d.recordDestroy(s)
}

// CompleteFrame fires the oldest armed frame callback on the dispatch
// goroutine, simulating the compositor showing the committed content. It
// reports whether a callback was armed.
func (s *Surface) CompleteFrame() bool {
	s.mu.Lock()
	if len(s.armedFrames) == 0 {
		s.mu.Unlock()
		return false
	}
	cb := s.armedFrames[0]
	s.armedFrames = s.armedFrames[1:]
	s.mu.Unlock()
	s.d.post(cb)
	return true
}

// Attached returns the currently attached buffer, nil after a detach.
func (s *Surface) Attached() compositor.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Attaches returns every Attach argument in order, nil entries included.
func (s *Surface) Attaches() []compositor.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]compositor.Buffer(nil), s.attaches...)
}

// Commits returns how many times the surface was committed.
func (s *Surface) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// BufferScale returns the last committed buffer scale.
func (s *Surface) BufferScale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

// BufferTransform returns the last set buffer transform.
func (s *Surface) BufferTransform() compositor.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// Damages returns how many full-surface damage requests were made.
func (s *Surface) Damages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.damages
}

// InputRegionSet reports whether an input region was ever installed.
func (s *Surface) InputRegionSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputSet
}

// OpaqueRegionSet reports whether an opaque region was ever installed.
func (s *Surface) OpaqueRegionSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opaqueSet
}

// ArmedFrames returns how many frame callbacks are armed and uncompleted.
func (s *Surface) ArmedFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.armedFrames)
}

// Destroyed reports whether Destroy was called.
func (s *Surface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Region is a recording fake.
type Region struct {
	d *Display

	mu    sync.Mutex
	rects [][4]int
}

// Add implements compositor.Region.
func (r *Region) Add(x, y, w, h int) {
	r.mu.Lock()
	r.rects = append(r.rects, [4]int{x, y, w, h})
	r.mu.Unlock()
}

// Destroy implements compositor.Region.
func (r *Region) Destroy() {}

// Subsurface is a recording fake.
type Subsurface struct {
	d      *Display
	Child  *Surface
	Parent *Surface

	mu        sync.Mutex
	x, y      int
	sync      bool
	destroyed bool
}

// SetPosition implements compositor.Subsurface.
func (s *Subsurface) SetPosition(x, y int) {
	s.mu.Lock()
	s.x, s.y = x, y
	s.mu.Unlock()
}

// SetSync implements compositor.Subsurface.
func (s *Subsurface) SetSync() {
	s.mu.Lock()
	s.sync = true
	s.mu.Unlock()
}

// SetDesync implements compositor.Subsurface.
func (s *Subsurface) SetDesync() {
	s.mu.Lock()
	s.sync = false
	s.mu.Unlock()
}

// Destroy implements compositor.Subsurface.
func (s *Subsurface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
	s.d.recordDestroy(s)
}

// Position returns the last set position.
func (s *Subsurface) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// Synced reports whether the subsurface is in synchronized mode.
func (s *Subsurface) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync
}

// Viewport is a recording fake.
type Viewport struct {
	d       *Display
	Surface *Surface

	mu        sync.Mutex
	srcX      float64
	srcY      float64
	srcW      float64
	srcH      float64
	dstW      int
	dstH      int
	hasSource bool
	destroyed bool
}

// SetSource implements compositor.Viewport.
func (v *Viewport) SetSource(x, y, w, h float64) {
	v.mu.Lock()
	v.srcX, v.srcY, v.srcW, v.srcH = x, y, w, h
	v.hasSource = w >= 0 && h >= 0
	v.mu.Unlock()
}

// SetDestination implements compositor.Viewport.
func (v *Viewport) SetDestination(w, h int) {
	v.mu.Lock()
	v.dstW, v.dstH = w, h
	v.mu.Unlock()
}

// Destroy implements compositor.Viewport.
func (v *Viewport) Destroy() {
	v.mu.Lock()
	v.destroyed = true
	v.mu.Unlock()
	v.d.recordDestroy(v)
}

// Destination returns the last set destination size.
func (v *Viewport) Destination() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dstW, v.dstH
}

// Source returns the last set source rectangle and whether one is active.
func (v *Viewport) Source() (x, y, w, h float64, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.srcX, v.srcY, v.srcW, v.srcH, v.hasSource
}

type viewporter struct {
	d *Display
}

func (vp viewporter) GetViewport(s compositor.Surface) (compositor.Viewport, error) {
	v := &Viewport{d: vp.d, Surface: s.(*Surface)}
	vp.d.mu.Lock()
	vp.d.viewports = append(vp.d.viewports, v)
	vp.d.mu.Unlock()
	return v, nil
}

// Blender is a recording fake.
type Blender struct {
	d *Display

	mu    sync.Mutex
	alpha float64
	set   bool
}

// SetAlpha implements compositor.Blender.
func (b *Blender) SetAlpha(alpha float64) {
	b.mu.Lock()
	b.alpha = alpha
	b.set = true
	b.mu.Unlock()
}

// Destroy implements compositor.Blender.
func (b *Blender) Destroy() {
	b.d.recordDestroy(b)
}

// Alpha returns the last set alpha and whether one was ever set.
func (b *Blender) Alpha() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alpha, b.set
}

type alphaCompositing struct {
	d *Display
}

func (ac alphaCompositing) GetBlending(compositor.Surface) (compositor.Blender, error) {
	b := &Blender{d: ac.d}
	ac.d.mu.Lock()
	ac.d.blenders = append(ac.d.blenders, b)
	ac.d.mu.Unlock()
	return b, nil
}
