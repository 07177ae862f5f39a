package media

import (
	"fmt"
	"sync/atomic"
)

// Frame is a decoded video frame with reference-counted backing memory.
// The presentation engine holds a reference for as long as the compositor
// may still read the memory; the producer must not reuse the backing store
// until the count returns to its own references.
type Frame struct {
	Data []byte
	Info VideoInfo

	refs atomic.Int32

	// release, when set, is called once the last reference is dropped.
	// Pools use it to recycle the backing store.
	release func(*Frame)
}

// NewFrame wraps data in a Frame with an initial reference count of one.
func NewFrame(data []byte, info VideoInfo) *Frame {
	f := &Frame{Data: data, Info: info}
	f.refs.Store(1)
	return f
}

// NewPooledFrame is like NewFrame but registers a release hook invoked when
// the final reference is dropped.
func NewPooledFrame(data []byte, info VideoInfo, release func(*Frame)) *Frame {
	f := NewFrame(data, info)
	f.release = release
	return f
}

// Ref takes an additional reference and returns the frame for chaining.
func (f *Frame) Ref() *Frame {
	if f.refs.Add(1) <= 1 {
		panic("media: Ref on a released Frame")
	}
	return f
}

// Unref drops one reference. When the count reaches zero the release hook,
// if any, runs and the frame must not be used again.
func (f *Frame) Unref() {
	n := f.refs.Add(-1)
	switch {
	case n == 0:
		if f.release != nil {
			f.release(f)
		}
	case n < 0:
		panic(fmt.Sprintf("media: Frame refcount underflow (%d)", n))
	}
}

// RefCount returns the current reference count. Intended for tests and
// leak diagnostics only; the value is stale the moment it is read.
func (f *Frame) RefCount() int {
	return int(f.refs.Load())
}
