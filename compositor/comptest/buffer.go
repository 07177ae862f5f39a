package comptest

import (
	"sync"

	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/media"
)

// Buffer is a fake shared-memory buffer. Tests call Release to deliver the
// classic per-buffer release event.
type Buffer struct {
	d    *Display
	Data []byte
	Info media.VideoInfo

	// RGBA holds the color of a single-pixel buffer.
	RGBA [4]uint32

	mu        sync.Mutex
	released  chan struct{}
	closed    bool
	destroyed bool
}

// Released implements compositor.Buffer.
func (b *Buffer) Released() <-chan struct{} {
	return b.released
}

// Destroy implements compositor.Buffer.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	b.destroyed = true
	b.mu.Unlock()
	b.d.recordDestroy(b)
}

// Release delivers one release event from the dispatch goroutine,
// simulating the compositor being done with the buffer.
func (b *Buffer) Release() {
	b.d.post(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		select {
		case b.released <- struct{}{}:
		default:
		}
	})
}

// closeReleased closes the release channel on backend teardown so watchers
// unblock without an event.
func (b *Buffer) closeReleased() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.released)
	}
}

// Destroyed reports whether Destroy was called.
func (b *Buffer) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

type singlePixelFactory struct {
	d *Display
}

func (f singlePixelFactory) CreateRGBA(r, g, bl, a uint32) (compositor.Buffer, error) {
	b := &Buffer{
		d:        f.d,
		Info:     media.VideoInfo{Width: 1, Height: 1, Format: media.PixelFormatBGRA},
		RGBA:     [4]uint32{r, g, bl, a},
		released: make(chan struct{}, 4),
	}
	f.d.mu.Lock()
	f.d.buffers = append(f.d.buffers, b)
	f.d.mu.Unlock()
	return b, nil
}
