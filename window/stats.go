package window

import "sync/atomic"

// Stats is a point-in-time snapshot of a window's frame accounting.
type Stats struct {
	// Submitted counts calls to Submit carrying a buffer.
	Submitted int64
	// Committed counts buffers actually handed to the compositor.
	Committed int64
	// Dropped counts staged buffers replaced by a newer submission
	// before they could be displayed.
	Dropped int64
}

// stats holds the live counters. Updated from both the producer thread and
// the dispatch goroutine, so everything is atomic.
type stats struct {
	submitted atomic.Int64
	committed atomic.Int64
	dropped   atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Submitted: s.submitted.Load(),
		Committed: s.committed.Load(),
		Dropped:   s.dropped.Load(),
	}
}
