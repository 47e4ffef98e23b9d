package simulation

import (
	"errors"
	"io"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/sarchlab/cachesim/mem/mem"
)

// An AccessSource supplies accesses in trace order. It returns io.EOF after
// the last access.
type AccessSource interface {
	Next() (mem.Access, error)
}

// An Observer receives snapshots while a trace is replayed. Snapshots are
// values, so observers may keep them and read them from other goroutines.
type Observer interface {
	Observe(processed uint64, snapshot Snapshot)
}

// Runner replays a trace through a hierarchy.
type Runner struct {
	hierarchy    *Hierarchy
	observers    []Observer
	logger       *log.Logger
	progress     rate.Sometimes
	publishEvery uint64
}

// NewRunner creates a runner that drives the given hierarchy.
func NewRunner(h *Hierarchy) *Runner {
	return &Runner{
		hierarchy:    h,
		progress:     rate.Sometimes{Interval: time.Second},
		publishEvery: 4096,
	}
}

// WithLogger makes the runner log its progress at most once per second.
func (r *Runner) WithLogger(logger *log.Logger) *Runner {
	r.logger = logger
	return r
}

// WithObserver adds an observer.
func (r *Runner) WithObserver(o Observer) *Runner {
	r.observers = append(r.observers, o)
	return r
}

// WithPublishInterval sets how many accesses pass between two snapshots sent
// to the observers.
func (r *Runner) WithPublishInterval(n uint64) *Runner {
	if n == 0 {
		n = 1
	}

	r.publishEvery = n

	return r
}

// Run replays every access of the source. It stops at the first error the
// source returns other than io.EOF and reports how many records were
// processed before it. Observers always receive a final snapshot.
func (r *Runner) Run(src AccessSource) (processed uint64, err error) {
	defer func() {
		r.publish(processed)
	}()

	for {
		access, nextErr := src.Next()
		if errors.Is(nextErr, io.EOF) {
			return processed, nil
		}

		if nextErr != nil {
			return processed, nextErr
		}

		r.hierarchy.Access(access.Op, access.Address)
		processed++

		if processed%r.publishEvery == 0 {
			r.publish(processed)
		}

		r.logProgress(processed)
	}
}

func (r *Runner) publish(processed uint64) {
	if len(r.observers) == 0 {
		return
	}

	snapshot := r.hierarchy.Stats()
	for _, o := range r.observers {
		o.Observe(processed, snapshot)
	}
}

func (r *Runner) logProgress(processed uint64) {
	if r.logger == nil {
		return
	}

	r.progress.Do(func() {
		stats := r.hierarchy.Stats()
		r.logger.Printf("processed %d accesses, L1 miss rate %.4f, "+
			"memory traffic %d",
			processed, stats.L1.MissRate, stats.MemoryTraffic)
	})
}

// SliceSource serves accesses from memory.
type SliceSource struct {
	accesses []mem.Access
	next     int
}

// NewSliceSource creates a source over the given accesses.
func NewSliceSource(accesses []mem.Access) *SliceSource {
	return &SliceSource{accesses: accesses}
}

// Next returns the next access or io.EOF.
func (s *SliceSource) Next() (mem.Access, error) {
	if s.next >= len(s.accesses) {
		return mem.Access{}, io.EOF
	}

	a := s.accesses[s.next]
	s.next++

	return a, nil
}
