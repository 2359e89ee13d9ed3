package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrPending is returned by Future.Result before the future resolves.
	ErrPending = errors.New("scheduler: future not resolved")

	// ErrInvalidJob is returned for jobs with no work function or a
	// non-positive chunk size.
	ErrInvalidJob = errors.New("scheduler: invalid job")
)

// Job is a computation over Units independent units (columns of a frame)
// processed ChunkSize units per loop turn.
type Job[T any] struct {
	Units     int
	ChunkSize int

	// Work computes a single unit.
	Work func(unit int)

	// OnProgress, if set, is called with unit/Units after each unit whose
	// index is a multiple of ProgressEvery. It runs inline on the loop and
	// must not block.
	OnProgress    func(float64)
	ProgressEvery int

	// Finish runs after the last chunk and produces the future's result.
	Finish func() (T, error)
}

func (j Job[T]) validate() error {
	switch {
	case j.Work == nil:
		return fmt.Errorf("%w: nil Work", ErrInvalidJob)
	case j.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d", ErrInvalidJob, j.ChunkSize)
	case j.Units < 0:
		return fmt.Errorf("%w: %d units", ErrInvalidJob, j.Units)
	}
	return nil
}

// Start schedules job on loop and returns its result future. The first chunk
// runs on a later loop turn, never inside Start.
func Start[T any](loop *Loop, job Job[T]) *Future[T] {
	if err := job.validate(); err != nil {
		return Failed[T](loop, err)
	}

	f := NewFuture[T](loop)

	var chunk func(first int)
	chunk = func(first int) {
		if first >= job.Units {
			var (
				v   T
				err error
			)
			if job.Finish != nil {
				v, err = job.Finish()
			}
			f.Resolve(v, err)
			return
		}

		end := min(first+job.ChunkSize, job.Units)
		for unit := first; unit < end; unit++ {
			job.Work(unit)
			if job.OnProgress != nil && job.ProgressEvery > 0 && unit%job.ProgressEvery == 0 {
				job.OnProgress(float64(unit) / float64(job.Units))
			}
		}

		loop.Defer(func() { chunk(end) })
	}

	loop.Defer(func() { chunk(0) })
	return f
}
