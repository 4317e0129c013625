// Package dispatch computes the job matrix that fans pending rows out to
// parallel form-automator workers.
//
// The matrix is built from a snapshot count while workers later fetch live
// slices, so slices are only disjoint if no other writer touches row
// statuses between the count and the fetches. That race exists upstream in
// the workflow design and is accepted here; nothing claims rows atomically.
package dispatch

import (
	"context"

	"go.uber.org/zap"
)

// Sizing rules for the worker fan-out.
const (
	// BatchSize is how many rows one worker takes.
	BatchSize = 250
	// MaxWorkers caps the fan-out regardless of backlog size.
	MaxWorkers = 4
)

// Slice assigns one worker an offset/limit window over the pending-row
// ordering.
type Slice struct {
	WorkerID int `json:"worker_id"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// Matrix is the job configuration consumed by the workflow's fromJSON.
type Matrix struct {
	Include []Slice `json:"include"`
}

// Counter reports how many rows are still pending.
type Counter interface {
	CountPending(ctx context.Context) (int, error)
}

// BuildMatrix turns a pending-row count into worker slices. Workers are
// ceil(count/BatchSize) capped at MaxWorkers; every slice gets the full
// BatchSize limit, including the last one. The final fetch simply returns
// fewer rows, and with more than MaxWorkers*BatchSize pending the overflow
// waits for the next dispatch.
func BuildMatrix(count int) (bool, Matrix) {
	matrix := Matrix{Include: []Slice{}}
	if count <= 0 {
		return false, matrix
	}

	numWorkers := (count + BatchSize - 1) / BatchSize
	if numWorkers > MaxWorkers {
		numWorkers = MaxWorkers
	}

	for i := 0; i < numWorkers; i++ {
		matrix.Include = append(matrix.Include, Slice{
			WorkerID: i + 1,
			Offset:   i * BatchSize,
			Limit:    BatchSize,
		})
	}
	return true, matrix
}

// Run counts pending rows and emits the resulting matrix. A failed count is
// logged and treated as zero pending: the workflow then starts no workers,
// same as an empty backlog.
func Run(ctx context.Context, counter Counter, out *Output, logger *zap.Logger) error {
	count, err := counter.CountPending(ctx)
	if err != nil {
		logger.Error("failed to count pending rows, assuming none", zap.Error(err))
		count = 0
	} else {
		logger.Info("pending rows counted", zap.Int("count", count))
	}

	hasJobs, matrix := BuildMatrix(count)
	if hasJobs {
		logger.Info("job matrix built",
			zap.Int("workers", len(matrix.Include)),
			zap.Int("count", count))
	} else {
		logger.Info("no pending rows, no workers will start")
	}

	if err := out.Write(hasJobs, matrix); err != nil {
		return err
	}
	return nil
}
