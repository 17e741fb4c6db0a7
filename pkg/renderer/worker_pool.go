package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	TaskID int // Index into the task list
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Tile   *Tile
	Stats  RenderStats
}

// WorkerPool renders tile tasks on a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders every task with work and hands each result to onResult.
// onResult is always called from the calling goroutine, one result at a time.
// Cancelling ctx stops scheduling new tasks; Run then returns ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, tasks []TileTask, work func(TileTask) RenderStats, onResult func(TileResult)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	results := make(chan TileResult)
	var runErr error

	go func() {
		defer close(results)
		for _, task := range tasks {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result := TileResult{TaskID: task.TaskID, Tile: task.Tile, Stats: work(task)}
				select {
				case results <- result:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		runErr = g.Wait()
	}()

	completed := 0
	for result := range results {
		completed++
		if onResult != nil {
			onResult(result)
		}
	}

	if runErr != nil {
		return runErr
	}
	if completed < len(tasks) {
		return ctx.Err()
	}
	return nil
}
