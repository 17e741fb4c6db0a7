package renderer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	tiles := NewTileGrid(20, 20, 5, 0)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, TaskID: i}
	}

	var active, peak int32
	pool := NewWorkerPool(3)
	seen := make(map[int]bool)

	err := pool.Run(context.Background(), tasks,
		func(task TileTask) RenderStats {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
			return RenderStats{TotalPixels: task.Tile.Bounds.Dx() * task.Tile.Bounds.Dy()}
		},
		func(result TileResult) {
			if seen[result.TaskID] {
				t.Errorf("Task %d reported twice", result.TaskID)
			}
			seen[result.TaskID] = true
			if result.Stats.TotalPixels != 25 {
				t.Errorf("Task %d: unexpected stats %+v", result.TaskID, result.Stats)
			}
		})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(seen) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(seen))
	}
	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent workers, saw %d", peak)
	}
}

func TestWorkerPool_StopsOnCancel(t *testing.T) {
	tiles := NewTileGrid(64, 64, 4, 0)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, TaskID: i}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var completed int
	err := NewWorkerPool(2).Run(ctx, tasks,
		func(task TileTask) RenderStats { return RenderStats{} },
		func(result TileResult) {
			completed++
			if completed == 5 {
				cancel()
			}
		})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if completed >= len(tasks) {
		t.Errorf("Expected cancellation to skip tasks, completed %d of %d", completed, len(tasks))
	}
}

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	if NewWorkerPool(0).GetNumWorkers() < 1 {
		t.Error("Expected at least one worker")
	}
	if n := NewWorkerPool(5).GetNumWorkers(); n != 5 {
		t.Errorf("Expected 5 workers, got %d", n)
	}
}
