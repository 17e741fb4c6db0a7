package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains configuration for parallel rendering
type Config struct {
	TileSize   int   // Size of each square tile in pixels
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; tile i draws from Seed + i
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:   32,
		NumWorkers: 0,
		Seed:       42,
	}
}

// TileProgress reports a completed tile to a Render progress callback
type TileProgress struct {
	TileNumber int             // Completed tiles so far (1-based)
	TotalTiles int             // Total number of tiles in the image
	Bounds     image.Rectangle // Pixel bounds of the completed tile
	Pixels     []byte          // RGB bytes of this tile only, row-major, Bounds.Dx() wide
	Stats      RenderStats     // Statistics for this tile only
}

// Raytracer renders a scene to an RGB pixel buffer
type Raytracer struct {
	scene        *scene.Scene
	config       Config
	tileRenderer *TileRenderer
	logger       core.Logger
}

// NewRaytracer creates a new raytracer. A nil logger writes to stdout.
func NewRaytracer(s *scene.Scene, config Config, logger core.Logger) (*Raytracer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Raytracer{
		scene:        s,
		config:       config,
		tileRenderer: NewTileRenderer(s, integrator.NewPathTracingIntegrator(s.MaxDepth)),
		logger:       logger,
	}, nil
}

// Scene returns the scene being rendered
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// newPixelBuffer allocates width*height*3 bytes, RGB row-major with row 0 at the top
func (rt *Raytracer) newPixelBuffer() []byte {
	return make([]byte, rt.scene.Width*rt.scene.Height*3)
}

// RenderPass renders the whole image on the calling goroutine, drawing every
// random number from sampler in scanline order starting at the top row.
func (rt *Raytracer) RenderPass(sampler core.Sampler) []byte {
	pixels := rt.newPixelBuffer()
	bounds := image.Rect(0, 0, rt.scene.Width, rt.scene.Height)
	rt.tileRenderer.RenderTileBounds(bounds, pixels, sampler)
	return pixels
}

// Render renders the image in parallel tiles. Each tile draws from its own
// seeded random source, so the result does not depend on the number of workers.
// progress, if non-nil, is called serially after each tile completes.
func (rt *Raytracer) Render(ctx context.Context, progress func(TileProgress)) ([]byte, RenderStats, error) {
	startTime := time.Now()
	pixels := rt.newPixelBuffer()

	tiles := NewTileGrid(rt.scene.Width, rt.scene.Height, rt.config.TileSize, rt.config.Seed)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, TaskID: i}
	}

	pool := NewWorkerPool(rt.config.NumWorkers)
	rt.logger.Printf("Rendering %dx%d at %d samples/pixel: %d tiles on %d workers...\n",
		rt.scene.Width, rt.scene.Height, rt.scene.Samples, len(tiles), pool.GetNumWorkers())

	stats := RenderStats{Workers: pool.GetNumWorkers()}
	done := 0

	err := pool.Run(ctx, tasks,
		func(task TileTask) RenderStats {
			sampler := core.NewRandomSampler(task.Tile.Random)
			return rt.tileRenderer.RenderTileBounds(task.Tile.Bounds, pixels, sampler)
		},
		func(result TileResult) {
			done++
			stats.Merge(result.Stats)
			if progress != nil {
				progress(TileProgress{
					TileNumber: done,
					TotalTiles: len(tiles),
					Bounds:     result.Tile.Bounds,
					Pixels:     cropPixels(pixels, rt.scene.Width, result.Tile.Bounds),
					Stats:      result.Stats,
				})
			}
		})
	stats.Duration = time.Since(startTime)

	if err != nil {
		rt.logger.Printf("Rendering stopped after %d of %d tiles: %v\n", done, len(tiles), err)
		return nil, stats, err
	}

	rt.logger.Printf("Render completed in %v (%d samples)\n", stats.Duration, stats.TotalSamples)
	return pixels, stats, nil
}

// cropPixels copies the bytes inside bounds out of a width-pixel-wide RGB buffer
func cropPixels(pixels []byte, width int, bounds image.Rectangle) []byte {
	rowBytes := bounds.Dx() * 3
	tile := make([]byte, 0, rowBytes*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		start := (y*width + bounds.Min.X) * 3
		tile = append(tile, pixels[start:start+rowBytes]...)
	}
	return tile
}
