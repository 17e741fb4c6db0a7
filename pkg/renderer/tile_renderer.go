package renderer

import (
	"image"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// TileRenderer renders rectangular regions of a scene using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
	}
}

// RenderTileBounds renders the pixels inside bounds into pixels, the RGB buffer
// of the whole image. Only the slots inside bounds are written, so tiles with
// disjoint bounds may render into the same buffer concurrently.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixels []byte, sampler core.Sampler) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ps := tr.samplePixel(x, y, sampler)
			stats.TotalSamples += ps.SampleCount

			rgb := ToRGB(ps.GetColor())
			offset := (y*tr.scene.Width + x) * 3
			copy(pixels[offset:offset+3], rgb[:])
		}
	}

	stats.finalize()
	return stats
}

// samplePixel averages the scene's samples for the pixel at image position (x, y).
// Viewport v runs bottom-up, so image row y maps to j = height - 1 - y.
func (tr *TileRenderer) samplePixel(x, y int, sampler core.Sampler) PixelStats {
	width, height := float64(tr.scene.Width), float64(tr.scene.Height)
	j := tr.scene.Height - 1 - y

	var ps PixelStats
	for ps.SampleCount < tr.scene.Samples {
		jitter := sampler.Get2D()
		u := (float64(x) + jitter.X) / width
		v := (float64(j) + jitter.Y) / height

		ray := tr.scene.Camera.GetRay(u, v, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene.World, sampler, 0))
	}
	return ps
}
