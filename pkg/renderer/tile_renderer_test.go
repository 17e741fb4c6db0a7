package renderer

import (
	"image"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// MockIntegrator returns a fixed color and counts its calls
type MockIntegrator struct {
	returnColor core.Vec3
	callCount   int
}

func (m *MockIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	m.callCount++
	return m.returnColor
}

func TestTileRenderer_WritesOnlyItsBounds(t *testing.T) {
	s := createTestScene(6, 4, 3)
	mock := &MockIntegrator{returnColor: core.NewVec3(0.25, 1, 0)}
	tr := NewTileRenderer(s, mock)

	pixels := make([]byte, 6*4*3)
	bounds := image.Rect(2, 1, 5, 3)
	stats := tr.RenderTileBounds(bounds, pixels, core.NewSeededSampler(1))

	if mock.callCount != 6*3 {
		t.Errorf("Expected %d integrator calls, got %d", 6*3, mock.callCount)
	}
	if stats.TotalPixels != 6 || stats.TotalSamples != 18 || stats.AverageSamples != 3 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			offset := (y*6 + x) * 3
			got := [3]byte{pixels[offset], pixels[offset+1], pixels[offset+2]}
			want := [3]byte{}
			if image.Pt(x, y).In(bounds) {
				want = [3]byte{127, 255, 0}
			}
			if got != want {
				t.Errorf("Pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestTileRenderer_TopRowSeesUpperViewport(t *testing.T) {
	// Pure sky: the top image row looks upward and must be bluer than the bottom row
	s := createTestScene(1, 2, 1)
	s.World = geometry.NewHittableList()
	tr := NewTileRenderer(s, integrator.NewPathTracingIntegrator(0))

	pixels := make([]byte, 2*3)
	tr.RenderTileBounds(image.Rect(0, 0, 1, 2), pixels, core.NewSequenceSampler(0.5))

	top, bottom := pixels[0:3], pixels[3:6]
	if top[0] >= bottom[0] {
		t.Errorf("Expected top row red %d below bottom row red %d", top[0], bottom[0])
	}
	if top[2] != 255 || bottom[2] != 255 {
		t.Errorf("Sky blue channel should saturate, got %d and %d", top[2], bottom[2])
	}
}

func TestNewTileGrid(t *testing.T) {
	tiles := NewTileGrid(10, 7, 4, 100)
	if len(tiles) != 3*2 {
		t.Fatalf("Expected 6 tiles, got %d", len(tiles))
	}

	covered := make(map[image.Point]int)
	for i, tile := range tiles {
		if tile.ID != i {
			t.Errorf("Tile %d has ID %d", i, tile.ID)
		}
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				covered[image.Pt(x, y)]++
			}
		}
	}
	if len(covered) != 70 {
		t.Errorf("Tiles cover %d distinct pixels, want 70", len(covered))
	}
	for p, n := range covered {
		if n != 1 {
			t.Errorf("Pixel %v covered %d times", p, n)
		}
	}

	last := tiles[len(tiles)-1].Bounds
	if last != image.Rect(8, 4, 10, 7) {
		t.Errorf("Expected clipped edge tile, got %v", last)
	}
}

func TestNewTile_SeededByID(t *testing.T) {
	a := NewTile(3, image.Rect(0, 0, 1, 1), 40)
	b := NewTile(0, image.Rect(0, 0, 1, 1), 43)
	c := NewTile(4, image.Rect(0, 0, 1, 1), 40)

	va, vb, vc := a.Random.Float64(), b.Random.Float64(), c.Random.Float64()
	if va != vb {
		t.Error("Tiles with equal seed+id should draw the same sequence")
	}
	if va == vc {
		t.Error("Neighbouring tiles should draw different sequences")
	}
}
