package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

const glassScene = `{
	"name": "Glass",
	"width": 64,
	"height": 32,
	"samples": 8,
	"maxDepth": 10,
	"camera": {"lookFrom": [0, 1, 2], "lookAt": [0, 0, -1], "vfov": 30, "aperture": 0.1},
	"spheres": [
		{"center": [0, -100.5, -1], "radius": 100, "material": {"type": "lambertian", "albedo": [0.8, 0.8, 0]}},
		{"center": [1, 0, -1], "radius": 0.5, "material": {"type": "metal", "albedo": "gold", "fuzz": 2}},
		{"center": [-1, 0, -1], "radius": -0.45, "material": {"type": "dielectric", "refractiveIndex": 1.5}}
	]
}`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(glassScene), Options{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if s.Width != 64 || s.Height != 32 || s.Samples != 8 || s.MaxDepth != 10 {
		t.Errorf("Unexpected settings %dx%d @ %d depth %d", s.Width, s.Height, s.Samples, s.MaxDepth)
	}
	if s.CameraConfig.VFov != 30 || s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Unexpected camera config %+v", s.CameraConfig)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio 2, got %f", s.CameraConfig.AspectRatio)
	}

	spheres := spheresOf(t, s)
	if len(spheres) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(spheres))
	}

	metal, ok := spheres[1].Material.(*material.Metal)
	if !ok {
		t.Fatalf("Expected metal, got %T", spheres[1].Material)
	}
	// gold is rgb(255, 215, 0)
	if math.Abs(metal.Albedo.Y-215.0/255) > 1e-12 || metal.Albedo.X != 1 || metal.Albedo.Z != 0 {
		t.Errorf("Expected gold albedo, got %v", metal.Albedo)
	}
	if metal.Fuzz != 1 {
		t.Errorf("Expected fuzz clamped to 1, got %f", metal.Fuzz)
	}

	if spheres[2].Radius != -0.45 {
		t.Errorf("Expected negative radius preserved, got %f", spheres[2].Radius)
	}
	if _, ok := spheres[2].Material.(*material.Dielectric); !ok {
		t.Errorf("Expected dielectric, got %T", spheres[2].Material)
	}
}

func TestParse_OptionsOverrideFile(t *testing.T) {
	s, err := Parse(strings.NewReader(glassScene), Options{Width: 10, Samples: 3})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Width != 10 || s.Height != 32 || s.Samples != 3 {
		t.Errorf("Expected 10x32 @ 3, got %dx%d @ %d", s.Width, s.Height, s.Samples)
	}
}

func TestParse_Errors(t *testing.T) {
	camera := `"camera": {"lookFrom": [0, 0, 0], "lookAt": [0, 0, -1]}`
	sphere := func(mat string) string {
		return `{` + camera + `, "spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": ` + mat + `}]}`
	}

	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{"unknown material", sphere(`{"type": "plastic"}`), ErrUnknownMaterial},
		{"unknown color", sphere(`{"type": "lambertian", "albedo": "not-a-color"}`), nil},
		{"short color", sphere(`{"type": "lambertian", "albedo": [1, 0]}`), nil},
		{"zero refractive index", sphere(`{"type": "dielectric"}`), nil},
		{"unknown field", `{"spheres": [], "lights": []}`, nil},
		{"no spheres", `{` + camera + `, "spheres": []}`, nil},
		{"zero radius", `{` + camera + `, "spheres": [{"center": [0, 0, -1], "radius": 0, "material": {"type": "metal"}}]}`, nil},
		{"degenerate camera", `{"camera": {"lookFrom": [1, 1, 1], "lookAt": [1, 1, 1]}, "spheres": [{"center": [0, 0, -1], "radius": 1, "material": {"type": "metal"}}]}`, nil},
		{"up along view", `{"camera": {"lookFrom": [0, 2, 0], "lookAt": [0, 0, 0], "up": [0, 1, 0]}, "spheres": [{"center": [0, 0, -1], "radius": 1, "material": {"type": "metal"}}]}`, nil},
		{"bad width", sphere(`{"type": "metal"}`)[:1] + `"width": -4, ` + sphere(`{"type": "metal"}`)[1:], ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), Options{})
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.expected != nil && !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestColor_Unmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Vec3
	}{
		{`[0.25, 0.5, 1]`, core.NewVec3(0.25, 0.5, 1)},
		{`"white"`, core.NewVec3(1, 1, 1)},
		{`" Black "`, core.NewVec3(0, 0, 0)},
		{`"RED"`, core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var c Color
			if err := c.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			if core.Vec3(c) != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, core.Vec3(c))
			}
		})
	}
}

func TestLoadFile_BundledScenes(t *testing.T) {
	scenes, err := ListFileScenes(filepath.Join("..", "..", "scenes"))
	if err != nil {
		t.Fatalf("ListFileScenes() error: %v", err)
	}
	if len(scenes) == 0 {
		t.Fatal("Expected bundled scene files")
	}

	for _, info := range scenes {
		t.Run(info.Name, func(t *testing.T) {
			s, err := LoadFile(info.FilePath, Options{Width: 20, Height: 10, Samples: 1})
			if err != nil {
				t.Fatalf("LoadFile(%q) error: %v", info.FilePath, err)
			}
			if s.GetPrimitiveCount() < 2 {
				t.Errorf("Expected ground and at least one sphere, got %d", s.GetPrimitiveCount())
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if _, err := LoadFile(path, Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
