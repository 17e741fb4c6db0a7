package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// File is the JSON representation of a scene
type File struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Group       string       `json:"group,omitempty"`
	Width       int          `json:"width,omitempty"`
	Height      int          `json:"height,omitempty"`
	Samples     int          `json:"samples,omitempty"`
	MaxDepth    int          `json:"maxDepth,omitempty"`
	Camera      CameraFile   `json:"camera"`
	Spheres     []SphereFile `json:"spheres"`
}

// CameraFile describes the camera of a scene file. Up defaults to +y and
// a zero focus distance focuses on LookAt.
type CameraFile struct {
	LookFrom      Vector  `json:"lookFrom"`
	LookAt        Vector  `json:"lookAt"`
	Up            *Vector `json:"up,omitempty"`
	VFov          float64 `json:"vfov,omitempty"`
	Aperture      float64 `json:"aperture,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"`
}

type SphereFile struct {
	Center   Vector       `json:"center"`
	Radius   float64      `json:"radius"`
	Material MaterialFile `json:"material"`
}

// MaterialFile is one of "lambertian", "metal" or "dielectric"
type MaterialFile struct {
	Type            string  `json:"type"`
	Albedo          Color   `json:"albedo,omitempty"`
	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractiveIndex,omitempty"`
}

// Vector is a JSON [x, y, z] triple
type Vector core.Vec3

func (v *Vector) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var xyz []float64
	if err := json.Unmarshal(data, &xyz); err != nil {
		return fmt.Errorf("vector must be an [x, y, z] array: %w", err)
	}
	if len(xyz) != 3 {
		return fmt.Errorf("vector must have 3 components, got %d", len(xyz))
	}
	*v = Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return nil
}

func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

// Color is either an [r, g, b] array in [0, 1] or an SVG color name such as "gold"
type Color core.Vec3

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown color name %q", name)
		}
		*c = Color{X: float64(rgba.R) / 255, Y: float64(rgba.G) / 255, Z: float64(rgba.B) / 255}
		return nil
	}

	var v Vector
	if err := v.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("color must be a name or an [r, g, b] array: %w", err)
	}
	*c = Color(v)
	return nil
}

func (c Color) MarshalJSON() ([]byte, error) {
	return Vector(c).MarshalJSON()
}

// LoadFile reads a JSON scene file
func LoadFile(path string, opts Options) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	s, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a JSON scene and builds it. Non-zero fields of opts override the file.
func Parse(r io.Reader, opts Options) (*Scene, error) {
	var file File
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	return file.Build(opts)
}

// Build creates the scene described by the file
func (f *File) Build(opts Options) (*Scene, error) {
	if len(f.Spheres) == 0 {
		return nil, errors.New("scene has no spheres")
	}

	world := geometry.NewHittableList()
	for i, sf := range f.Spheres {
		if sf.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		mat, err := sf.Material.build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		world.Add(geometry.NewSphere(core.Vec3(sf.Center), sf.Radius, mat))
	}

	up := core.NewVec3(0, 1, 0)
	if f.Camera.Up != nil {
		up = core.Vec3(*f.Camera.Up)
	}
	vfov := f.Camera.VFov
	if vfov <= 0 {
		vfov = 90
	}
	cameraConfig := geometry.CameraConfig{
		Center:        core.Vec3(f.Camera.LookFrom),
		LookAt:        core.Vec3(f.Camera.LookAt),
		Up:            up,
		VFov:          vfov,
		Aperture:      f.Camera.Aperture,
		FocusDistance: f.Camera.FocusDistance,
	}
	if cameraConfig.Center == cameraConfig.LookAt {
		return nil, errors.New("camera lookFrom and lookAt must differ")
	}
	if up.Cross(cameraConfig.Center.Subtract(cameraConfig.LookAt)).LengthSquared() == 0 {
		return nil, errors.New("camera up must not be parallel to the view direction")
	}

	defaults := Options{
		Width:   pick(f.Width, 400),
		Height:  pick(f.Height, 200),
		Samples: pick(f.Samples, 100),
	}
	s, err := newScene(defaults, opts, cameraConfig, world)
	if err != nil {
		return nil, err
	}
	if f.MaxDepth > 0 {
		s.MaxDepth = f.MaxDepth
	}
	return s, nil
}

func (m MaterialFile) build() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(core.Vec3(m.Albedo)), nil
	case "metal":
		return material.NewMetal(core.Vec3(m.Albedo), m.Fuzz), nil
	case "dielectric", "glass":
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("dielectric refractive index must be positive, got %g", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, m.Type)
	}
}
