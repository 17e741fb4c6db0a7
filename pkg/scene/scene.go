package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

var (
	ErrInvalidDimensions = errors.New("image width and height must be positive")
	ErrInvalidSamples    = errors.New("samples per pixel must be positive")
	ErrUnknownScene      = errors.New("unknown scene")
	ErrUnknownMaterial   = errors.New("unknown material type")
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Width    int // Image width in pixels
	Height   int // Image height in pixels
	Samples  int // Number of rays per pixel
	MaxDepth int // Maximum ray bounce depth

	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
	World        geometry.Shape // Objects in the scene
}

// Options override the defaults of a built-in or file scene. Zero values keep the default.
type Options struct {
	Width   int
	Height  int
	Samples int
	Seed    int64
}

// Validate reports whether the scene can be rendered
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, s.Width, s.Height)
	}
	if s.Samples <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSamples, s.Samples)
	}
	if s.Camera == nil || s.World == nil {
		return errors.New("scene has no camera or world")
	}
	return nil
}

// AspectRatio returns width / height
func (s *Scene) AspectRatio() float64 {
	return float64(s.Width) / float64(s.Height)
}

// GetPrimitiveCount returns the total number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return countPrimitives(s.World)
}

func countPrimitives(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.HittableList:
		count := 0
		for _, member := range obj.Shapes {
			count += countPrimitives(member)
		}
		return count
	case nil:
		return 0
	default:
		return 1
	}
}

// newScene fills in the image settings from opts over the given defaults
// and builds the camera for the resulting aspect ratio.
func newScene(defaults Options, opts Options, cameraConfig geometry.CameraConfig, world geometry.Shape) (*Scene, error) {
	s := &Scene{
		Width:    pick(opts.Width, defaults.Width),
		Height:   pick(opts.Height, defaults.Height),
		Samples:  pick(opts.Samples, defaults.Samples),
		MaxDepth: integrator.DefaultMaxDepth,
		World:    world,
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, s.Width, s.Height)
	}

	cameraConfig.AspectRatio = s.AspectRatio()
	s.CameraConfig = cameraConfig
	s.Camera = geometry.NewCamera(cameraConfig)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func pick(override, fallback int) int {
	if override != 0 {
		return override
	}
	return fallback
}

// NewGroundSphere creates a very large sphere whose top touches y
func NewGroundSphere(y, radius float64, mat material.Material) *geometry.Sphere {
	return geometry.NewSphere(core.NewVec3(0, y-radius, 0), radius, mat)
}
