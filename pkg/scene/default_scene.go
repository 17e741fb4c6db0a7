package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewDefaultScene creates the three-spheres scene: a diffuse sphere flanked by
// a hollow glass sphere and a brushed metal sphere, resting on a large ground sphere
func NewDefaultScene(opts Options) (*Scene, error) {
	defaults := Options{Width: 400, Height: 200, Samples: 100}

	lookFrom := core.NewVec3(3, 3, 2)
	lookAt := core.NewVec3(0, 0, -1)
	cameraConfig := geometry.CameraConfig{
		Center:        lookFrom,
		LookAt:        lookAt,
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		Aperture:      0.5,
		FocusDistance: lookFrom.Subtract(lookAt).Length(),
	}

	glass := material.NewDielectric(1.5)
	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		// Negative radius flips the normals inward, making the glass sphere a hollow shell
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass),
	)

	return newScene(defaults, opts, cameraConfig, world)
}
