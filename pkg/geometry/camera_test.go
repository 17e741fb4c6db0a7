package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestCamera_Basis(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:      core.NewVec3(3, 3, 2),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20,
		AspectRatio: 2.0,
	})

	u, v, w := camera.Basis()
	for name, vec := range map[string]core.Vec3{"u": u, "v": v, "w": w} {
		if math.Abs(vec.Length()-1) > 1e-12 {
			t.Errorf("%s should be unit length, got %f", name, vec.Length())
		}
	}
	if math.Abs(u.Dot(v)) > 1e-12 || math.Abs(u.Dot(w)) > 1e-12 || math.Abs(v.Dot(w)) > 1e-12 {
		t.Errorf("Basis is not orthogonal: u=%v v=%v w=%v", u, v, w)
	}

	// w points from the scene toward the camera
	back := core.NewVec3(3, 3, 3).Normalize()
	if !vecClose(w, back, 1e-12) {
		t.Errorf("Expected w=%v, got %v", back, w)
	}
}

func TestCamera_CenterRayHitsLookAt(t *testing.T) {
	config := CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2.0,
	}
	camera := NewCamera(config)

	ray := camera.GetRay(0.5, 0.5, nil)
	if ray.Origin != config.Center {
		t.Errorf("Pinhole ray should start at camera center, got %v", ray.Origin)
	}
	if !vecClose(ray.Direction, core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected center ray (0, 0, -1), got %v", ray.Direction)
	}

	// 90° vertical fov with focus distance 1 spans [-1, 1] vertically and [-2, 2] horizontally
	corner := camera.GetRay(0, 0, nil)
	if !vecClose(corner.Direction, core.NewVec3(-2, -1, -1), 1e-12) {
		t.Errorf("Expected lower-left corner (-2, -1, -1), got %v", corner.Direction)
	}
	top := camera.GetRay(1, 1, nil)
	if !vecClose(top.Direction, core.NewVec3(2, 1, -1), 1e-12) {
		t.Errorf("Expected upper-right corner (2, 1, -1), got %v", top.Direction)
	}
}

func TestCamera_FocusDistanceScalesViewport(t *testing.T) {
	base := CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   1.0,
		FocusDistance: 4.0,
	}
	camera := NewCamera(base)

	ray := camera.GetRay(0, 0, nil)
	if !vecClose(ray.Direction, core.NewVec3(-4, -4, -4), 1e-12) {
		t.Errorf("Expected viewport on focus plane at z=-4, got %v", ray.Direction)
	}

	// Zero focus distance falls back to the look-at distance
	auto := base
	auto.FocusDistance = 0
	auto.LookAt = core.NewVec3(0, 0, -2.5)
	center := NewCamera(auto).GetRay(0.5, 0.5, nil)
	if !vecClose(center.Direction, core.NewVec3(0, 0, -2.5), 1e-12) {
		t.Errorf("Expected auto focus at z=-2.5, got %v", center.Direction)
	}
}

func TestCamera_DepthOfField(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.5,
		FocusDistance: 3.0,
	}
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	if camera.LensRadius() != 0.25 {
		t.Errorf("Expected lens radius 0.25, got %f", camera.LensRadius())
	}

	// A centered lens sample behaves like a pinhole
	focusPoint := camera.GetRay(0.3, 0.7, core.NewSequenceSampler(0.5)).At(1)
	moved := false
	for i := 0; i < 200; i++ {
		ray := camera.GetRay(0.3, 0.7, sampler)

		// Origin jitters on the lens disk in the camera's u/v plane
		offset := ray.Origin.Subtract(config.Center)
		if offset.Length() >= camera.LensRadius() {
			t.Fatalf("Lens offset %v exceeds lens radius", offset)
		}
		if math.Abs(offset.Z) > 1e-12 {
			t.Fatalf("Lens offset should lie in the lens plane, got %v", offset)
		}
		if offset.Length() > 1e-9 {
			moved = true
		}

		// Every lens sample converges on the same point of the focus plane
		if !vecClose(ray.At(1), focusPoint, 1e-9) {
			t.Fatalf("Ray misses focus point: expected %v, got %v", focusPoint, ray.At(1))
		}
	}
	if !moved {
		t.Error("Expected lens sampling to move the ray origin")
	}
}
