package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

func TestHittableList_ClosestHitWins(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 1, 0))

	// Far sphere listed first so order cannot decide the result
	list := NewHittableList(
		NewSphere(core.NewVec3(0, 0, -10), 1.0, far),
		NewSphere(core.NewVec3(0, 0, -3), 1.0, near),
	)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, isHit := list.Hit(ray, 0.0001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != near {
		t.Error("Expected the nearer sphere to win")
	}
	if math.Abs(hit.T-2.0) > 1e-9 {
		t.Errorf("Expected t=2, got %f", hit.T)
	}
}

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, isHit := list.Hit(ray, 0.0001, math.Inf(1)); isHit {
		t.Error("Empty list should never be hit")
	}
}

func TestHittableList_Nested(t *testing.T) {
	inner := NewHittableList(NewSphere(core.NewVec3(0, 0, -2), 0.5, nil))
	outer := NewHittableList(NewSphere(core.NewVec3(0, 0, -8), 0.5, nil))
	outer.Add(inner)

	if outer.Len() != 2 {
		t.Fatalf("Expected 2 members, got %d", outer.Len())
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, isHit := outer.Hit(ray, 0.0001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected nested sphere at t=1.5, got %f", hit.T)
	}
}

func TestHittableList_MatchesExhaustiveSearch(t *testing.T) {
	sampler := core.NewSeededSampler(42)
	var spheres []Shape
	for i := 0; i < 30; i++ {
		c := sampler.Get3D().Multiply(20).Subtract(core.NewVec3(10, 10, 10))
		spheres = append(spheres, NewSphere(c, 0.5+sampler.Get1D()*2, nil))
	}
	list := NewHittableList(spheres...)

	for i := 0; i < 200; i++ {
		dir := core.RandomInUnitBall(sampler)
		if dir.IsZero() {
			continue
		}
		ray := core.NewRay(core.NewVec3(0, 0, 0), dir)

		bestT := math.Inf(1)
		for _, s := range spheres {
			if hit, ok := s.Hit(ray, 0.0001, math.Inf(1)); ok && hit.T < bestT {
				bestT = hit.T
			}
		}

		hit, isHit := list.Hit(ray, 0.0001, math.Inf(1))
		if math.IsInf(bestT, 1) {
			if isHit {
				t.Fatalf("List reported a hit that no member has")
			}
			continue
		}
		if !isHit || hit.T != bestT {
			t.Fatalf("Expected closest t=%f, got hit=%v", bestT, isHit)
		}
	}
}
