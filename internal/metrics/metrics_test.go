package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pegfall/internal/geom"
)

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()

	m.Observe(geom.V(0, 0), geom.V(3, 4), 1)
	m.Observe(geom.V(0, 0), geom.V(0, 100), 2)
	m.Observe(geom.V(0, 0), geom.V(1, 1), 3)

	if m.Value() != 100 {
		t.Errorf("expected max speed 100, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()

	m.Observe(geom.V(0, 0), geom.Vec2{}, 1)
	m.Observe(geom.V(3, 4), geom.Vec2{}, 2)
	m.Observe(geom.V(3, 14), geom.Vec2{}, 3)

	if math.Abs(m.Value()-15) > 1e-9 {
		t.Errorf("expected path length 15, got %f", m.Value())
	}

	m.Reset()
	m.Observe(geom.V(100, 100), geom.Vec2{}, 1)
	if m.Value() != 0 {
		t.Errorf("first sample after reset added length: %f", m.Value())
	}
}

func TestDescent(t *testing.T) {
	m := NewDescent(700)

	m.Observe(geom.V(0, 20), geom.Vec2{}, 1)
	m.Observe(geom.V(0, 350), geom.Vec2{}, 2)
	m.Observe(geom.V(0, 300), geom.Vec2{}, 3) // a bounce back up

	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("expected descent 0.5, got %f", m.Value())
	}
}
