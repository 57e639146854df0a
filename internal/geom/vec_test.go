package geom

import (
	"math"
	"testing"
)

func TestVecArithmetic(t *testing.T) {
	a := V(3, 4)
	b := V(1, -2)

	if got := a.Add(b); got != V(4, 2) {
		t.Errorf("expected (4,2), got %v", got)
	}

	if got := a.Sub(b); got != V(2, 6) {
		t.Errorf("expected (2,6), got %v", got)
	}

	if got := a.Scale(2); got != V(6, 8) {
		t.Errorf("expected (6,8), got %v", got)
	}

	if got := a.Dot(b); got != -5 {
		t.Errorf("expected dot -5, got %f", got)
	}
}

func TestVecMag(t *testing.T) {
	v := V(3, 4)

	if v.Mag() != 5 {
		t.Errorf("expected magnitude 5, got %f", v.Mag())
	}

	if v.MagSq() != 25 {
		t.Errorf("expected squared magnitude 25, got %f", v.MagSq())
	}

	if d := v.Dist(V(0, 0)); d != 5 {
		t.Errorf("expected distance 5, got %f", d)
	}
}

func TestVecNormalize(t *testing.T) {
	n := V(10, 0).Normalize()
	if n != V(1, 0) {
		t.Errorf("expected (1,0), got %v", n)
	}

	n = V(3, 4).Normalize()
	if math.Abs(n.Mag()-1.0) > 1e-12 {
		t.Errorf("expected unit length, got %f", n.Mag())
	}

	if got := V(0, 0).Normalize(); !got.IsZero() {
		t.Errorf("expected zero vector unchanged, got %v", got)
	}
}

func TestVecPerp(t *testing.T) {
	p := V(1, 0).Perp()
	if p != V(0, 1) {
		t.Errorf("expected (0,1), got %v", p)
	}

	v := V(2, 3)
	if v.Dot(v.Perp()) != 0 {
		t.Errorf("perp not orthogonal: %v", v.Perp())
	}
}

func TestVecClampMag(t *testing.T) {
	v := V(30, 40)

	clamped := v.ClampMag(5)
	if math.Abs(clamped.Mag()-5.0) > 1e-12 {
		t.Errorf("expected magnitude 5, got %f", clamped.Mag())
	}

	// Direction preserved.
	if math.Abs(clamped.X/clamped.Y-v.X/v.Y) > 1e-12 {
		t.Errorf("direction changed: %v vs %v", clamped, v)
	}

	// Under the limit vectors pass through unchanged.
	if got := V(1, 1).ClampMag(5); got != V(1, 1) {
		t.Errorf("expected unchanged, got %v", got)
	}

	if got := V(0, 0).ClampMag(5); !got.IsZero() {
		t.Errorf("expected zero unchanged, got %v", got)
	}
}

func TestVecIsValid(t *testing.T) {
	if !V(1, 2).IsValid() {
		t.Error("finite vector reported invalid")
	}

	if (Vec2{X: math.NaN(), Y: 0}).IsValid() {
		t.Error("NaN vector reported valid")
	}

	if (Vec2{X: 0, Y: math.Inf(1)}).IsValid() {
		t.Error("infinite vector reported valid")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		x, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
	}

	for _, c := range cases {
		if got := Clamp(c.x, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", c.x, c.lo, c.hi, got, c.want)
		}
	}
}
