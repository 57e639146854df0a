package engine

import (
	"math"

	"github.com/san-kum/pegfall/internal/geom"
)

// Manifold describes one contact between the ball and a static body.
// Normal points from the static body toward the ball, i.e. the push-out
// direction; Depth is the penetration along it.
type Manifold struct {
	Body   *Body
	Normal geom.Vec2
	Depth  float64
}

// collideBall computes the contact manifold between a ball circle and a
// static body, with an extra detection margin so grazing contacts still
// register. Returns ok=false when the shapes are separated by more than
// the margin.
func collideBall(ballPos geom.Vec2, ballR float64, s *Body, margin float64) (Manifold, bool) {
	switch s.Shape {
	case ShapeCircle:
		return circleCircle(ballPos, ballR, s, margin)
	case ShapeSegment:
		return circleSegment(ballPos, ballR, s, margin)
	default:
		return Manifold{}, false
	}
}

func circleCircle(ballPos geom.Vec2, ballR float64, s *Body, margin float64) (Manifold, bool) {
	d := ballPos.Sub(s.Pos)
	distSq := d.MagSq()
	reach := ballR + s.Radius + margin

	if distSq > reach*reach {
		return Manifold{}, false
	}

	dist := math.Sqrt(distSq)
	var normal geom.Vec2
	if dist > 1e-9 {
		normal = d.Scale(1 / dist)
	} else {
		// concentric; push straight up so the ball rolls off the peg
		normal = geom.V(0, -1)
	}

	return Manifold{
		Body:   s,
		Normal: normal,
		Depth:  ballR + s.Radius - dist,
	}, true
}

func circleSegment(ballPos geom.Vec2, ballR float64, s *Body, margin float64) (Manifold, bool) {
	closest := closestPointOnSegment(ballPos, s.A, s.B)
	d := ballPos.Sub(closest)
	distSq := d.MagSq()
	reach := ballR + s.Radius + margin

	if distSq > reach*reach {
		return Manifold{}, false
	}

	dist := math.Sqrt(distSq)
	var normal geom.Vec2
	if dist > 1e-9 {
		normal = d.Scale(1 / dist)
	} else {
		normal = s.B.Sub(s.A).Perp().Normalize()
		if normal.IsZero() {
			normal = geom.V(0, -1)
		}
	}

	return Manifold{
		Body:   s,
		Normal: normal,
		Depth:  ballR + s.Radius - dist,
	}, true
}

func closestPointOnSegment(p, a, b geom.Vec2) geom.Vec2 {
	ab := b.Sub(a)
	abLenSq := ab.MagSq()
	if abLenSq == 0 {
		return a
	}
	t := geom.Clamp(p.Sub(a).Dot(ab)/abLenSq, 0, 1)
	return a.Add(ab.Scale(t))
}

// circleRectOverlap reports whether a circle intersects an axis-aligned
// rect; used for bucket sensor regions.
func circleRectOverlap(center geom.Vec2, r float64, min, max geom.Vec2) bool {
	cx := geom.Clamp(center.X, min.X, max.X)
	cy := geom.Clamp(center.Y, min.Y, max.Y)
	return center.DistSq(geom.V(cx, cy)) <= r*r
}
