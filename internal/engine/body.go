package engine

import "github.com/san-kum/pegfall/internal/geom"

type Kind int

const (
	KindWall Kind = iota
	KindDeflector
	KindPeg
	KindDivider
	KindBucket
	KindBall
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindDeflector:
		return "deflector"
	case KindPeg:
		return "peg"
	case KindDivider:
		return "divider"
	case KindBucket:
		return "bucket"
	case KindBall:
		return "ball"
	}
	return "unknown"
}

type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeSegment
	ShapeRect
)

// Body is a physical body in the world. Static bodies are circles
// (pegs), thick segments (walls, deflectors, dividers) or sensor rects
// (buckets). The single dynamic body is the ball, a circle.
type Body struct {
	ID     int
	Kind   Kind
	Tag    int // peg or bucket index, event labeling only
	Shape  ShapeType
	Static bool
	Sensor bool

	// circle
	Pos    geom.Vec2
	Radius float64

	// segment; Radius doubles as the half thickness
	A geom.Vec2
	B geom.Vec2

	// sensor rect
	Min geom.Vec2
	Max geom.Vec2

	// dynamics and materials
	Vel            geom.Vec2
	Mass           float64
	Restitution    float64
	Friction       float64
	FrictionAir    float64
	FrictionStatic float64
	Slop           float64
}

func NewCircleStatic(kind Kind, tag int, pos geom.Vec2, radius, restitution, friction float64) *Body {
	return &Body{
		Kind:        kind,
		Tag:         tag,
		Shape:       ShapeCircle,
		Static:      true,
		Pos:         pos,
		Radius:      radius,
		Restitution: restitution,
		Friction:    friction,
	}
}

func NewSegmentStatic(kind Kind, a, b geom.Vec2, thickness, restitution, friction float64) *Body {
	return &Body{
		Kind:        kind,
		Shape:       ShapeSegment,
		Static:      true,
		A:           a,
		B:           b,
		Radius:      thickness / 2,
		Restitution: restitution,
		Friction:    friction,
	}
}

func NewSensorRect(tag int, min, max geom.Vec2) *Body {
	return &Body{
		Kind:   KindBucket,
		Tag:    tag,
		Shape:  ShapeRect,
		Static: true,
		Sensor: true,
		Min:    min,
		Max:    max,
	}
}

func NewBall(pos geom.Vec2, radius float64) *Body {
	return &Body{
		Kind:        KindBall,
		Shape:       ShapeCircle,
		Pos:         pos,
		Radius:      radius,
		Mass:        1.0,
		Restitution: 0.5,
		Friction:    0.05,
		FrictionAir: 0.015,
		Slop:        0.05,
	}
}

// Speed returns the velocity magnitude.
func (b *Body) Speed() float64 {
	return b.Vel.Mag()
}
