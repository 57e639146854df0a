// Package metrics provides per-tick kinematic observations over a drop.
package metrics

import "github.com/san-kum/pegfall/internal/geom"

type Metric interface {
	Name() string
	Observe(pos, vel geom.Vec2, tick int)
	Value() float64
	Reset()
}

// MaxSpeed tracks the peak ball speed over a drop.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(pos, vel geom.Vec2, tick int) {
	if s := vel.Mag(); s > m.max {
		m.max = s
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// PathLength accumulates the distance traveled.
type PathLength struct {
	last     geom.Vec2
	haveLast bool
	total    float64
}

func NewPathLength() *PathLength { return &PathLength{} }

func (m *PathLength) Name() string { return "path_length" }

func (m *PathLength) Observe(pos, vel geom.Vec2, tick int) {
	if m.haveLast {
		m.total += pos.Dist(m.last)
	}
	m.last = pos
	m.haveLast = true
}

func (m *PathLength) Value() float64 { return m.total }

func (m *PathLength) Reset() {
	m.total = 0
	m.haveLast = false
}

// Descent tracks the deepest board fraction reached, 0 at the top and 1
// at the floor.
type Descent struct {
	height float64
	max    float64
}

func NewDescent(boardHeight float64) *Descent {
	return &Descent{height: boardHeight}
}

func (m *Descent) Name() string { return "descent" }

func (m *Descent) Observe(pos, vel geom.Vec2, tick int) {
	if m.height <= 0 {
		return
	}
	if f := pos.Y / m.height; f > m.max {
		m.max = f
	}
}

func (m *Descent) Value() float64 { return m.max }
func (m *Descent) Reset()         { m.max = 0 }
