package engine

import (
	"math"

	"github.com/san-kum/pegfall/internal/geom"
)

const (
	// Gravity is the baseline acceleration in px/s^2; the per-session
	// gravity scale multiplies it.
	Gravity = 900.0

	// MaxBallSpeed caps the ball velocity so a single tick can never
	// carry the ball past the smallest peg/ball contact distance
	// (discrete detection would tunnel otherwise).
	MaxBallSpeed = 600.0

	// The dense lattice produces several simultaneous contacts per
	// tick; under-iterating shows visible tunneling and double-counted
	// hits.
	DefaultPositionIterations = 8
	DefaultVelocityIterations = 6

	contactMargin = 0.5
)

// Contact is a ball/static touch reported for one tick.
type Contact struct {
	Body   *Body
	Normal geom.Vec2
	Depth  float64
}

// World owns the bodies and advances the simulation at a fixed tick. It
// has no game-specific logic; collaborators observe and perturb it
// between or during steps.
type World struct {
	gravity            float64
	gravityScale       float64
	positionIterations int
	velocityIterations int

	nextID  int
	statics []*Body
	sensors []*Body
	ball    *Body

	prevTouch map[int]bool
	touch     map[int]bool
	active    []Contact

	onBegin func(Contact)
}

func NewWorld() *World {
	return &World{
		gravity:            Gravity,
		gravityScale:       1.0,
		positionIterations: DefaultPositionIterations,
		velocityIterations: DefaultVelocityIterations,
		prevTouch:          make(map[int]bool),
		touch:              make(map[int]bool),
	}
}

// SetGravityScale changes the session-wide gravity multiplier. This is
// the single pace knob: it applies to the whole world, not per body.
func (w *World) SetGravityScale(s float64) {
	if s > 0 {
		w.gravityScale = s
	}
}

func (w *World) GravityScale() float64 {
	return w.gravityScale
}

// OnBeginContact registers the handler invoked synchronously, inside
// Step, for every new ball/body contact. The handler must not call Step.
func (w *World) OnBeginContact(fn func(Contact)) {
	w.onBegin = fn
}

// AddBody inserts a body into the world and assigns its ID. The single
// non-static body becomes the ball.
func (w *World) AddBody(b *Body) {
	w.nextID++
	b.ID = w.nextID
	switch {
	case !b.Static:
		w.ball = b
	case b.Sensor:
		w.sensors = append(w.sensors, b)
	default:
		w.statics = append(w.statics, b)
	}
}

// RemoveBody removes the ball (static geometry is fixed for the world's
// lifetime). Safe to call when no ball exists.
func (w *World) RemoveBody(b *Body) {
	if b != nil && w.ball == b {
		w.ball = nil
		w.active = w.active[:0]
		clear(w.prevTouch)
		clear(w.touch)
	}
}

func (w *World) Ball() *Body { return w.ball }

func (w *World) Position() geom.Vec2 {
	if w.ball == nil {
		return geom.Vec2{}
	}
	return w.ball.Pos
}

func (w *World) Velocity() geom.Vec2 {
	if w.ball == nil {
		return geom.Vec2{}
	}
	return w.ball.Vel
}

func (w *World) SetPosition(p geom.Vec2) {
	if w.ball != nil {
		w.ball.Pos = p
	}
}

func (w *World) SetVelocity(v geom.Vec2) {
	if w.ball != nil {
		w.ball.Vel = v
	}
}

// ActiveContacts returns the non-sensor contacts from the last step. The
// slice is reused across steps; callers must not retain it.
func (w *World) ActiveContacts() []Contact {
	return w.active
}

// Step advances the world by dtMillis. Contact handlers fire
// synchronously before Step returns.
func (w *World) Step(dtMillis float64) {
	if w.ball == nil {
		w.active = w.active[:0]
		return
	}

	dt := dtMillis / 1000.0
	ball := w.ball

	// integrate
	ball.Vel.Y += w.gravity * w.gravityScale * dt
	ball.Vel = ball.Vel.Scale(1 - ball.FrictionAir)
	ball.Vel = ball.Vel.ClampMag(MaxBallSpeed)
	ball.Pos = ball.Pos.Add(ball.Vel.Scale(dt))

	w.solvePosition(ball)
	w.collectContacts(ball)
	w.solveVelocity(ball)
	w.fireBeginEvents()
}

func (w *World) solvePosition(ball *Body) {
	for it := 0; it < w.positionIterations; it++ {
		overlapped := false
		for _, s := range w.statics {
			m, ok := collideBall(ball.Pos, ball.Radius, s, 0)
			if !ok || m.Depth <= ball.Slop {
				continue
			}
			ball.Pos = ball.Pos.Add(m.Normal.Scale(m.Depth - ball.Slop))
			overlapped = true
		}
		if !overlapped {
			break
		}
	}
}

func (w *World) collectContacts(ball *Body) {
	w.active = w.active[:0]
	clear(w.touch)

	for _, s := range w.statics {
		m, ok := collideBall(ball.Pos, ball.Radius, s, contactMargin)
		if !ok {
			continue
		}
		w.touch[s.ID] = true
		w.active = append(w.active, Contact{Body: s, Normal: m.Normal, Depth: m.Depth})
	}

	for _, s := range w.sensors {
		if circleRectOverlap(ball.Pos, ball.Radius, s.Min, s.Max) {
			w.touch[s.ID] = true
			w.active = append(w.active, Contact{Body: s, Normal: geom.V(0, -1)})
		}
	}
}

func (w *World) solveVelocity(ball *Body) {
	for it := 0; it < w.velocityIterations; it++ {
		changed := false
		for _, c := range w.active {
			if c.Body.Sensor {
				continue
			}
			vn := ball.Vel.Dot(c.Normal)
			if vn >= 0 {
				continue
			}

			e := ball.Restitution * c.Body.Restitution
			ball.Vel = ball.Vel.Sub(c.Normal.Scale((1 + e) * vn))

			fric := math.Min(ball.Friction+c.Body.Friction, 0.9)
			t := c.Normal.Perp()
			vt := ball.Vel.Dot(t)
			ball.Vel = ball.Vel.Sub(t.Scale(vt * fric))

			changed = true
		}
		if !changed {
			break
		}
	}
}

func (w *World) fireBeginEvents() {
	if w.onBegin != nil {
		for _, c := range w.active {
			if !w.prevTouch[c.Body.ID] {
				w.onBegin(c)
			}
			// the handler may have removed the ball; stop dispatching
			if w.ball == nil {
				break
			}
		}
	}
	w.prevTouch, w.touch = w.touch, w.prevTouch
}
