// Package session owns the drop lifecycle: the Idle -> Dropping ->
// Landed state machine, collision classification, and the public event
// contract exposed to host applications.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/san-kum/pegfall/internal/board"
	"github.com/san-kum/pegfall/internal/engine"
	"github.com/san-kum/pegfall/internal/geom"
	"github.com/san-kum/pegfall/internal/metrics"
	"github.com/san-kum/pegfall/internal/stability"
)

const (
	// TickRate is the fixed simulation rate in ticks per second.
	TickRate = 60.0

	// TickMillis is the step size hosts should pass to Step.
	TickMillis = 1000.0 / TickRate

	baseBallRadius   = 7.0
	initialDropSpeed = 60.0 // px/s, scaled by the class speed multiplier
	dropY            = 20.0
	maxDropNudge     = 8.0 // seeded horizontal jitter applied at drop
)

var (
	ErrNilBoard    = errors.New("session: nil board")
	ErrNotDropping = errors.New("session: no ball in flight")
)

type State int

const (
	Idle State = iota
	Dropping
	Landed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dropping:
		return "dropping"
	case Landed:
		return "landed"
	}
	return "unknown"
}

// Callbacks is the event contract. Injected once at construction and
// engine-owned, so multiple engines coexist without interference. All
// callbacks fire synchronously inside Step and must not re-enter the
// engine.
type Callbacks struct {
	OnBallDropped func()
	OnPegHit      func(peg board.PegID, hitCount int)
	OnBucketLand  func(bucket board.Bucket, totalHits int)
}

// Observer receives the ball state after every simulated tick.
type Observer func(tick int, pos, vel geom.Vec2)

// Engine drives one ball per session through the peg field. Single
// threaded and frame driven: the host calls Step from its tick loop, or
// Run to drive headless.
type Engine struct {
	board   *board.Board
	world   *engine.World
	classes ClassTable
	class   BallClass
	cb      Callbacks
	stab    *stability.Controller

	pendingClass string
	hasPending   bool

	state     State
	seed      int64
	tick      int
	pegHits   int
	landed    *board.Bucket
	destroyed bool

	observers []Observer
	metrics   []metrics.Metric
}

// New builds the engine for a board: constructs the physical world from
// the board's static scene and wires the stability controller.
func New(b *board.Board, classes ClassTable, cb Callbacks) (*Engine, error) {
	if b == nil {
		return nil, ErrNilBoard
	}
	if classes == nil {
		classes = DefaultClassTable()
	}

	e := &Engine{
		board:   b,
		world:   engine.NewWorld(),
		classes: classes,
		cb:      cb,
		state:   Idle,
	}

	e.buildWorld()
	e.world.OnBeginContact(e.classifyContact)

	cfg := stability.DefaultStabilityConfig(b.Config.Width, b.Config.Height, b.SettleY)
	e.stab = stability.NewController(cfg, 0)

	e.applyClass(DefaultClass)
	return e, nil
}

const (
	wallRestitution      = 0.4
	wallFriction         = 0.08
	deflectorRestitution = 0.5
	deflectorFriction    = 0.05
	dividerRestitution   = 0.3
	dividerFriction      = 0.1
)

func (e *Engine) buildWorld() {
	for _, s := range e.board.Walls {
		e.world.AddBody(engine.NewSegmentStatic(engine.KindWall, s.A, s.B, s.Thickness, wallRestitution, wallFriction))
	}
	for _, s := range e.board.Deflectors {
		e.world.AddBody(engine.NewSegmentStatic(engine.KindDeflector, s.A, s.B, s.Thickness, deflectorRestitution, deflectorFriction))
	}
	for i, p := range e.board.Pegs {
		e.world.AddBody(engine.NewCircleStatic(engine.KindPeg, i, p.Pos, p.Radius, p.Restitution, p.Friction))
	}
	for _, s := range e.board.Dividers {
		e.world.AddBody(engine.NewSegmentStatic(engine.KindDivider, s.A, s.B, s.Thickness, dividerRestitution, dividerFriction))
	}
	for i, b := range e.board.Buckets {
		e.world.AddBody(engine.NewSensorRect(i, b.Min, b.Max))
	}
}

// Drop starts a session at the requested x position with a
// millisecond-resolution nonce as the drop seed. A no-op unless Idle.
func (e *Engine) Drop(x float64) {
	e.DropSeeded(x, time.Now().UnixMilli())
}

// DropSeeded starts a session with an explicit drop seed; the seed
// fully determines the corrective sequence, making drops replayable.
// Invalid operations (ball already in flight, destroyed engine) are
// silent no-ops because the UI can race input events.
func (e *Engine) DropSeeded(x float64, seed int64) {
	if e.destroyed || e.state != Idle || e.world.Ball() != nil {
		return
	}

	x = e.board.ClampDropX(x)

	ball := engine.NewBall(geom.V(x, dropY), baseBallRadius*e.class.Scale)
	ball.Mass = e.class.Mass
	ball.Restitution = e.class.Restitution
	ball.Friction = e.class.Friction
	ball.FrictionAir = e.class.FrictionAir
	ball.FrictionStatic = e.class.FrictionStatic
	ball.Slop = e.class.Slop

	r := rand.New(rand.NewPCG(uint64(seed), 0))
	nudge := (r.Float64()*2 - 1) * maxDropNudge
	ball.Vel = geom.V(nudge, initialDropSpeed*e.class.SpeedMultiplier)

	e.world.AddBody(ball)
	e.stab.Reset(seed)
	e.seed = seed
	e.tick = 0
	e.pegHits = 0
	e.landed = nil
	e.state = Dropping

	for _, m := range e.metrics {
		m.Reset()
	}

	if e.cb.OnBallDropped != nil {
		e.cb.OnBallDropped()
	}
}

// Step advances the session by one fixed tick. Must not be called
// re-entrantly; callbacks fire synchronously inside.
func (e *Engine) Step(dtMillis float64) {
	if e.destroyed || e.state != Dropping {
		return
	}

	e.tick++
	e.world.Step(dtMillis)

	// landing inside Step removes the ball; skip the diagnostic pass
	if e.state != Dropping || e.world.Ball() == nil {
		return
	}

	e.stab.Tick(e.world)

	pos, vel := e.world.Position(), e.world.Velocity()
	for _, m := range e.metrics {
		m.Observe(pos, vel, e.tick)
	}
	for _, o := range e.observers {
		o(e.tick, pos, vel)
	}
}

// classifyContact dispatches each new contact: peg hits are scored and
// non-terminal, the first bucket sensor contact while Dropping lands
// the ball. Pure dispatch; corrections live in the stability controller.
func (e *Engine) classifyContact(c engine.Contact) {
	switch c.Body.Kind {
	case engine.KindPeg:
		if e.state != Dropping {
			return
		}
		e.pegHits++
		if e.cb.OnPegHit != nil {
			e.cb.OnPegHit(e.board.Pegs[c.Body.Tag].ID, e.pegHits)
		}

	case engine.KindBucket:
		if e.state != Dropping {
			return
		}
		bucket := e.board.Buckets[c.Body.Tag]
		e.landed = &bucket
		e.state = Landed
		e.world.RemoveBody(e.world.Ball())
		if e.cb.OnBucketLand != nil {
			e.cb.OnBucketLand(bucket, e.pegHits)
		}
	}
}

// Reset returns the session to Idle, clearing any residual ball and
// stability state, and applies a deferred class change. Safe to call at
// any time between steps.
func (e *Engine) Reset() {
	if e.destroyed {
		return
	}
	if ball := e.world.Ball(); ball != nil {
		e.world.RemoveBody(ball)
	}
	e.state = Idle
	e.landed = nil
	e.pegHits = 0
	e.tick = 0
	e.stab.Reset(0)
	if e.hasPending {
		e.applyClass(e.pendingClass)
		e.hasPending = false
	}
}

// SetClass changes the active ball class. Mid-Dropping the change is
// deferred and applied atomically on the next transition to Idle; the
// gravity scale of a live ball is never mutated.
func (e *Engine) SetClass(id string) {
	if e.destroyed {
		return
	}
	if e.state == Dropping {
		e.pendingClass = id
		e.hasPending = true
		return
	}
	e.applyClass(id)
}

func (e *Engine) applyClass(id string) {
	e.class = e.classes.Lookup(id)
	e.world.SetGravityScale(e.class.SpeedMultiplier)
}

// Destroy tears the session down. Further operations are no-ops; the
// expected lifecycle is destroy-then-rebuild per play session.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	if ball := e.world.Ball(); ball != nil {
		e.world.RemoveBody(ball)
	}
	e.state = Idle
	e.destroyed = true
}

func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

func (e *Engine) AddMetric(m metrics.Metric) {
	e.metrics = append(e.metrics, m)
}

func (e *Engine) State() State                     { return e.state }
func (e *Engine) Board() *board.Board              { return e.board }
func (e *Engine) Class() BallClass                 { return e.class }
func (e *Engine) Seed() int64                      { return e.seed }
func (e *Engine) Tick() int                        { return e.tick }
func (e *Engine) PegHits() int                     { return e.pegHits }
func (e *Engine) Bucket() *board.Bucket            { return e.landed }
func (e *Engine) Position() geom.Vec2              { return e.world.Position() }
func (e *Engine) Velocity() geom.Vec2              { return e.world.Velocity() }
func (e *Engine) Stability() *stability.Controller { return e.stab }

// DropResult summarizes a finished (or abandoned) drop.
type DropResult struct {
	Landed      bool
	Bucket      board.Bucket
	Multiplier  float64
	PegHits     int
	Ticks       int
	Seed        int64
	Corrections stability.Counts
}

// Run drives the active drop headless until it lands or the tick budget
// is exhausted, checking ctx each tick. Hosts with their own render
// loop call Step instead.
func (e *Engine) Run(ctx context.Context, maxTicks int) (*DropResult, error) {
	if e.state != Dropping {
		return nil, ErrNotDropping
	}
	if maxTicks <= 0 {
		return nil, fmt.Errorf("session: max ticks must be positive, got %d", maxTicks)
	}

	for e.state == Dropping && e.tick < maxTicks {
		select {
		case <-ctx.Done():
			return e.result(), ctx.Err()
		default:
		}
		e.Step(TickMillis)
	}

	return e.result(), nil
}

func (e *Engine) result() *DropResult {
	res := &DropResult{
		Landed:      e.state == Landed,
		PegHits:     e.pegHits,
		Ticks:       e.tick,
		Seed:        e.seed,
		Corrections: e.stab.Counts(),
	}
	if e.landed != nil {
		res.Bucket = *e.landed
		res.Multiplier = e.landed.Multiplier
	}
	return res
}
