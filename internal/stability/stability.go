// Package stability detects pathological ball motion (stall, jitter,
// corner wedging, boundary violation) from observable simulation state
// and applies minimal deterministic corrections, so a dropped ball always
// reaches a bucket in bounded time.
package stability

import (
	"math"

	"github.com/san-kum/pegfall/internal/engine"
	"github.com/san-kum/pegfall/internal/geom"
)

// Config holds the detector thresholds and correction magnitudes. The
// defaults are tuned for a 60 tick/s world in board pixel units.
type Config struct {
	Width   float64
	Height  float64
	SettleY float64 // detectors are skipped below this height

	StallSpeed    float64 // speed below which the ball counts as stalled
	NearZeroSpeed float64 // lower bound of the jitter band
	JitterSpeed   float64 // upper bound of the jitter band

	JitterTicks int
	StallTicks  int
	CornerTicks int

	WallMargin float64

	JitterDamping float64
	MinFallSpeed  float64

	NudgeMin     float64
	NudgeMax     float64
	DownwardBias float64

	CornerImpulse float64
	CornerDrop    float64
	CornerOffset  float64

	ClampInset      float64
	DisplacementEps float64

	OverlapCorrection float64 // >1 to slightly over-correct push-out
	EscapeSpeed       float64
	EscapeBoost       float64
}

func DefaultStabilityConfig(width, height, settleY float64) Config {
	return Config{
		Width:   width,
		Height:  height,
		SettleY: settleY,

		StallSpeed:    12.0,
		NearZeroSpeed: 2.0,
		JitterSpeed:   25.0,

		JitterTicks: 8,
		StallTicks:  40, // ~0.67s at 60 ticks/s
		CornerTicks: 60,

		WallMargin: 18.0,

		JitterDamping: 0.6,
		MinFallSpeed:  15.0,

		NudgeMin:     20.0,
		NudgeMax:     60.0,
		DownwardBias: 0.35,

		CornerImpulse: 80.0,
		CornerDrop:    30.0,
		CornerOffset:  6.0,

		ClampInset:      2.0,
		DisplacementEps: 0.5,

		OverlapCorrection: 1.2,
		EscapeSpeed:       30.0,
		EscapeBoost:       25.0,
	}
}

// Action labels a corrective intervention.
type Action int

const (
	ActionJitter Action = iota
	ActionStall
	ActionCorner
	ActionClamp
	ActionEscape
)

func (a Action) String() string {
	switch a {
	case ActionJitter:
		return "jitter"
	case ActionStall:
		return "stall"
	case ActionCorner:
		return "corner"
	case ActionClamp:
		return "clamp"
	case ActionEscape:
		return "escape"
	}
	return "unknown"
}

// Correction records one applied intervention; the sequence is fully
// determined by the drop seed and tick history.
type Correction struct {
	Tick     int
	Action   Action
	Position geom.Vec2
	Velocity geom.Vec2
}

// Counts aggregates interventions by action.
type Counts struct {
	Jitter int
	Stall  int
	Corner int
	Clamp  int
	Escape int
}

func (c Counts) Total() int {
	return c.Jitter + c.Stall + c.Corner + c.Clamp + c.Escape
}

// Controller is the per-ball diagnostic pass. Scoped to one ball's
// lifetime: Reset must be called whenever a ball is created.
type Controller struct {
	cfg  Config
	seed int64
	tick int

	stallFrames  int
	jitterFrames int
	cornerFrames int

	lastPos  geom.Vec2
	lastVel  geom.Vec2
	haveLast bool

	counts Counts
	log    []Correction
}

func NewController(cfg Config, seed int64) *Controller {
	return &Controller{cfg: cfg, seed: seed}
}

// Reset zeroes all counters and history and rebinds the drop seed.
func (c *Controller) Reset(seed int64) {
	c.seed = seed
	c.tick = 0
	c.stallFrames = 0
	c.jitterFrames = 0
	c.cornerFrames = 0
	c.haveLast = false
	c.counts = Counts{}
	c.log = c.log[:0]
}

// Frames returns the current detector counters (always >= 0).
func (c *Controller) Frames() (stall, jitter, corner int) {
	return c.stallFrames, c.jitterFrames, c.cornerFrames
}

func (c *Controller) Counts() Counts {
	return c.counts
}

// Corrections returns the intervention log for the active drop.
func (c *Controller) Corrections() []Correction {
	return c.log
}

// Tick runs one diagnostic pass over the world's ball. Call once per
// step while a ball exists and the session is active.
func (c *Controller) Tick(w *engine.World) {
	ball := w.Ball()
	if ball == nil {
		return
	}

	c.tick++
	pos := ball.Pos
	vel := ball.Vel
	speed := vel.Mag()

	if pos.Y < c.cfg.SettleY {
		c.detectJitter(w, vel, speed)
		c.detectStall(w, pos, speed)
		c.detectCorner(w, pos, speed)
		c.resolveOverlaps(w)
	}

	// cheap safety net, independent of the detectors
	c.clampBounds(w)

	c.lastPos = w.Position()
	c.lastVel = w.Velocity()
	c.haveLast = true
}

// detectJitter watches for rapid low-amplitude velocity sign flips
// without net progress: speed inside the jitter band and either
// component changing sign since the previous tick.
func (c *Controller) detectJitter(w *engine.World, vel geom.Vec2, speed float64) {
	flipped := c.haveLast && (signFlip(vel.X, c.lastVel.X) || signFlip(vel.Y, c.lastVel.Y))

	if speed < c.cfg.JitterSpeed && speed > c.cfg.NearZeroSpeed && flipped {
		c.jitterFrames++
	} else if c.jitterFrames > 0 {
		c.jitterFrames--
	}

	if c.jitterFrames <= c.cfg.JitterTicks {
		return
	}

	v := vel.Scale(c.cfg.JitterDamping)
	if v.Y < c.cfg.MinFallSpeed {
		v.Y = c.cfg.MinFallSpeed // force continued downward progress
	}
	w.SetVelocity(v)
	c.jitterFrames = 0
	c.counts.Jitter++
	c.record(ActionJitter, w)
}

// detectStall counts consecutive low-speed ticks. Decay is faster than
// growth so brief slow passes are distinguished from genuine stalls;
// near-total immobility adds an extra penalty so true traps resolve
// faster than slow creep.
func (c *Controller) detectStall(w *engine.World, pos geom.Vec2, speed float64) {
	if speed < c.cfg.StallSpeed {
		c.stallFrames++
		if c.haveLast && pos.Dist(c.lastPos) < c.cfg.DisplacementEps {
			c.stallFrames++
		}
	} else {
		c.stallFrames -= 2
		if c.stallFrames < 0 {
			c.stallFrames = 0
		}
	}

	if c.stallFrames <= c.cfg.StallTicks {
		return
	}

	c.applyNudge(w)
	c.stallFrames = 0
}

// applyNudge perturbs the ball with a seeded, reproducible impulse drawn
// from a fixed magnitude range and biased downward so corrections cannot
// indefinitely delay termination.
func (c *Controller) applyNudge(w *engine.World) {
	r := nudgeRand(c.seed, uint64(c.tick))
	mag := c.cfg.NudgeMin + r.Float64()*(c.cfg.NudgeMax-c.cfg.NudgeMin)
	angle := r.Float64() * 2 * math.Pi

	v := geom.V(math.Cos(angle)*mag, math.Sin(angle)*mag)
	v.Y += mag * c.cfg.DownwardBias

	w.SetVelocity(w.Velocity().Add(v))
	c.counts.Stall++
	c.record(ActionStall, w)
}

// detectCorner watches for the ball lodged near a side wall at low
// speed; escape is a fixed impulse directed purely by which wall is
// nearer, not seeded.
func (c *Controller) detectCorner(w *engine.World, pos geom.Vec2, speed float64) {
	nearWall := pos.X < c.cfg.WallMargin || pos.X > c.cfg.Width-c.cfg.WallMargin

	if nearWall && speed < c.cfg.StallSpeed*1.5 {
		c.cornerFrames++
	} else if c.cornerFrames > 0 {
		c.cornerFrames--
	}

	if c.cornerFrames <= c.cfg.CornerTicks {
		return
	}

	dir := 1.0
	if pos.X > c.cfg.Width/2 {
		dir = -1.0
	}
	w.SetVelocity(geom.V(dir*c.cfg.CornerImpulse, c.cfg.CornerDrop))
	w.SetPosition(pos.Add(geom.V(dir*c.cfg.CornerOffset, 0)))
	c.cornerFrames = 0
	c.counts.Corner++
	c.record(ActionCorner, w)
}

// resolveOverlaps pushes the ball out of any penetrating non-sensor
// contact, slightly over-correcting to avoid immediate re-penetration,
// and boosts a slow ball along the contact normal. This prevents visible
// penetration artifacts rather than long-term stalls.
func (c *Controller) resolveOverlaps(w *engine.World) {
	ball := w.Ball()
	if ball == nil {
		return
	}

	for _, contact := range w.ActiveContacts() {
		if contact.Body.Sensor || contact.Depth <= 0 {
			continue
		}

		w.SetPosition(w.Position().Add(contact.Normal.Scale(contact.Depth * c.cfg.OverlapCorrection)))

		if w.Velocity().Mag() < c.cfg.EscapeSpeed {
			boost := contact.Normal.Scale(c.cfg.EscapeBoost)
			boost.Y += c.cfg.EscapeBoost * c.cfg.DownwardBias
			w.SetVelocity(w.Velocity().Add(boost))
			c.counts.Escape++
			c.record(ActionEscape, w)
		}
	}
}

// clampBounds keeps the ball center inside the left/right/top play
// boundary with a small inward offset. Runs every tick.
func (c *Controller) clampBounds(w *engine.World) {
	ball := w.Ball()
	if ball == nil {
		return
	}

	pos := ball.Pos
	r := ball.Radius
	clamped := pos

	if clamped.X-r < 0 {
		clamped.X = r + c.cfg.ClampInset
	}
	if clamped.X+r > c.cfg.Width {
		clamped.X = c.cfg.Width - r - c.cfg.ClampInset
	}
	if clamped.Y-r < 0 {
		clamped.Y = r + c.cfg.ClampInset
	}

	if clamped != pos {
		w.SetPosition(clamped)
		c.counts.Clamp++
		c.record(ActionClamp, w)
	}
}

func (c *Controller) record(a Action, w *engine.World) {
	c.log = append(c.log, Correction{
		Tick:     c.tick,
		Action:   a,
		Position: w.Position(),
		Velocity: w.Velocity(),
	})
}

func signFlip(a, b float64) bool {
	return a*b < 0
}
