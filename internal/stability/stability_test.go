package stability_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pegfall/internal/engine"
	"github.com/san-kum/pegfall/internal/geom"
	"github.com/san-kum/pegfall/internal/stability"
)

const (
	boardWidth  = 600.0
	boardHeight = 700.0
	settleY     = 570.0
	ballRadius  = 7.0
	tickMillis  = 1000.0 / 60.0
)

// newWorld builds an empty world with a ball placed by hand. Specs that
// need contacts call w.Step; the rest drive the controller directly so
// each detector sees exactly the motion pattern under test.
func newWorld(pos, vel geom.Vec2) *engine.World {
	w := engine.NewWorld()
	ball := engine.NewBall(pos, ballRadius)
	ball.Vel = vel
	w.AddBody(ball)
	return w
}

func newController(seed int64) *stability.Controller {
	return stability.NewController(stability.DefaultStabilityConfig(boardWidth, boardHeight, settleY), seed)
}

var _ = Describe("Controller", func() {
	var cfg stability.Config

	BeforeEach(func() {
		cfg = stability.DefaultStabilityConfig(boardWidth, boardHeight, settleY)
	})

	Describe("jitter detection", func() {
		It("damps sustained low-amplitude oscillation and forces descent", func() {
			w := newWorld(geom.V(300, 300), geom.V(10, 0))
			c := newController(1)

			sign := 1.0
			for i := 0; i < cfg.JitterTicks+4; i++ {
				w.SetVelocity(geom.V(sign*10, 0))
				sign = -sign
				c.Tick(w)
				if c.Counts().Jitter > 0 {
					break
				}
			}

			Expect(c.Counts().Jitter).To(Equal(1))
			Expect(w.Velocity().Y).To(BeNumerically(">=", cfg.MinFallSpeed))
			Expect(w.Velocity().Mag()).To(BeNumerically("<", cfg.JitterSpeed+cfg.MinFallSpeed))
		})

		It("ignores oscillation above the jitter band", func() {
			w := newWorld(geom.V(300, 300), geom.V(0, 0))
			c := newController(1)

			sign := 1.0
			for i := 0; i < cfg.JitterTicks*4; i++ {
				// fast zig-zag, well above JitterSpeed
				w.SetVelocity(geom.V(sign*200, 50))
				sign = -sign
				c.Tick(w)
			}

			Expect(c.Counts().Jitter).To(BeZero())
		})

		It("ignores near-zero velocity noise", func() {
			w := newWorld(geom.V(300, 300), geom.V(0, 0))
			c := newController(1)

			sign := 1.0
			for i := 0; i < cfg.JitterTicks*4; i++ {
				w.SetVelocity(geom.V(sign*0.5, 0))
				sign = -sign
				c.Tick(w)
			}

			Expect(c.Counts().Jitter).To(BeZero())
		})
	})

	Describe("stall detection", func() {
		It("nudges a ball that stops making progress", func() {
			w := newWorld(geom.V(300, 300), geom.V(0, 1))
			c := newController(7)

			// Immobile and slow: the counter grows by 2 per tick.
			for i := 0; i <= cfg.StallTicks; i++ {
				c.Tick(w)
				if c.Counts().Stall > 0 {
					break
				}
			}

			Expect(c.Counts().Stall).To(Equal(1))
			Expect(w.Velocity()).NotTo(Equal(geom.V(0, 1)), "nudge should perturb the stalled velocity")
		})

		It("replays the identical correction sequence for the same seed", func() {
			run := func(seed int64) []stability.Correction {
				w := newWorld(geom.V(300, 300), geom.V(0, 1))
				c := newController(seed)
				for i := 0; i < 120; i++ {
					w.SetVelocity(geom.V(0, 1))
					w.SetPosition(geom.V(300, 300))
					c.Tick(w)
				}
				out := make([]stability.Correction, len(c.Corrections()))
				copy(out, c.Corrections())
				return out
			}

			a := run(99)
			b := run(99)
			Expect(a).To(Equal(b))
			Expect(a).NotTo(BeEmpty())

			other := run(100)
			Expect(other).NotTo(Equal(a))
		})

		It("lets a brief slow pass decay without intervention", func() {
			w := newWorld(geom.V(300, 300), geom.V(0, 1))
			c := newController(7)

			for cycle := 0; cycle < 20; cycle++ {
				// a few slow ticks, then fast ones that decay the counter
				for i := 0; i < 4; i++ {
					w.SetVelocity(geom.V(0, 1))
					w.SetPosition(geom.V(300, 300+float64(cycle)))
					c.Tick(w)
				}
				for i := 0; i < 6; i++ {
					w.SetVelocity(geom.V(0, 100))
					w.SetPosition(geom.V(300, 310+float64(cycle)))
					c.Tick(w)
				}
			}

			Expect(c.Counts().Stall).To(BeZero())
		})
	})

	Describe("corner escape", func() {
		It("pushes a ball wedged at the left wall toward the center", func() {
			w := newWorld(geom.V(10, 300), geom.V(0, 1))
			c := newController(3)

			for i := 0; i < cfg.CornerTicks+2; i++ {
				w.SetVelocity(geom.V(0, 1))
				w.SetPosition(geom.V(10, 300))
				c.Tick(w)
			}

			Expect(c.Counts().Corner).To(BeNumerically(">=", 1))

			var corner *stability.Correction
			for i := range c.Corrections() {
				if c.Corrections()[i].Action == stability.ActionCorner {
					corner = &c.Corrections()[i]
					break
				}
			}
			Expect(corner).NotTo(BeNil())
			Expect(corner.Velocity.X).To(BeNumerically(">", 0), "escape should point away from the left wall")
			Expect(corner.Velocity.Y).To(BeNumerically(">", 0), "escape should keep descending")
		})

		It("pushes a ball wedged at the right wall toward the center", func() {
			x := boardWidth - 10
			w := newWorld(geom.V(x, 300), geom.V(0, 1))
			c := newController(3)

			for i := 0; i < cfg.CornerTicks+2; i++ {
				w.SetVelocity(geom.V(0, 1))
				w.SetPosition(geom.V(x, 300))
				c.Tick(w)
			}

			var corner *stability.Correction
			for i := range c.Corrections() {
				if c.Corrections()[i].Action == stability.ActionCorner {
					corner = &c.Corrections()[i]
					break
				}
			}
			Expect(corner).NotTo(BeNil())
			Expect(corner.Velocity.X).To(BeNumerically("<", 0), "escape should point away from the right wall")
		})

		It("does not trigger for a fast ball near the wall", func() {
			w := newWorld(geom.V(10, 300), geom.V(0, 200))
			c := newController(3)

			for i := 0; i < cfg.CornerTicks*2; i++ {
				w.SetVelocity(geom.V(0, 200))
				w.SetPosition(geom.V(10, 300))
				c.Tick(w)
			}

			Expect(c.Counts().Corner).To(BeZero())
		})
	})

	Describe("bounds clamping", func() {
		It("moves an escaped ball back inside the left boundary", func() {
			w := newWorld(geom.V(-5, 620), geom.V(0, 1))
			c := newController(1)

			c.Tick(w)

			Expect(c.Counts().Clamp).To(Equal(1))
			Expect(w.Position().X).To(Equal(ballRadius + cfg.ClampInset))

			// Already inside: no second clamp.
			c.Tick(w)
			Expect(c.Counts().Clamp).To(Equal(1))
		})

		It("clamps the top and right boundaries", func() {
			w := newWorld(geom.V(boardWidth+20, -10), geom.V(0, 1))
			c := newController(1)

			c.Tick(w)

			pos := w.Position()
			Expect(pos.X).To(Equal(boardWidth - ballRadius - cfg.ClampInset))
			Expect(pos.Y).To(Equal(ballRadius + cfg.ClampInset))
		})

		It("still clamps in the settle region where detectors are off", func() {
			w := newWorld(geom.V(-5, settleY+50), geom.V(0, 1))
			c := newController(1)

			c.Tick(w)

			Expect(c.Counts().Clamp).To(Equal(1))
			counts := c.Counts()
			Expect(counts.Total()).To(Equal(counts.Clamp))
		})
	})

	Describe("overlap resolution", func() {
		It("boosts a slow ball out of a penetrating contact", func() {
			w := engine.NewWorld()
			peg := engine.NewCircleStatic(engine.KindPeg, 0, geom.V(300, 310), 4, 0.55, 0.05)
			w.AddBody(peg)

			ball := engine.NewBall(geom.V(300, 302), ballRadius)
			w.AddBody(ball)

			c := newController(5)

			w.Step(tickMillis)
			c.Tick(w)

			Expect(c.Counts().Escape).To(BeNumerically(">=", 1))
			Expect(w.Velocity().Mag()).To(BeNumerically(">", 0))
		})
	})

	Describe("settle region", func() {
		It("leaves a slow ball alone once it is settling into a bucket", func() {
			w := newWorld(geom.V(300, settleY+40), geom.V(0, 1))
			c := newController(1)

			for i := 0; i < 200; i++ {
				w.SetVelocity(geom.V(0, 1))
				c.Tick(w)
			}

			Expect(c.Counts().Total()).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("clears counters, frames and the correction log", func() {
			w := newWorld(geom.V(300, 300), geom.V(0, 1))
			c := newController(7)

			for i := 0; i < 120; i++ {
				w.SetVelocity(geom.V(0, 1))
				w.SetPosition(geom.V(300, 300))
				c.Tick(w)
			}
			Expect(c.Counts().Total()).To(BeNumerically(">", 0))

			c.Reset(42)

			Expect(c.Counts().Total()).To(BeZero())
			Expect(c.Corrections()).To(BeEmpty())
			stall, jitter, corner := c.Frames()
			Expect(stall).To(BeZero())
			Expect(jitter).To(BeZero())
			Expect(corner).To(BeZero())
		})
	})
})
