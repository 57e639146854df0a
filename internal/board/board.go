package board

import (
	"fmt"

	"github.com/san-kum/pegfall/internal/geom"
)

const (
	DefaultWidth      = 600.0
	DefaultHeight     = 700.0
	DefaultRows       = 12
	DefaultStartPegs  = 3
	DefaultPegSpacing = 40.0
	DefaultRowSpacing = 34.0
	DefaultPegRadius  = 4.0
	DefaultBuckets    = 5
	DefaultRisk       = "medium"

	wallThickness     = 8.0
	dividerThickness  = 4.0
	deflectorLength   = 16.0
	deflectorDrop     = 9.0 // 16/9 ~ tan(30 deg) face
	deflectorCadence  = 80.0
	latticeTopDefault = 140.0
	funnelTopY        = 30.0
	funnelBottomY     = 100.0
	bucketWellDepth   = 110.0
	sensorTopInset    = 15.0
)

// Config describes the static board geometry. Multipliers may be given
// directly; when empty they are resolved from the Risk payout table.
type Config struct {
	Width       float64
	Height      float64
	Rows        int
	StartPegs   int
	PegSpacing  float64
	RowSpacing  float64
	PegRadius   float64
	LatticeTop  float64
	Buckets     int
	Multipliers []float64
	Risk        string
}

func DefaultBoardConfig() Config {
	return Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Rows:       DefaultRows,
		StartPegs:  DefaultStartPegs,
		PegSpacing: DefaultPegSpacing,
		RowSpacing: DefaultRowSpacing,
		PegRadius:  DefaultPegRadius,
		LatticeTop: latticeTopDefault,
		Buckets:    DefaultBuckets,
		Risk:       DefaultRisk,
	}
}

// PegID identifies a peg by its lattice position, used only for event labeling.
type PegID struct {
	Row int
	Col int
}

func (id PegID) String() string {
	return fmt.Sprintf("r%dc%d", id.Row, id.Col)
}

type Peg struct {
	ID          PegID
	Pos         geom.Vec2
	Radius      float64
	Restitution float64
	Friction    float64
}

// Segment is a static wall piece with a thickness (full width of the slab).
type Segment struct {
	A         geom.Vec2
	B         geom.Vec2
	Thickness float64
}

// Bucket is a terminal sensor region at the bottom of the board.
type Bucket struct {
	Index      int
	Label      string
	Multiplier float64
	Min        geom.Vec2
	Max        geom.Vec2
}

// Board is the fully built static scene. Immutable after New.
type Board struct {
	Config     Config
	Pegs       []Peg
	Walls      []Segment
	Deflectors []Segment
	Dividers   []Segment
	Buckets    []Bucket

	DropMinX float64
	DropMaxX float64
	// SettleY is the height below which the ball is assumed to be
	// settling into a bucket and must not be perturbed.
	SettleY float64
}

// New validates cfg and builds the static scene: boundary and funnel
// walls, the triangular peg lattice, wall deflectors, bucket dividers
// and bucket sensors.
func New(cfg Config) (*Board, error) {
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	b := &Board{
		Config:   cfg,
		DropMinX: cfg.Width * 0.25,
		DropMaxX: cfg.Width * 0.75,
		SettleY:  cfg.Height - bucketWellDepth - 20,
	}

	b.buildWalls()
	b.buildLattice()
	b.buildDeflectors()
	b.buildBucketWell()

	return b, nil
}

func validate(cfg *Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: board %gx%g", ErrBadDimensions, cfg.Width, cfg.Height)
	}
	if cfg.Rows <= 0 {
		return fmt.Errorf("%w: rows %d", ErrBadLattice, cfg.Rows)
	}
	if cfg.StartPegs < 1 {
		return fmt.Errorf("%w: start pegs %d", ErrBadLattice, cfg.StartPegs)
	}
	if cfg.PegSpacing <= 0 || cfg.RowSpacing <= 0 || cfg.PegRadius <= 0 {
		return fmt.Errorf("%w: spacing %g/%g radius %g", ErrBadLattice, cfg.PegSpacing, cfg.RowSpacing, cfg.PegRadius)
	}
	if cfg.LatticeTop <= funnelBottomY {
		cfg.LatticeTop = latticeTopDefault
	}
	if cfg.Buckets < 2 {
		return fmt.Errorf("%w: %d buckets", ErrBadBuckets, cfg.Buckets)
	}
	if len(cfg.Multipliers) == 0 {
		risk := cfg.Risk
		if risk == "" {
			risk = DefaultRisk
		}
		table, err := PayoutTable(risk, cfg.Buckets)
		if err != nil {
			return err
		}
		cfg.Multipliers = table
	}
	if len(cfg.Multipliers) != cfg.Buckets {
		return fmt.Errorf("%w: %d multipliers for %d buckets", ErrBadBuckets, len(cfg.Multipliers), cfg.Buckets)
	}
	for i, m := range cfg.Multipliers {
		if m < 0 {
			return fmt.Errorf("%w: multiplier[%d] = %g", ErrBadBuckets, i, m)
		}
	}
	return nil
}

func (b *Board) buildWalls() {
	w, h := b.Config.Width, b.Config.Height
	b.Walls = []Segment{
		{A: geom.V(0, 0), B: geom.V(0, h), Thickness: wallThickness},
		{A: geom.V(w, 0), B: geom.V(w, h), Thickness: wallThickness},
		{A: geom.V(0, 0), B: geom.V(w, 0), Thickness: wallThickness},
		{A: geom.V(0, h), B: geom.V(w, h), Thickness: wallThickness},
		// funnel walls forming the drop-zone entrance
		{A: geom.V(0, funnelTopY), B: geom.V(w*0.22, funnelBottomY), Thickness: wallThickness},
		{A: geom.V(w, funnelTopY), B: geom.V(w*0.78, funnelBottomY), Thickness: wallThickness},
	}
}

func (b *Board) buildLattice() {
	cfg := b.Config
	total := 0
	for r := 0; r < cfg.Rows; r++ {
		total += cfg.StartPegs + r
	}
	b.Pegs = make([]Peg, 0, total)

	for r := 0; r < cfg.Rows; r++ {
		n := cfg.StartPegs + r
		rowWidth := float64(n-1) * cfg.PegSpacing
		x0 := (cfg.Width - rowWidth) / 2
		y := cfg.LatticeTop + float64(r)*cfg.RowSpacing

		for c := 0; c < n; c++ {
			rest, fric := pegJitter(r, c)
			b.Pegs = append(b.Pegs, Peg{
				ID:          PegID{Row: r, Col: c},
				Pos:         geom.V(x0+float64(c)*cfg.PegSpacing, y),
				Radius:      cfg.PegRadius,
				Restitution: rest,
				Friction:    fric,
			})
		}
	}
}

// buildDeflectors runs as a second geometry pass after the walls. Small
// angled bodies at a fixed cadence along both side walls present a ~30
// degree face outward, so a ball cannot wedge in the acute angle between
// a wall and the nearest peg.
func (b *Board) buildDeflectors() {
	cfg := b.Config
	lo := cfg.LatticeTop + deflectorCadence/4
	hi := cfg.LatticeTop + float64(cfg.Rows-1)*cfg.RowSpacing

	for y := lo; y <= hi; y += deflectorCadence {
		b.Deflectors = append(b.Deflectors,
			Segment{A: geom.V(0, y), B: geom.V(deflectorLength, y+deflectorDrop), Thickness: dividerThickness},
			Segment{A: geom.V(cfg.Width, y), B: geom.V(cfg.Width-deflectorLength, y+deflectorDrop), Thickness: dividerThickness},
		)
	}
}

func (b *Board) buildBucketWell() {
	cfg := b.Config
	inner := cfg.Width - wallThickness
	left := wallThickness / 2
	slot := (inner - wallThickness/2) / float64(cfg.Buckets)
	topY := cfg.Height - bucketWellDepth

	for i := 1; i < cfg.Buckets; i++ {
		x := left + float64(i)*slot
		b.Dividers = append(b.Dividers, Segment{
			A: geom.V(x, topY), B: geom.V(x, cfg.Height), Thickness: dividerThickness,
		})
	}

	b.Buckets = make([]Bucket, cfg.Buckets)
	for i := 0; i < cfg.Buckets; i++ {
		x0 := left + float64(i)*slot
		b.Buckets[i] = Bucket{
			Index:      i,
			Label:      fmt.Sprintf("bucket-%d", i),
			Multiplier: cfg.Multipliers[i],
			Min:        geom.V(x0, topY+sensorTopInset),
			Max:        geom.V(x0+slot, cfg.Height-2),
		}
	}
}

// ClampDropX limits a requested drop position into the valid drop zone.
func (b *Board) ClampDropX(x float64) float64 {
	return geom.Clamp(x, b.DropMinX, b.DropMaxX)
}
