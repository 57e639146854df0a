package session

// BallClass selects the physical parameters of a dropped ball. The
// speed multiplier is the pace knob: it scales the initial drop
// velocity and sets the session-wide gravity scale.
type BallClass struct {
	ID              string
	Scale           float64
	Mass            float64
	Restitution     float64
	Friction        float64
	FrictionAir     float64
	FrictionStatic  float64
	Slop            float64
	YieldMultiplier float64
	SpeedMultiplier float64
}

// DefaultClass is the fallback for unknown class identifiers. Board
// dimensions are never defaulted this way; class ids are, because they
// arrive from host UI state that may lag the table.
const DefaultClass = "default"

type ClassTable map[string]BallClass

// Lookup resolves a class id, falling back to the default class.
func (t ClassTable) Lookup(id string) BallClass {
	if c, ok := t[id]; ok {
		return c
	}
	if c, ok := t[DefaultClass]; ok {
		return c
	}
	return builtinDefault
}

var builtinDefault = BallClass{
	ID:              DefaultClass,
	Scale:           1.0,
	Mass:            1.0,
	Restitution:     0.5,
	Friction:        0.05,
	FrictionAir:     0.015,
	FrictionStatic:  0.2,
	Slop:            0.05,
	YieldMultiplier: 1.0,
	SpeedMultiplier: 1.0,
}

// DefaultClassTable returns the built-in class configurations. Hosts
// normally supply their own table resolved from an external lookup.
func DefaultClassTable() ClassTable {
	return ClassTable{
		DefaultClass: builtinDefault,
		"light": {
			ID: "light", Scale: 0.8, Mass: 0.6, Restitution: 0.65,
			Friction: 0.03, FrictionAir: 0.02, FrictionStatic: 0.1,
			Slop: 0.05, YieldMultiplier: 0.8, SpeedMultiplier: 0.85,
		},
		"heavy": {
			ID: "heavy", Scale: 1.2, Mass: 1.8, Restitution: 0.35,
			Friction: 0.08, FrictionAir: 0.01, FrictionStatic: 0.3,
			Slop: 0.08, YieldMultiplier: 1.4, SpeedMultiplier: 1.1,
		},
		"turbo": {
			ID: "turbo", Scale: 1.0, Mass: 1.0, Restitution: 0.55,
			Friction: 0.04, FrictionAir: 0.008, FrictionStatic: 0.15,
			Slop: 0.05, YieldMultiplier: 1.0, SpeedMultiplier: 1.5,
		},
	}
}

// ClassIDs lists the table's identifiers.
func (t ClassTable) ClassIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	return ids
}
