package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pegfall/internal/board"
	"github.com/san-kum/pegfall/internal/session"
)

// Config is the yaml surface for a play session: board geometry, bucket
// payouts and the ball class table.
type Config struct {
	Board   BoardConfig            `yaml:"board"`
	Class   string                 `yaml:"class"`
	Classes map[string]ClassConfig `yaml:"classes"`
}

type BoardConfig struct {
	Width       float64   `yaml:"width"`
	Height      float64   `yaml:"height"`
	Rows        int       `yaml:"rows"`
	StartPegs   int       `yaml:"start_pegs"`
	PegSpacing  float64   `yaml:"peg_spacing"`
	RowSpacing  float64   `yaml:"row_spacing"`
	PegRadius   float64   `yaml:"peg_radius"`
	Buckets     int       `yaml:"buckets"`
	Risk        string    `yaml:"risk"`
	Multipliers []float64 `yaml:"multipliers"`
}

type ClassConfig struct {
	Scale           float64 `yaml:"scale"`
	Mass            float64 `yaml:"mass"`
	Restitution     float64 `yaml:"restitution"`
	Friction        float64 `yaml:"friction"`
	FrictionAir     float64 `yaml:"friction_air"`
	FrictionStatic  float64 `yaml:"friction_static"`
	Slop            float64 `yaml:"slop"`
	YieldMultiplier float64 `yaml:"yield_multiplier"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
}

func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			Width:      board.DefaultWidth,
			Height:     board.DefaultHeight,
			Rows:       board.DefaultRows,
			StartPegs:  board.DefaultStartPegs,
			PegSpacing: board.DefaultPegSpacing,
			RowSpacing: board.DefaultRowSpacing,
			PegRadius:  board.DefaultPegRadius,
			Buckets:    board.DefaultBuckets,
			Risk:       board.DefaultRisk,
		},
		Class: session.DefaultClass,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToBoardConfig converts the yaml surface into the board package's
// constructor input.
func (c *Config) ToBoardConfig() board.Config {
	return board.Config{
		Width:       c.Board.Width,
		Height:      c.Board.Height,
		Rows:        c.Board.Rows,
		StartPegs:   c.Board.StartPegs,
		PegSpacing:  c.Board.PegSpacing,
		RowSpacing:  c.Board.RowSpacing,
		PegRadius:   c.Board.PegRadius,
		Buckets:     c.Board.Buckets,
		Risk:        c.Board.Risk,
		Multipliers: c.Board.Multipliers,
	}
}

// ToClassTable converts the configured classes, starting from the
// built-in table so the default class always exists.
func (c *Config) ToClassTable() session.ClassTable {
	table := session.DefaultClassTable()
	for id, cc := range c.Classes {
		table[id] = session.BallClass{
			ID:              id,
			Scale:           cc.Scale,
			Mass:            cc.Mass,
			Restitution:     cc.Restitution,
			Friction:        cc.Friction,
			FrictionAir:     cc.FrictionAir,
			FrictionStatic:  cc.FrictionStatic,
			Slop:            cc.Slop,
			YieldMultiplier: cc.YieldMultiplier,
			SpeedMultiplier: cc.SpeedMultiplier,
		}
	}
	return table
}
