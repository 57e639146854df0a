package config

// Presets are ready-made board/class combinations.
var Presets = map[string]*Config{
	"classic": {
		Board: BoardConfig{
			Width: 600, Height: 700, Rows: 12, StartPegs: 3,
			PegSpacing: 40, RowSpacing: 34, PegRadius: 4,
			Buckets: 5, Risk: "medium",
		},
		Class: "default",
	},
	"gentle": {
		Board: BoardConfig{
			Width: 600, Height: 700, Rows: 8, StartPegs: 3,
			PegSpacing: 48, RowSpacing: 40, PegRadius: 4,
			Buckets: 3, Risk: "low",
		},
		Class: "light",
	},
	"deep": {
		Board: BoardConfig{
			Width: 760, Height: 900, Rows: 16, StartPegs: 3,
			PegSpacing: 42, RowSpacing: 36, PegRadius: 4,
			Buckets: 9, Risk: "high",
		},
		Class: "default",
	},
	"turbo": {
		Board: BoardConfig{
			Width: 600, Height: 700, Rows: 12, StartPegs: 3,
			PegSpacing: 40, RowSpacing: 34, PegRadius: 4,
			Buckets: 5, Risk: "high",
		},
		Class: "turbo",
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
