// Package trace persists drop runs for the CLI: metadata plus a
// per-tick trajectory, one directory per run under a data dir. The
// simulation core itself persists nothing.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// TickSample is one row of the saved trajectory.
type TickSample struct {
	Tick int
	X    float64
	Y    float64
	VX   float64
	VY   float64
}

// RunMetadata describes one saved drop.
type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	DropX       float64            `json:"drop_x"`
	Class       string             `json:"class"`
	Rows        int                `json:"rows"`
	Buckets     int                `json:"buckets"`
	Risk        string             `json:"risk"`
	Landed      bool               `json:"landed"`
	Bucket      string             `json:"bucket"`
	Multiplier  float64            `json:"multiplier"`
	PegHits     int                `json:"peg_hits"`
	Ticks       int                `json:"ticks"`
	Corrections map[string]int     `json:"corrections"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory with metadata.json and ticks.csv and
// returns the generated run id.
func (s *Store) Save(meta RunMetadata, ticks []TickSample) (string, error) {
	runID := fmt.Sprintf("drop_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "ticks.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"tick", "x", "y", "vx", "vy"}); err != nil {
		return "", err
	}
	for _, t := range ticks {
		row := []string{
			strconv.Itoa(t.Tick),
			strconv.FormatFloat(t.X, 'f', 4, 64),
			strconv.FormatFloat(t.Y, 'f', 4, 64),
			strconv.FormatFloat(t.VX, 'f', 4, 64),
			strconv.FormatFloat(t.VY, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]TickSample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "ticks.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TickSample{}, nil
	}

	ticks := make([]TickSample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		ticks = append(ticks, TickSample{Tick: tick, X: vals[0], Y: vals[1], VX: vals[2], VY: vals[3]})
	}

	return ticks, nil
}

// ExportJSON writes a run's metadata and trajectory to stdout.
func ExportJSON(meta *RunMetadata, ticks []TickSample) error {
	out := struct {
		*RunMetadata
		Trajectory []TickSample `json:"trajectory"`
	}{meta, ticks}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
