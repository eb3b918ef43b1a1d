package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/yawrate/internal/loop"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

var tickHeader = []string{"time", "throttle", "demand", "psi", "dpsi", "command", "integral", "reset", "cut"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset,omitempty"`
	Profile     string             `json:"profile"`
	Timestamp   time.Time          `json:"timestamp"`
	RateHz      float64            `json:"rate_hz"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	ThrottleCut float64            `json:"throttle_cut"`
	Ticks       int                `json:"ticks"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewRunID() string {
	return "yaw_" + uuid.NewString()[:8]
}

// Save writes meta and the ticks of result under a fresh run ID and
// returns it. meta.ID, Timestamp, Ticks and Metrics are filled in.
func (s *Store) Save(meta RunMetadata, result *loop.Result) (string, error) {
	meta.ID = NewRunID()
	meta.Timestamp = time.Now()
	meta.Ticks = len(result.Ticks)
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTicksCSV(csvFile, result.Ticks); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func WriteTicksCSV(out io.Writer, ticks []loop.Tick) error {
	w := csv.NewWriter(out)
	if err := w.Write(tickHeader); err != nil {
		return err
	}

	for _, t := range ticks {
		row := []string{
			formatFloat(t.Time),
			formatFloat(t.Throttle),
			formatFloat(t.Demand),
			formatFloat(t.Psi),
			formatFloat(t.DPsi),
			formatFloat(t.Command),
			formatFloat(t.Integral),
			strconv.FormatBool(t.Reset),
			strconv.FormatBool(t.Cut),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]loop.Tick, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(tickHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) < 2 {
		return []loop.Tick{}, nil
	}

	ticks := make([]loop.Tick, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, 7)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		reset, err := strconv.ParseBool(record[7])
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		cut, err := strconv.ParseBool(record[8])
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}

		ticks = append(ticks, loop.Tick{
			Index:    i,
			Time:     vals[0],
			Throttle: vals[1],
			Demand:   vals[2],
			Psi:      vals[3],
			DPsi:     vals[4],
			Command:  vals[5],
			Integral: vals[6],
			Reset:    reset,
			Cut:      cut,
		})
	}

	return ticks, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
