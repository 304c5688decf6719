// Package storage persists solver runs as a directory per run holding
// metadata.json and trace.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/numsolve/internal/config"
)

const (
	metaFile  = "metadata.json"
	traceFile = "trace.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Method    string             `json:"method"`
	Function  string             `json:"function,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Status    string             `json:"status"`
	Summary   map[string]float64 `json:"summary,omitempty"`
	Config    *config.Config     `json:"config,omitempty"`
}

// Trace is a numeric table. Missing cells are NaN.
type Trace struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// Save writes a new run directory and returns its ID. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, trace Trace) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%s_%d", meta.Kind, meta.Method, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeMeta(filepath.Join(runDir, metaFile), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), trace); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMeta(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrace(path string, trace Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, trace); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes the header line followed by one line per row. NaN cells
// are left empty.
func WriteCSV(w io.Writer, trace Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trace.Columns); err != nil {
		return err
	}
	for _, row := range trace.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			if !math.IsNaN(v) {
				rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (Trace, error) {
	file, err := os.Open(s.path(runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Trace{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return Trace{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Trace{}, err
	}
	if len(records) == 0 {
		return Trace{}, nil
	}

	trace := Trace{Columns: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, cell := range record {
			if cell == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Trace{}, fmt.Errorf("storage: %s: %w", runID, err)
			}
			row[j] = v
		}
		trace.Rows = append(trace.Rows, row)
	}
	return trace, nil
}

// ExportCSV copies the stored trace to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, trace)
}

// Export is the JSON document written by ExportJSON. NaN cells become null.
type Export struct {
	RunMetadata
	Columns []string     `json:"columns"`
	Rows    [][]*float64 `json:"rows"`
}

func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	out := Export{RunMetadata: *meta, Columns: trace.Columns, Rows: make([][]*float64, len(trace.Rows))}
	for i, row := range trace.Rows {
		out.Rows[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				out.Rows[i][j] = &row[j]
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), name)
}
