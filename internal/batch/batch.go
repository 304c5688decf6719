// Package batch runs a YAML file of problems one after another.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numsolve/internal/config"
	"github.com/san-kum/numsolve/internal/experiment"
	"github.com/san-kum/numsolve/internal/registry"
	"github.com/san-kum/numsolve/internal/storage"
)

var ErrEmptyBatch = errors.New("batch: no problems")

// Batch is a named list of problems.
type Batch struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Problems    []Entry `yaml:"problems"`
}

// Entry is one problem. It starts from the defaults, or from Preset when
// set, and the remaining keys of the entry override it.
type Entry struct {
	Name   string
	Preset string
	Config *config.Config
}

func (e *Entry) UnmarshalYAML(n *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
	}
	if err := n.Decode(&head); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if head.Preset != "" {
		if cfg = config.FindPreset(head.Preset); cfg == nil {
			return fmt.Errorf("line %d: unknown preset %q", n.Line, head.Preset)
		}
	}
	if err := n.Decode(cfg); err != nil {
		return err
	}

	e.Name, e.Preset, e.Config = head.Name, head.Preset, cfg
	if e.Name == "" {
		e.Name = head.Preset
	}
	if e.Name == "" {
		e.Name = cfg.Kind + "/" + cfg.Method
	}
	return nil
}

func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if len(b.Problems) == 0 {
		return nil, ErrEmptyBatch
	}
	return &b, nil
}

// Report is the result of one entry. Outcome is nil when the entry failed
// before its engine started.
type Report struct {
	Name    string
	Outcome *experiment.Outcome
	Status  string
	RunID   string
	Err     error
}

type Options struct {
	// Store, when set, persists every entry that produced a trace.
	Store *storage.Store
	// Progress receives one line per entry. Nil discards.
	Progress io.Writer
}

// Run executes every entry in order. A failing entry is reported and the
// batch moves on; only a canceled context stops it early.
func Run(ctx context.Context, b *Batch, reg *registry.Registry, opts Options) ([]Report, error) {
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	reports := make([]Report, 0, len(b.Problems))

	for i, entry := range b.Problems {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		fmt.Fprintf(progress, "Running problem %d/%d: %s\n", i+1, len(b.Problems), entry.Name)

		rep := Report{Name: entry.Name}
		exp := experiment.New(entry.Config, reg)
		if err := exp.Setup(); err != nil {
			rep.Status, rep.Err = "setup-error", fmt.Errorf("problem %d (%s): %w", i+1, entry.Name, err)
			reports = append(reports, rep)
			continue
		}

		out, err := exp.Run(ctx)
		rep.Outcome, rep.Status = out, out.Status(err)
		if err != nil {
			rep.Err = fmt.Errorf("problem %d (%s): %w", i+1, entry.Name, err)
		}

		if opts.Store != nil && hasTrace(out, err) {
			id, serr := opts.Store.Save(out.Record())
			if serr != nil {
				return append(reports, rep), fmt.Errorf("save %s: %w", entry.Name, serr)
			}
			rep.RunID = id
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Linear failures leave nothing worth storing; root and ODE runs keep their
// partial trace.
func hasTrace(out *experiment.Outcome, err error) bool {
	return err == nil || out.Root != nil || out.ODE != nil
}

// Stats counts entries that finished without error.
func Stats(reports []Report) (ok int, failed int) {
	for _, r := range reports {
		if r.Err == nil {
			ok++
		} else {
			failed++
		}
	}
	return
}
