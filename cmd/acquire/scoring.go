package main

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/microsoft/acquire/internal/projectconfig"
	"github.com/microsoft/acquire/internal/uncertainty"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// scoringFlags are the flags shared by every command that scores
// probabilities. Unset flags fall back to .acquire.yaml.
type scoringFlags struct {
	method     string
	numClasses int
	strict     bool
	validate   bool
	workers    int
	format     string
}

func (f *scoringFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "m", projectconfig.DefaultMethod, "Uncertainty method: "+joinMethods())
	cmd.Flags().IntVarP(&f.numClasses, "classes", "k", projectconfig.DefaultNumClasses, "Number of classes per sample")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail when the values do not divide into whole samples")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "Reject probabilities outside [0, 1]")
	cmd.Flags().IntVar(&f.workers, "workers", projectconfig.DefaultWorkers, "Goroutines used to score large batches")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: table, json or yaml (default table on a terminal, json otherwise)")
}

// resolved is the effective scoring setup after merging flags over config.
type resolved struct {
	cfg        *projectconfig.ProjectConfig
	scorer     *uncertainty.Scorer
	numClasses int
	workers    int
	format     string
}

func (f *scoringFlags) resolve(cmd *cobra.Command) (*resolved, error) {
	cfg, err := projectconfig.Load(configDir)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		slog.Debug("Loaded project config", "path", cfg.Path)
	}

	changed := cmd.Flags().Changed
	if changed("method") {
		cfg.Scoring.Method = f.method
	}
	if changed("classes") {
		cfg.Scoring.NumClasses = f.numClasses
	}
	if changed("workers") {
		cfg.Scoring.Workers = f.workers
	}
	if changed("strict") {
		cfg.Scoring.PartialGroups = string(uncertainty.DropPartial)
		if f.strict {
			cfg.Scoring.PartialGroups = string(uncertainty.RejectPartial)
		}
	}
	if changed("validate") {
		cfg.Scoring.ValidateRange = &f.validate
	}

	method, err := uncertainty.ParseMethod(cfg.Scoring.Method)
	if err != nil {
		return nil, err
	}
	partial, err := uncertainty.ParsePartialPolicy(cfg.Scoring.PartialGroups)
	if err != nil {
		return nil, err
	}

	opts := uncertainty.Options{Partial: partial}
	if cfg.Scoring.ValidateRange != nil {
		opts.ValidateRange = *cfg.Scoring.ValidateRange
	}

	scorer, err := uncertainty.New(method, opts)
	if err != nil {
		return nil, err
	}

	format, err := resolveFormat(cmd, f.format)
	if err != nil {
		return nil, err
	}

	slog.Debug("Scoring setup",
		"method", method,
		"classes", cfg.Scoring.NumClasses,
		"partial_groups", partial,
		"validate_range", scorer.Options().ValidateRange,
		"workers", cfg.Scoring.Workers)

	return &resolved{
		cfg:        cfg,
		scorer:     scorer,
		numClasses: cfg.Scoring.NumClasses,
		workers:    cfg.Scoring.Workers,
		format:     format,
	}, nil
}

// parseFloats reads probabilities from args. Each arg holds one value or a
// comma-separated list.
func parseFloats(args []string) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid probability %q: %w", field, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// parseRows reads one sample per arg into a matrix with one column per
// class.
func parseRows(args []string) (*mat.Dense, error) {
	var (
		flat []float64
		cols int
	)
	for i, arg := range args {
		row, err := parseFloats([]string{arg})
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			return nil, fmt.Errorf("row %d is empty", i)
		}
		if i == 0 {
			cols = len(row)
		} else if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: no rows given", uncertainty.ErrInvalidGroupSize)
	}
	return mat.NewDense(len(args), cols, flat), nil
}

// parseInts reads a comma-separated list of integer labels.
func parseInts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid label %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// requireFinite fails on a NaN or infinite score. Those only come from input
// that is not a probability distribution, and JSON cannot carry them.
func requireFinite(scores []float64) error {
	for i, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("sample %d scored %v: input is not a probability distribution (use --validate to reject such input)", i, v)
		}
	}
	return nil
}

func joinMethods() string {
	names := make([]string, 0, len(uncertainty.Methods()))
	for _, m := range uncertainty.Methods() {
		names = append(names, string(m))
	}
	return strings.Join(names, " or ")
}
