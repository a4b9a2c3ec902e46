package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/microsoft/acquire/internal/metrics"
	"github.com/microsoft/acquire/internal/uncertainty"
	"github.com/spf13/cobra"
)

// sampleScore is one sample's uncertainty.
type sampleScore struct {
	Index int     `json:"index" yaml:"index"`
	Score float64 `json:"score" yaml:"score"`
}

// scoreReport is the output of the score command.
type scoreReport struct {
	Method     uncertainty.Method `json:"method" yaml:"method"`
	NumClasses int                `json:"num_classes" yaml:"num_classes"`
	Samples    []sampleScore      `json:"samples" yaml:"samples"`
	Summary    metrics.Summary    `json:"summary" yaml:"summary"`

	Bootstrap *metrics.BootstrapInterval `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
}

type scoreFlags struct {
	scoring   scoringFlags
	bootstrap int
	seed      uint64
	rows      bool
}

func newScoreCommand() *cobra.Command {
	var flags scoreFlags

	cmd := &cobra.Command{
		Use:   "score <p> [p...]",
		Short: "Score probability distributions by uncertainty",
		Long: `Score class-probability distributions by their uncertainty.

Values are read from the arguments, one per argument or comma-separated, and
grouped into samples of --classes values each. By default a trailing
incomplete sample is ignored; pass --strict to reject it instead.

With --rows each argument is one sample and its length sets the class
count; every row must have the same length.

--bootstrap adds a percentile bootstrap interval for the mean score.

  acquire score -k 2 0.5,0.5 0.98,0.02`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scoreCommandE(cmd, args, &flags)
		},
	}

	flags.scoring.register(cmd)
	cmd.Flags().IntVar(&flags.bootstrap, "bootstrap", 0, "Bootstrap resamples for the mean score interval (0 disables)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Seed for bootstrap resampling")
	cmd.Flags().BoolVar(&flags.rows, "rows", false, "Treat each argument as one sample row")
	return cmd
}

func scoreCommandE(cmd *cobra.Command, args []string, flags *scoreFlags) error {
	probs, err := parseFloats(args)
	if err != nil {
		return err
	}

	r, err := flags.scoring.resolve(cmd)
	if err != nil {
		return err
	}

	var scores []float64
	if flags.rows {
		m, err := parseRows(args)
		if err != nil {
			return err
		}
		_, r.numClasses = m.Dims()
		scores, err = r.scorer.ScoreMatrix(m)
		if err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	} else {
		scores, err = r.scorer.ScoreParallel(cmd.Context(), probs, r.numClasses, r.workers)
		if err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	}
	if err := requireFinite(scores); err != nil {
		return err
	}

	report := buildScoreReport(r.scorer.Method(), r.numClasses, scores)
	if flags.bootstrap > 0 {
		ci := metrics.Bootstrap(scores, 0.95, flags.bootstrap, flags.seed)
		report.Bootstrap = &ci
	}
	if r.format == formatTable {
		printScoreTable(cmd.OutOrStdout(), report)
		return nil
	}
	return encode(cmd.OutOrStdout(), r.format, report)
}

func buildScoreReport(method uncertainty.Method, numClasses int, scores []float64) *scoreReport {
	samples := make([]sampleScore, len(scores))
	for i, s := range scores {
		samples[i] = sampleScore{Index: i, Score: s}
	}
	return &scoreReport{
		Method:     method,
		NumClasses: numClasses,
		Samples:    samples,
		Summary:    metrics.Summarize(scores),
	}
}

func printScoreTable(w io.Writer, r *scoreReport) {
	fmt.Fprintf(w, "Method: %s  Classes: %d  Samples: %d\n\n", r.Method, r.NumClasses, len(r.Samples)) //nolint:errcheck

	t := &table{header: []string{"Sample", "Score"}}
	for _, s := range r.Samples {
		t.add(strconv.Itoa(s.Index), formatScore(s.Score))
	}
	t.write(w)

	if r.Summary.Count > 0 {
		fmt.Fprintf(w, "\nMean %s  StdDev %s  Min %s  Max %s  95%% CI [%s, %s]\n", //nolint:errcheck
			formatScore(r.Summary.Mean), formatScore(r.Summary.StdDev),
			formatScore(r.Summary.Min), formatScore(r.Summary.Max),
			formatScore(r.Summary.CILow), formatScore(r.Summary.CIHigh))
	}
	if b := r.Bootstrap; b != nil {
		fmt.Fprintf(w, "Bootstrap %d resamples  %.0f%% CI [%s, %s]\n", //nolint:errcheck
			b.Resamples, b.Level*100, formatScore(b.Lower), formatScore(b.Upper))
	}
}
