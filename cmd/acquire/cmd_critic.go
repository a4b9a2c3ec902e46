package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/microsoft/acquire/internal/critic"
	"github.com/microsoft/acquire/internal/uncertainty"
	"github.com/spf13/cobra"
)

// criticReport is the output of the critic command.
type criticReport struct {
	Method     uncertainty.Method `json:"method" yaml:"method"`
	Threshold  float64            `json:"threshold" yaml:"threshold"`
	Limit      float64            `json:"limit" yaml:"limit"`
	Verdicts   []critic.Verdict   `json:"verdicts" yaml:"verdicts"`
	LowQuality []int              `json:"low_quality" yaml:"low_quality"`
}

func newCriticCommand() *cobra.Command {
	var (
		flags     scoringFlags
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "critic <p> [p...]",
		Short: "Gate predictions on their uncertainty",
		Long: `Judge each sample's prediction as high or low quality.

With entropy, a sample passes when its entropy is at most
log2(classes) * (1 - threshold). With margin, it passes when its margin is
at least the threshold. Exits with status 1 when any sample fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			probs, err := parseFloats(args)
			if err != nil {
				return err
			}

			r, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				r.cfg.Critic.Threshold = threshold
			}

			c, err := critic.New(r.scorer, r.cfg.Critic.Threshold)
			if err != nil {
				return err
			}

			scores, err := r.scorer.Score(probs, r.numClasses)
			if err != nil {
				return fmt.Errorf("critic scoring: %w", err)
			}
			if err := requireFinite(scores); err != nil {
				return err
			}
			verdicts := c.Judge(scores, r.numClasses)

			report := &criticReport{
				Method:     r.scorer.Method(),
				Threshold:  c.Threshold(),
				Limit:      c.Limit(r.numClasses),
				Verdicts:   verdicts,
				LowQuality: critic.LowQuality(verdicts),
			}

			if r.format == formatTable {
				printCriticTable(cmd.OutOrStdout(), report)
			} else if err := encode(cmd.OutOrStdout(), r.format, report); err != nil {
				return err
			}

			if n := len(report.LowQuality); n > 0 {
				return &QualityGateError{
					Message: fmt.Sprintf("critic flagged %d of %d sample(s) as low quality", n, len(verdicts)),
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", critic.DefaultThreshold, "Confidence threshold in (0, 1]")
	return cmd
}

func printCriticTable(w io.Writer, r *criticReport) {
	bound := "max"
	if r.Method == uncertainty.MethodMargin {
		bound = "min"
	}
	fmt.Fprintf(w, "Method: %s  Threshold: %s  %s %s: %s\n\n", //nolint:errcheck
		r.Method, formatScore(r.Threshold), bound, r.Method, formatScore(r.Limit))

	t := &table{header: []string{"Sample", "Score", "Quality"}}
	for _, v := range r.Verdicts {
		q := "✓ high"
		if !v.HighQuality {
			q = "✗ low"
		}
		t.add(strconv.Itoa(v.Index), formatScore(v.Score), q)
	}
	t.write(w)

	fmt.Fprintf(w, "\n%d of %d sample(s) low quality\n", len(r.LowQuality), len(r.Verdicts)) //nolint:errcheck
}
