package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/microsoft/acquire/internal/critic"
	"github.com/microsoft/acquire/internal/selection"
	"github.com/spf13/cobra"
)

// strategyFeedback selects samples for the feedback loop rather than by a
// registered strategy.
const strategyFeedback = "feedback"

// feedbackReport is the output of select --strategy feedback.
type feedbackReport struct {
	Selected         []int `json:"selected" yaml:"selected"`
	Total            int   `json:"total" yaml:"total"`
	RetrainBatchSize int   `json:"retrain_batch_size" yaml:"retrain_batch_size"`
	RetrainDue       bool  `json:"retrain_due" yaml:"retrain_due"`
}

type selectFlags struct {
	scoring     scoringFlags
	strategy    string
	k           int
	threshold   float64
	critic      float64
	predictions string
	labels      string
}

func newSelectCommand() *cobra.Command {
	var flags selectFlags

	cmd := &cobra.Command{
		Use:   "select <p> [p...]",
		Short: "Pick the samples to label next",
		Long: `Pick samples for labeling from their uncertainty.

Strategies:
  top_k      the --top-k most uncertain samples
  threshold  every sample at least as uncertain as --threshold
  feedback   samples the critic rejects, or whose --predictions differ
             from --labels`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return selectCommandE(cmd, args, &flags)
		},
	}

	flags.scoring.register(cmd)
	cmd.Flags().StringVarP(&flags.strategy, "strategy", "s", "", "Selection strategy: "+strategyNames()+" (default from config)")
	cmd.Flags().IntVar(&flags.k, "top-k", 0, "Samples kept by top_k")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Score cutoff for threshold")
	cmd.Flags().Float64Var(&flags.critic, "critic-threshold", critic.DefaultThreshold, "Critic confidence threshold for feedback")
	cmd.Flags().StringVar(&flags.predictions, "predictions", "", "Comma-separated predicted labels for feedback")
	cmd.Flags().StringVar(&flags.labels, "labels", "", "Comma-separated true labels for feedback")
	return cmd
}

func selectCommandE(cmd *cobra.Command, args []string, flags *selectFlags) error {
	probs, err := parseFloats(args)
	if err != nil {
		return err
	}

	r, err := flags.scoring.resolve(cmd)
	if err != nil {
		return err
	}

	strategyName := r.cfg.Selection.Strategy
	params := r.cfg.Selection.Params
	if cmd.Flags().Changed("strategy") && flags.strategy != strategyName {
		strategyName = flags.strategy
		params = nil
	}

	if strategyName == strategyFeedback {
		return runFeedback(cmd, probs, r, flags)
	}

	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	if cmd.Flags().Changed("top-k") {
		merged["k"] = flags.k
	}
	if cmd.Flags().Changed("threshold") {
		merged["threshold"] = flags.threshold
	}

	strategy, err := selection.Create(selection.Type(strategyName), "", merged)
	if err != nil {
		return err
	}

	p, err := selection.NewPipeline(r.scorer, strategy)
	if err != nil {
		return err
	}

	sel, err := p.Run(probs, r.numClasses)
	if err != nil {
		return err
	}

	picked := make([]float64, len(sel.Picks))
	for i, pick := range sel.Picks {
		picked[i] = pick.Score
	}
	if err := requireFinite(picked); err != nil {
		return err
	}
	slog.Debug("Selected samples", "strategy", strategy.Name(), "indices", sel.Indices())

	if r.format == formatTable {
		printSelectionTable(cmd.OutOrStdout(), sel, strategyDetail(strategy))
		return nil
	}
	return encode(cmd.OutOrStdout(), r.format, sel)
}

func runFeedback(cmd *cobra.Command, probs []float64, r *resolved, flags *selectFlags) error {
	threshold := r.cfg.Critic.Threshold
	if cmd.Flags().Changed("critic-threshold") {
		threshold = flags.critic
	}

	c, err := critic.New(r.scorer, threshold)
	if err != nil {
		return err
	}
	verdicts, err := c.Evaluate(probs, r.numClasses)
	if err != nil {
		return err
	}

	var predictions, labels []int
	if flags.labels != "" || flags.predictions != "" {
		if predictions, err = parseInts(flags.predictions); err != nil {
			return err
		}
		if labels, err = parseInts(flags.labels); err != nil {
			return err
		}
		if labels == nil {
			labels = []int{}
		}
	}

	selected, err := selection.CollectFeedback(critic.Quality(verdicts), predictions, labels)
	if err != nil {
		return err
	}

	report := &feedbackReport{
		Selected:         selected,
		Total:            len(verdicts),
		RetrainBatchSize: r.cfg.Feedback.RetrainBatchSize,
		RetrainDue:       selection.RetrainDue(len(selected), r.cfg.Feedback.RetrainBatchSize),
	}
	if report.Selected == nil {
		report.Selected = []int{}
	}

	if r.format == formatTable {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Feedback: %d of %d sample(s) selected\n", len(report.Selected), report.Total) //nolint:errcheck
		if len(report.Selected) > 0 {
			fmt.Fprintf(w, "  %s\n", joinInts(report.Selected)) //nolint:errcheck
		}
		state := "not yet due"
		if report.RetrainDue {
			state = "due"
		}
		fmt.Fprintf(w, "Retrain (batch of %d): %s\n", report.RetrainBatchSize, state) //nolint:errcheck
		return nil
	}
	return encode(cmd.OutOrStdout(), r.format, report)
}

func printSelectionTable(w io.Writer, sel *selection.Selection, detail string) {
	fmt.Fprintf(w, "Strategy: %s (%s)  Method: %s  Picked: %d of %d\n\n", //nolint:errcheck
		sel.Strategy, detail, sel.Method, len(sel.Picks), sel.Total)

	t := &table{header: []string{"Rank", "Sample", "Score"}}
	for i, p := range sel.Picks {
		t.add(strconv.Itoa(i+1), strconv.Itoa(p.Index), formatScore(p.Score))
	}
	t.write(w)
}

// strategyDetail describes a strategy's parameter for the table header.
func strategyDetail(s selection.Strategy) string {
	switch v := s.(type) {
	case *selection.TopK:
		return fmt.Sprintf("k=%d", v.K())
	case *selection.Threshold:
		return "cutoff=" + formatScore(v.Cutoff())
	default:
		return string(s.Type())
	}
}

// strategyNames lists the registered strategies plus feedback.
func strategyNames() string {
	names := make([]string, 0, len(selection.Types())+1)
	for _, t := range selection.Types() {
		names = append(names, string(t))
	}
	return strings.Join(append(names, strategyFeedback), ", ")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
