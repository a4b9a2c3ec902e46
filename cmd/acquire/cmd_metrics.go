package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/microsoft/acquire/internal/metrics"
	"github.com/spf13/cobra"
)

func newMetricsCommand() *cobra.Command {
	var (
		yTrue    string
		yPred    string
		positive int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Report classification metrics for predicted labels",
		Long: `Compare predicted labels against true labels.

Reports accuracy, precision, recall and F1 for the --positive class; every
other label counts as negative.

  acquire metrics --true 0,1,1,0 --pred 0,1,0,0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			truth, err := parseInts(yTrue)
			if err != nil {
				return err
			}
			predicted, err := parseInts(yPred)
			if err != nil {
				return err
			}

			m, err := metrics.ComputeClassificationMetrics(truth, predicted, positive)
			if err != nil {
				return err
			}
			if m == nil {
				return errors.New("no labels given: pass --true and --pred")
			}

			f, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			if f == formatTable {
				printMetricsTable(cmd.OutOrStdout(), m)
				return nil
			}
			return encode(cmd.OutOrStdout(), f, m)
		},
	}

	cmd.Flags().StringVar(&yTrue, "true", "", "Comma-separated true labels")
	cmd.Flags().StringVar(&yPred, "pred", "", "Comma-separated predicted labels")
	cmd.Flags().IntVar(&positive, "positive", 1, "Label treated as the positive class")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json or yaml (default table on a terminal, json otherwise)")
	_ = cmd.MarkFlagRequired("true")
	_ = cmd.MarkFlagRequired("pred")
	return cmd
}

func printMetricsTable(w io.Writer, m *metrics.ClassificationMetrics) {
	fmt.Fprintf(w, "Positive label: %d  TP %d  FP %d  TN %d  FN %d\n\n", m.Positive, m.TP, m.FP, m.TN, m.FN) //nolint:errcheck

	t := &table{header: []string{"Metric", "Value"}}
	t.add("accuracy", formatScore(m.Accuracy))
	t.add("precision", formatScore(m.Precision))
	t.add("recall", formatScore(m.Recall))
	t.add("f1", formatScore(m.F1))
	t.write(w)
}
