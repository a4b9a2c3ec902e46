package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/microsoft/acquire/internal/metrics"
	"github.com/microsoft/acquire/internal/projectconfig"
	"github.com/microsoft/acquire/internal/selection"
	"github.com/microsoft/acquire/internal/uncertainty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// runAcquire executes the root command with args against a config search
// rooted at dir.
func runAcquire(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir=" + dir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.FileName), []byte(content), 0o644))
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestScoreCommand_Entropy(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "-k", "2", "0.5,0.5", "0.98,0.02")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	assert.Equal(t, uncertainty.MethodEntropy, report.Method)
	assert.Equal(t, 2, report.NumClasses)
	require.Len(t, report.Samples, 2)
	assert.InDelta(t, 1.0, report.Samples[0].Score, 1e-9)
	assert.InDelta(t, 0.1414, report.Samples[1].Score, 1e-4)
	assert.Equal(t, 2, report.Summary.Count)
}

func TestScoreCommand_Margin(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "-m", "margin", "0.5", "0.5", "0.98", "0.02")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	assert.Equal(t, uncertainty.MethodMargin, report.Method)
	require.Len(t, report.Samples, 2)
	assert.InDelta(t, 0.0, report.Samples[0].Score, 1e-9)
	assert.InDelta(t, 0.96, report.Samples[1].Score, 1e-9)
}

func TestScoreCommand_PartialGroup(t *testing.T) {
	t.Run("dropped by default", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "score", "0.5,0.5,0.7")
		require.NoError(t, err)

		report := decodeJSON[scoreReport](t, out)
		assert.Len(t, report.Samples, 1)
	})

	t.Run("rejected with --strict", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "score", "--strict", "0.5,0.5,0.7")
		require.Error(t, err)
		assert.ErrorIs(t, err, uncertainty.ErrPartialGroup)
	})
}

func TestScoreCommand_Validate(t *testing.T) {
	_, err := runAcquire(t, t.TempDir(), "score", "--validate", "--", "-0.1,1.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, uncertainty.ErrProbabilityOutOfRange)
}

func TestScoreCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `scoring:
  method: margin
  num_classes: 3
`)

	out, err := runAcquire(t, dir, "score", "0.7,0.2,0.1")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	assert.Equal(t, uncertainty.MethodMargin, report.Method)
	assert.Equal(t, 3, report.NumClasses)
	require.Len(t, report.Samples, 1)
	assert.InDelta(t, 0.5, report.Samples[0].Score, 1e-9)
}

func TestScoreCommand_FlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "scoring:\n  method: margin\n")

	out, err := runAcquire(t, dir, "score", "-m", "entropy", "0.5,0.5")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	assert.Equal(t, uncertainty.MethodEntropy, report.Method)
}

func TestScoreCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown method", args: []string{"score", "-m", "variance", "0.5,0.5"}, wantErr: "unknown uncertainty method"},
		{name: "bad probability", args: []string{"score", "0.5,abc"}, wantErr: `invalid probability "abc"`},
		{name: "zero classes", args: []string{"score", "-k", "0", "0.5"}, wantErr: "group size"},
		{name: "bad format", args: []string{"score", "-f", "xml", "0.5,0.5"}, wantErr: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAcquire(t, t.TempDir(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScoreCommand_YAML(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "-f", "yaml", "0.5,0.5")
	require.NoError(t, err)

	var report scoreReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, uncertainty.MethodEntropy, report.Method)
	require.Len(t, report.Samples, 1)
	assert.InDelta(t, 1.0, report.Samples[0].Score, 1e-9)
}

func TestScoreCommand_Bootstrap(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "--bootstrap", "500", "--seed", "9", "0.5,0.5", "0.98,0.02", "0.9,0.1")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	require.NotNil(t, report.Bootstrap)
	assert.Equal(t, 500, report.Bootstrap.Resamples)
	assert.LessOrEqual(t, report.Bootstrap.Lower, report.Bootstrap.Mean)
	assert.GreaterOrEqual(t, report.Bootstrap.Upper, report.Bootstrap.Mean)

	out, err = runAcquire(t, t.TempDir(), "score", "0.5,0.5")
	require.NoError(t, err)
	assert.NotContains(t, out, "bootstrap")
}

func TestScoreCommand_Table(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "-f", "table", "0.5,0.5", "0.98,0.02")
	require.NoError(t, err)

	assert.Contains(t, out, "Method: entropy")
	assert.Contains(t, out, "1.0000")
	assert.Contains(t, out, "0.1414")
	assert.Contains(t, out, "95% CI")
}

func TestCriticCommand(t *testing.T) {
	t.Run("low quality sample fails the gate", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "critic", "0.98,0.02", "0.5,0.5")
		require.Error(t, err)

		var gateErr *QualityGateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Message, "1 of 2")

		report := decodeJSON[criticReport](t, out)
		assert.InDelta(t, 0.2, report.Limit, 1e-9)
		require.Len(t, report.Verdicts, 2)
		assert.True(t, report.Verdicts[0].HighQuality)
		assert.False(t, report.Verdicts[1].HighQuality)
		assert.Equal(t, []int{1}, report.LowQuality)
	})

	t.Run("confident samples pass", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "critic", "0.98,0.02", "0.01,0.99")
		require.NoError(t, err)

		report := decodeJSON[criticReport](t, out)
		assert.Empty(t, report.LowQuality)
	})

	t.Run("threshold flag", func(t *testing.T) {
		// a threshold of 0.5 allows entropy up to 0.5
		_, err := runAcquire(t, t.TempDir(), "critic", "-t", "0.5", "0.9,0.1")
		require.NoError(t, err)
	})

	t.Run("margin", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "critic", "-m", "margin", "0.95,0.05", "0.6,0.4")
		require.Error(t, err)

		report := decodeJSON[criticReport](t, out)
		assert.InDelta(t, 0.8, report.Limit, 1e-9)
		assert.Equal(t, []int{1}, report.LowQuality)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "critic", "-t", "1.5", "0.9,0.1")
		require.Error(t, err)

		var gateErr *QualityGateError
		assert.False(t, errors.As(err, &gateErr))
	})
}

func TestSelectCommand_TopK(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "select", "--top-k", "1", "0.98,0.02", "0.5,0.5", "0.9,0.1")
	require.NoError(t, err)

	sel := decodeJSON[selection.Selection](t, out)
	assert.Equal(t, 3, sel.Total)
	assert.Equal(t, []int{1}, sel.Indices())
}

func TestSelectCommand_ConfigParams(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `selection:
  strategy: top_k
  params:
    k: 2
`)

	out, err := runAcquire(t, dir, "select", "0.98,0.02", "0.5,0.5", "0.9,0.1")
	require.NoError(t, err)

	sel := decodeJSON[selection.Selection](t, out)
	assert.Equal(t, []int{1, 2}, sel.Indices())
}

func TestSelectCommand_Threshold(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "select", "-s", "threshold", "--threshold", "0.4", "0.98,0.02", "0.5,0.5", "0.9,0.1")
	require.NoError(t, err)

	sel := decodeJSON[selection.Selection](t, out)
	assert.Equal(t, "threshold", sel.Strategy)
	assert.Equal(t, []int{1, 2}, sel.Indices())
}

func TestSelectCommand_ThresholdMissingParam(t *testing.T) {
	_, err := runAcquire(t, t.TempDir(), "select", "-s", "threshold", "0.5,0.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires parameter 'threshold'")
}

func TestSelectCommand_Feedback(t *testing.T) {
	args := []string{
		"select", "-s", "feedback",
		"--predictions", "0,0,0", "--labels", "0,0,1",
		"0.98,0.02", "0.5,0.5", "0.99,0.01",
	}

	t.Run("low quality or misclassified", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), args...)
		require.NoError(t, err)

		report := decodeJSON[feedbackReport](t, out)
		assert.Equal(t, []int{1, 2}, report.Selected)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, selection.DefaultRetrainBatchSize, report.RetrainBatchSize)
		assert.False(t, report.RetrainDue)
	})

	t.Run("retrain batch filled", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "feedback:\n  retrain_batch_size: 2\n")

		out, err := runAcquire(t, dir, args...)
		require.NoError(t, err)

		report := decodeJSON[feedbackReport](t, out)
		assert.True(t, report.RetrainDue)
	})

	t.Run("without labels", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "select", "-s", "feedback", "0.98,0.02", "0.99,0.01")
		require.NoError(t, err)

		report := decodeJSON[feedbackReport](t, out)
		assert.Empty(t, report.Selected)
	})

	t.Run("label count mismatch", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "select", "-s", "feedback", "--predictions", "0", "--labels", "0,1", "0.98,0.02", "0.5,0.5")
		require.Error(t, err)
	})
}

func TestSelectCommand_UnknownStrategy(t *testing.T) {
	_, err := runAcquire(t, t.TempDir(), "select", "-s", "random", "0.5,0.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid selection strategy (want one of top_k, threshold)")
}

func TestMetricsCommand(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "metrics", "--true", "0,1,1,0", "--pred", "0,1,0,0")
	require.NoError(t, err)

	m := decodeJSON[metrics.ClassificationMetrics](t, out)
	assert.InDelta(t, 0.75, m.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.6667, m.F1, 1e-9)
}

func TestMetricsCommand_Errors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "metrics", "--true", "0,1", "--pred", "0")
		require.Error(t, err)
		assert.ErrorIs(t, err, metrics.ErrLengthMismatch)
	})

	t.Run("missing flags", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "metrics", "--true", "0,1")
		require.Error(t, err)
	})
}

func TestMetricsCommand_Table(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "metrics", "-f", "table", "--true", "0,1,1,0", "--pred", "0,1,0,0")
	require.NoError(t, err)

	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, "0.7500")
	assert.Contains(t, out, "TP 1")
}

func TestCheckCommand(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runAcquire(t, dir, "check", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "No .acquire.yaml found")
	})

	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "scoring:\n  method: margin\ncritic:\n  threshold: 0.9\n")

		out, err := runAcquire(t, dir, "check")
		require.NoError(t, err)
		assert.Contains(t, out, "✓")
	})

	t.Run("invalid config", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "scoring:\n  method: variance\n  workers: 0\n")

		out, err := runAcquire(t, dir, "check")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema error(s)")
		assert.Contains(t, out, "✗")
	})

	t.Run("found from a subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "scoring:\n  num_classes: 3\n")
		sub := filepath.Join(dir, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		out, err := runAcquire(t, dir, "check", sub)
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(dir, projectconfig.FileName))
	})
}

func TestScoreCommand_NonFiniteScore(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "NaN margin", args: []string{"score", "-m", "margin", "-k", "2", "NaN,0.5"}},
		{name: "infinite entropy", args: []string{"score", "-m", "entropy", "-k", "2", "+Inf,0"}},
		{name: "critic", args: []string{"critic", "-m", "margin", "NaN,0.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runAcquire(t, t.TempDir(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "sample 0 scored")
			assert.Contains(t, err.Error(), "--validate")
			assert.NotContains(t, err.Error(), "json")
			assert.Empty(t, out)
		})
	}

	t.Run("rejected up front with --validate", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "score", "-m", "margin", "--validate", "NaN,0.5")
		require.Error(t, err)
		assert.ErrorIs(t, err, uncertainty.ErrProbabilityOutOfRange)
	})

	t.Run("NaN sample is never selected", func(t *testing.T) {
		out, err := runAcquire(t, t.TempDir(), "select", "-m", "margin", "--top-k", "2", "NaN,0.5", "0.6,0.4")
		require.NoError(t, err)

		sel := decodeJSON[selection.Selection](t, out)
		assert.Equal(t, []int{1}, sel.Indices())
	})
}

func TestScoreCommand_Rows(t *testing.T) {
	out, err := runAcquire(t, t.TempDir(), "score", "--rows", "-m", "margin", "0.7,0.2,0.1", "0.4,0.35,0.25")
	require.NoError(t, err)

	report := decodeJSON[scoreReport](t, out)
	assert.Equal(t, 3, report.NumClasses)
	require.Len(t, report.Samples, 2)
	assert.InDelta(t, 0.5, report.Samples[0].Score, 1e-9)
	assert.InDelta(t, 0.05, report.Samples[1].Score, 1e-9)

	t.Run("ragged rows", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "score", "--rows", "0.5,0.5", "0.2,0.3,0.5")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 1 has 3 values, want 2")
	})

	t.Run("empty row", func(t *testing.T) {
		_, err := runAcquire(t, t.TempDir(), "score", "--rows", ",")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 0 is empty")
	})
}

func TestSelectCommand_TableDetail(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "top_k", args: []string{"select", "-f", "table", "--top-k", "1", "0.5,0.5"}, want: "Strategy: top_k (k=1)"},
		{name: "threshold", args: []string{"select", "-f", "table", "-s", "threshold", "--threshold", "0.4", "0.5,0.5"}, want: "Strategy: threshold (cutoff=0.4000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runAcquire(t, t.TempDir(), tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestSelectCommand_StrategyHelp(t *testing.T) {
	cmd := newSelectCommand()
	usage := cmd.Flags().Lookup("strategy").Usage
	for _, typ := range selection.Types() {
		assert.Contains(t, usage, string(typ))
	}
	assert.Contains(t, usage, strategyFeedback)
}
