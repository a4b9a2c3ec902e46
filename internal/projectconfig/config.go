// Package projectconfig provides the ProjectConfig struct and loader for
// .acquire.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".acquire.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultMethod        = "entropy"
	DefaultNumClasses    = 2
	DefaultWorkers       = 4
	DefaultPartialGroups = "drop"

	DefaultCriticThreshold = 0.8

	DefaultSelectionStrategy = "top_k"
	DefaultSelectionK        = 10

	DefaultRetrainBatchSize = 50
)

// maxWalkUp bounds how many parent directories Load searches.
const maxWalkUp = 10

// ScoringConfig holds uncertainty scoring settings.
type ScoringConfig struct {
	Method        string `yaml:"method,omitempty"`
	NumClasses    int    `yaml:"num_classes,omitempty"`
	Workers       int    `yaml:"workers,omitempty"`
	PartialGroups string `yaml:"partial_groups,omitempty"`
	ValidateRange *bool  `yaml:"validate_range,omitempty"`
}

// CriticConfig holds quality gate settings.
type CriticConfig struct {
	Threshold float64 `yaml:"threshold,omitempty"`
}

// SelectionConfig names a selection strategy and its parameters.
type SelectionConfig struct {
	Strategy string         `yaml:"strategy,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// FeedbackConfig holds feedback loop settings.
type FeedbackConfig struct {
	RetrainBatchSize int `yaml:"retrain_batch_size,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .acquire.yaml.
type ProjectConfig struct {
	Scoring   ScoringConfig   `yaml:"scoring,omitempty"`
	Critic    CriticConfig    `yaml:"critic,omitempty"`
	Selection SelectionConfig `yaml:"selection,omitempty"`
	Feedback  FeedbackConfig  `yaml:"feedback,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Scoring: ScoringConfig{
			Method:        DefaultMethod,
			NumClasses:    DefaultNumClasses,
			Workers:       DefaultWorkers,
			PartialGroups: DefaultPartialGroups,
			ValidateRange: boolPtr(false),
		},
		Critic: CriticConfig{
			Threshold: DefaultCriticThreshold,
		},
		Selection: SelectionConfig{
			Strategy: DefaultSelectionStrategy,
			Params:   map[string]any{"k": DefaultSelectionK},
		},
		Feedback: FeedbackConfig{
			RetrainBatchSize: DefaultRetrainBatchSize,
		},
	}
}

// Load finds .acquire.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := FindFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// FindFile walks up from dir looking for .acquire.yaml and returns its path
// and contents. Returns os.ErrNotExist if no config file is found.
func FindFile(dir string) (string, []byte, error) {
	// filepath.Dir(".") does not walk, so start from an absolute path
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalkUp; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Scoring
	if src.Scoring.Method != "" {
		dst.Scoring.Method = src.Scoring.Method
	}
	if src.Scoring.NumClasses != 0 {
		dst.Scoring.NumClasses = src.Scoring.NumClasses
	}
	if src.Scoring.Workers != 0 {
		dst.Scoring.Workers = src.Scoring.Workers
	}
	if src.Scoring.PartialGroups != "" {
		dst.Scoring.PartialGroups = src.Scoring.PartialGroups
	}
	if src.Scoring.ValidateRange != nil {
		dst.Scoring.ValidateRange = src.Scoring.ValidateRange
	}

	// Critic
	if src.Critic.Threshold != 0 {
		dst.Critic.Threshold = src.Critic.Threshold
	}

	// Selection: params belong to the strategy, so a new strategy drops the
	// default params
	if src.Selection.Strategy != "" && src.Selection.Strategy != dst.Selection.Strategy {
		dst.Selection.Strategy = src.Selection.Strategy
		dst.Selection.Params = nil
	}
	if src.Selection.Params != nil {
		dst.Selection.Params = src.Selection.Params
	}

	// Feedback
	if src.Feedback.RetrainBatchSize != 0 {
		dst.Feedback.RetrainBatchSize = src.Feedback.RetrainBatchSize
	}
}

func boolPtr(b bool) *bool {
	return &b
}
