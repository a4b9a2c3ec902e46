// Package selection picks which samples to send back for labeling, given
// their uncertainty scores.
package selection

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/microsoft/acquire/internal/uncertainty"
)

type Type string

const (
	// TypeTopK keeps the k most uncertain samples.
	TypeTopK Type = "top_k"

	// TypeThreshold keeps every sample at least as uncertain as a cutoff.
	TypeThreshold Type = "threshold"
)

// Strategy is the interface for all selection strategies
type Strategy interface {
	// Name returns the strategy identifier
	Name() string

	// Type returns the strategy type
	Type() Type

	// Select picks samples from scores, which were produced by method.
	Select(scores []float64, method uncertainty.Method) (*Selection, error)
}

// Pick is one chosen sample.
type Pick struct {
	Index int     `json:"index" yaml:"index"`
	Score float64 `json:"score" yaml:"score"`
}

// Selection is the result of running a Strategy.
type Selection struct {
	Strategy string             `json:"strategy" yaml:"strategy"`
	Method   uncertainty.Method `json:"method" yaml:"method"`
	Total    int                `json:"total" yaml:"total"`
	Picks    []Pick             `json:"picks" yaml:"picks"`
}

// Indices returns the picked sample indices in selection order.
func (s *Selection) Indices() []int {
	out := make([]int, len(s.Picks))
	for i, p := range s.Picks {
		out[i] = p.Index
	}
	return out
}

// Create builds a strategy of the given type from loosely typed params, as
// found in config files.
func Create(strategyType Type, identifier string, params map[string]any) (Strategy, error) {
	if identifier == "" {
		identifier = string(strategyType)
	}

	switch strategyType {
	case TypeTopK:
		var v *struct {
			K int `mapstructure:"k"`
		}

		if err := mapstructure.WeakDecode(params, &v); err != nil {
			return nil, fmt.Errorf("decoding %s params: %w", strategyType, err)
		}
		if v == nil {
			return nil, fmt.Errorf("'%s' requires parameter 'k'", strategyType)
		}

		return NewTopK(identifier, v.K)
	case TypeThreshold:
		var v *struct {
			Threshold *float64 `mapstructure:"threshold"`
		}

		if err := mapstructure.WeakDecode(params, &v); err != nil {
			return nil, fmt.Errorf("decoding %s params: %w", strategyType, err)
		}
		if v == nil || v.Threshold == nil {
			return nil, fmt.Errorf("'%s' requires parameter 'threshold'", strategyType)
		}

		return NewThreshold(identifier, *v.Threshold), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid selection strategy (want one of %s)", strategyType, joinTypes())
	}
}

// Types lists every strategy type Create accepts.
func Types() []Type {
	return []Type{TypeTopK, TypeThreshold}
}

func joinTypes() string {
	names := make([]string, len(Types()))
	for i, t := range Types() {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
