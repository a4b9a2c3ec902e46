package uncertainty

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned when a method name matches no kernel.
var ErrUnknownMethod = errors.New("unknown uncertainty method")

// Method names an uncertainty kernel.
type Method string

const (
	MethodEntropy Method = "entropy"
	MethodMargin  Method = "margin"
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodEntropy, MethodMargin}
}

// ParseMethod resolves a method name, ignoring case and surrounding space.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodEntropy, MethodMargin:
		return m, nil
	default:
		names := make([]string, len(Methods()))
		for i, m := range Methods() {
			names[i] = string(m)
		}
		return "", fmt.Errorf("%w: '%s' (want one of %s)", ErrUnknownMethod, s, strings.Join(names, ", "))
	}
}

// MoreUncertain reports whether score a is strictly more uncertain than b
// under m. High entropy is uncertain; a small margin is uncertain.
func (m Method) MoreUncertain(a, b float64) bool {
	if m == MethodMargin {
		return a < b
	}
	return a > b
}

// AtLeastAsUncertain reports whether a is as uncertain as b or more.
func (m Method) AtLeastAsUncertain(a, b float64) bool {
	return !m.MoreUncertain(b, a)
}

func (m Method) kernel() func([]float64) float64 {
	switch m {
	case MethodEntropy:
		return entropy
	case MethodMargin:
		return margin
	default:
		return nil
	}
}
