package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// Expr is a rate given either as a plain number ("0.4") or as a CEL
// expression over the population variables N, I0 and R0 ("1.0 / N").
type Expr string

// Number formats v as a literal rate.
func Number(v float64) Expr {
	return Expr(strconv.FormatFloat(v, 'g', -1, 64))
}

const exprCostLimit = 10000

var rateEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("N", cel.DoubleType),
		cel.Variable("I0", cel.DoubleType),
		cel.Variable("R0", cel.DoubleType),
	)
})

// Literal reports whether e is a plain number and returns it.
func (e Expr) Literal() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(e)), 64)
	return v, err == nil
}

func (e Expr) Eval(p Population) (float64, error) {
	if v, ok := e.Literal(); ok {
		return v, nil
	}
	if strings.TrimSpace(string(e)) == "" {
		return 0, fmt.Errorf("empty rate expression")
	}

	env, err := rateEnv()
	if err != nil {
		return 0, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(string(e))
	if issues != nil && issues.Err() != nil {
		return 0, fmt.Errorf("compile %q: %w", string(e), issues.Err())
	}
	prg, err := env.Program(ast, cel.CostLimit(exprCostLimit))
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", string(e), err)
	}

	out, _, err := prg.Eval(map[string]any{
		"N":  p.N,
		"I0": p.I0,
		"R0": p.R0,
	})
	if err != nil {
		return 0, fmt.Errorf("eval %q: %w", string(e), err)
	}

	switch v := out.Value().(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("eval %q: expected a number, got %T", string(e), v)
	}
}

func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rate must be a number or an expression", node.Line)
	}
	*e = Expr(node.Value)
	return nil
}

func (e Expr) MarshalYAML() (any, error) {
	if v, ok := e.Literal(); ok {
		return v, nil
	}
	return string(e), nil
}

// UnmarshalTOML accepts TOML floats, integers and strings.
func (e *Expr) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case float64:
		*e = Number(v)
	case int64:
		*e = Expr(strconv.FormatInt(v, 10))
	case string:
		*e = Expr(v)
	default:
		return fmt.Errorf("rate must be a number or an expression, got %T", data)
	}
	return nil
}

func (e *Expr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Expr(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("rate must be a number or an expression: %w", err)
	}
	*e = Number(f)
	return nil
}

func (e Expr) MarshalJSON() ([]byte, error) {
	if v, ok := e.Literal(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(string(e))
}
