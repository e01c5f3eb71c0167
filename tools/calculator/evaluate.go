package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/schema"
)

// ExpressionInput is the input of the "evaluate" tool.
type ExpressionInput struct {
	// Expression is the expression to evaluate, for example "2 + 2".
	Expression string `json:"expression"`

	// Params binds variables used in Expression.
	Params map[string]any `json:"params,omitempty"`
}

var constants = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"phi":   math.Phi,
	"sqrt2": math.Sqrt2,
	"ln2":   math.Ln2,
	"ln10":  math.Ln10,
}

var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"pow": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		base, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		exp, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(base, exp), nil
	},
	"max": variadic(math.Max),
	"min": variadic(math.Min),
}

// Evaluate returns the "evaluate" tool.
func Evaluate() *orchestra.ToolFunc[ExpressionInput, any] {
	return orchestra.NewToolFunc(
		"evaluate",
		"Evaluate a mathematical expression such as '(15 + 25) / 2 * 3'. "+
			"Supports + - * / ** %, parentheses, the constants pi, e, phi, sqrt2, ln2, ln10 "+
			"and the functions sqrt, abs, floor, ceil, round, ln, log10, sin, cos, tan, pow, max, min.",
		schema.Object(map[string]*schema.Property{
			"expression": schema.String("Mathematical expression to evaluate. For example, '2 + 2'.").MinLength(1),
			"params":     schema.Map("Optional variable bindings, for example {\"x\": 3}."),
		}, "expression"),
		func(_ context.Context, in ExpressionInput) (any, error) {
			return Eval(in.Expression, in.Params)
		},
	)
}

// Eval evaluates expression with the given variable bindings. Built-in constants are
// available unless params overrides them.
func Eval(expression string, params map[string]any) (any, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(expression, functions)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]any, len(params)+len(constants))
	for k, v := range constants {
		vars[k] = v
	}
	for k, v := range params {
		vars[k] = v
	}

	result, err := exp.Evaluate(vars)
	if err != nil {
		return nil, err
	}
	if f, ok := result.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		if dividesByZero(exp.Tokens(), vars) {
			return nil, ErrDivideByZero
		}
		if math.IsNaN(f) {
			return nil, ErrNotANumber
		}
		return nil, ErrOverflow
	}
	return result, nil
}

// dividesByZero reports whether the right operand of any "/" or "%" in tokens
// evaluates to zero.
func dividesByZero(tokens []govaluate.ExpressionToken, vars map[string]any) bool {
	for i, tok := range tokens {
		if tok.Kind != govaluate.MODIFIER || (tok.Value != "/" && tok.Value != "%") {
			continue
		}
		divisor, err := govaluate.NewEvaluableExpressionFromTokens(operand(tokens[i+1:]))
		if err != nil {
			continue
		}
		v, err := divisor.Evaluate(vars)
		if err != nil {
			continue
		}
		if f, ok := v.(float64); ok && f == 0 {
			return true
		}
	}
	return false
}

// operand returns the leading tokens that bind tighter than a multiplicative
// operator: a value, a call or a parenthesised clause, with any exponent applied.
func operand(tokens []govaluate.ExpressionToken) []govaluate.ExpressionToken {
	depth := 0
	for i, tok := range tokens {
		switch tok.Kind {
		case govaluate.CLAUSE:
			depth++
		case govaluate.CLAUSE_CLOSE:
			if depth == 0 {
				return tokens[:i]
			}
			depth--
		case govaluate.MODIFIER:
			if depth == 0 && tok.Value != "**" {
				return tokens[:i]
			}
		case govaluate.COMPARATOR, govaluate.LOGICALOP, govaluate.TERNARY, govaluate.SEPARATOR:
			if depth == 0 {
				return tokens[:i]
			}
		}
	}
	return tokens
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		x, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func variadic(fn func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, errors.New("expected at least 1 argument")
		}
		acc, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			x, err := toFloat(a)
			if err != nil {
				return nil, err
			}
			acc = fn(acc, x)
		}
		return acc, nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
