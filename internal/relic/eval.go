package relic

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
)

// Evaluator wraps a CEL environment configured for relic effect expressions.
type Evaluator struct {
	env    *cel.Env
	roller dice.Roller
}

// NewEvaluator creates a CEL environment exposing the in-flight context as
// `ctx`, the relic's own state as `relic` and the dice helper functions.
// A nil roller uses the crypto roller.
func NewEvaluator(roller dice.Roller) (*Evaluator, error) {
	if roller == nil {
		roller = dice.DefaultRoller()
	}

	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Lists(),

		cel.Variable("ctx", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("relic", cel.MapType(cel.StringType, cel.DynType)),

		// roll('2d6+1') evaluates a dice expression. Invalid notation is 0.
		cel.Function("roll",
			cel.Overload("roll_string",
				[]*cel.Type{cel.StringType},
				cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					res, err := dice.RollExpr(val.Value().(string), roller)
					if err != nil {
						return types.Int(0)
					}
					return types.Int(res.Total)
				}),
			),
		),
		// mod(a, n) is the non-negative remainder of a divided by n.
		cel.Function("mod",
			cel.Overload("mod_int_int",
				[]*cel.Type{cel.IntType, cel.IntType},
				cel.IntType,
				cel.BinaryBinding(func(a, n ref.Val) ref.Val {
					x, m := a.Value().(int64), n.Value().(int64)
					if m == 0 {
						return types.NewErr("mod by zero")
					}
					if m < 0 {
						m = -m
					}
					r := x % m
					if r < 0 {
						r += m
					}
					return types.Int(r)
				}),
			),
		),
		cel.Function("clamp",
			cel.Overload("clamp_int_int_int",
				[]*cel.Type{cel.IntType, cel.IntType, cel.IntType},
				cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					v, lo, hi := args[0].Value().(int64), args[1].Value().(int64), args[2].Value().(int64)
					if v < lo {
						return types.Int(lo)
					}
					if v > hi {
						return types.Int(hi)
					}
					return types.Int(v)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env, roller: roller}, nil
}

// Compile checks and plans an expression once so it can be evaluated on
// every publication.
func (ev *Evaluator) Compile(expr string) (cel.Program, error) {
	ast, issues := ev.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	prg, err := ev.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	return prg, nil
}

// Eval runs a compiled program and converts the result to native Go values.
func (ev *Evaluator) Eval(prg cel.Program, vars map[string]any) (any, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("CEL eval error: %w", err)
	}
	return convertRefVal(out), nil
}

var int64Slice = reflect.TypeOf([]int64(nil))

// EvalInts runs a compiled program that must produce a list of integers.
func (ev *Evaluator) EvalInts(prg cel.Program, vars map[string]any) ([]int, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("CEL eval error: %w", err)
	}
	native, err := out.ConvertToNative(int64Slice)
	if err != nil {
		return nil, fmt.Errorf("expected a list of integers, got %v", out.Type())
	}
	raw := native.([]int64)
	ints := make([]int, len(raw))
	for i, v := range raw {
		ints[i] = int(v)
	}
	return ints, nil
}

// convertRefVal converts a CEL ref.Val to a native Go value, recursively handling
// maps and lists so that downstream code can use standard Go type assertions.
func convertRefVal(val ref.Val) any {
	native := val.Value()
	switch v := native.(type) {
	case map[ref.Val]ref.Val:
		result := make(map[string]any, len(v))
		for mk, mv := range v {
			result[fmt.Sprintf("%v", mk.Value())] = convertRefVal(mv)
		}
		return result
	case []ref.Val:
		result := make([]any, len(v))
		for i, rv := range v {
			result[i] = convertRefVal(rv)
		}
		return result
	default:
		return native
	}
}
