package evaluator

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/sheetcore/reactive-sheets/internal/domain/value"
)

// Evaluator runs a formula against a bound environment using CEL (Common
// Expression Language) as the concrete stand-in for the opaque formula
// evaluator spec.md §6 describes. Its cell-value taxonomy is numeric-only:
// any CEL result that isn't a number, or a list/matrix of numbers reducible
// to one by summation, is coerced into the sentinel error string the wire
// contract recognises (value.CastErrorMessage).
type Evaluator struct{}

// New constructs an Evaluator. CEL programs are compiled fresh per call
// since each formula declares a different variable set.
func New() *Evaluator { return &Evaluator{} }

// Run evaluates formula against env (spec.md §4.5 step 3's "evaluator.run
// path"), returning either a scalar value.Value or value.CastError().
func (e *Evaluator) Run(formula string, env map[string]value.Argument) value.Value {
	expr := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if expr == "" {
		return value.CastError()
	}

	opts := make([]cel.EnvOption, 0, len(env)+1)
	for name := range env {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	opts = append(opts, sumFunction())

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return value.CastError()
	}

	ast, iss := celEnv.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return value.CastError()
	}

	prg, err := celEnv.Program(ast)
	if err != nil {
		return value.CastError()
	}

	activation := make(map[string]any, len(env))
	for name, arg := range env {
		activation[name] = toNative(arg)
	}

	out, _, err := prg.Eval(activation)
	if err != nil {
		return value.CastError()
	}

	return fromCEL(out)
}

// toNative lowers a bound Argument into the plain Go shape CEL expects:
// a float64 for a scalar, []any for a vector, [][]any for a matrix.
func toNative(arg value.Argument) any {
	switch {
	case arg.Scalar != nil:
		return scalarToFloat(*arg.Scalar)
	case arg.Matrix != nil:
		rows := make([]any, len(arg.Matrix))
		for i, row := range arg.Matrix {
			cols := make([]any, len(row))
			for j, v := range row {
				cols[j] = scalarToFloat(v)
			}
			rows[i] = cols
		}
		return rows
	default:
		vec := make([]any, len(arg.Vector))
		for i, v := range arg.Vector {
			vec[i] = scalarToFloat(v)
		}
		return vec
	}
}

// scalarToFloat maps a bound cell's current value to the number CEL sees.
// An absent cell reads as 0, matching an empty-referenced-cell convention;
// error cells never reach here because a non-zero error flag short-circuits
// evaluation before Run is called (spec §4.5 step 3).
func scalarToFloat(v value.Value) float64 {
	if v.Kind == value.KindScalar {
		return v.Scalar
	}
	return 0
}

// fromCEL coerces a CEL evaluation result into the numeric-only cell value
// taxonomy, summing list/matrix results rather than rejecting them outright
// (the "sum-or-vector" latitude spec.md §8 scenario 5 explicitly allows).
func fromCEL(v ref.Val) value.Value {
	if d, ok := v.Value().(float64); ok {
		return value.Number(d)
	}
	if i, ok := v.Value().(int64); ok {
		return value.Number(float64(i))
	}
	if sum, ok := trySum(v); ok {
		return value.Number(sum)
	}
	return value.CastError()
}

// trySum flattens a CEL list (or list of lists) of numbers into a total.
func trySum(v ref.Val) (float64, bool) {
	lister, ok := v.(traits.Lister)
	if !ok {
		return 0, false
	}
	total := 0.0
	it := lister.Iterator()
	for it.HasNext() == types.True {
		elem := it.Next()
		switch e := elem.Value().(type) {
		case float64:
			total += e
		case int64:
			total += float64(e)
		default:
			if nested, ok := trySum(elem); ok {
				total += nested
				continue
			}
			return 0, false
		}
	}
	return total, true
}

// sumFunction registers the "sum(list)" builtin formulas may call
// explicitly to reduce a vector or matrix reference to a scalar.
func sumFunction() cel.EnvOption {
	return cel.Function("sum",
		cel.Overload("sum_list_dyn", []*cel.Type{cel.ListType(cel.DynType)}, cel.DoubleType,
			cel.UnaryBinding(func(val ref.Val) ref.Val {
				total, ok := trySum(val)
				if !ok {
					return types.NewErr("sum: non-numeric element")
				}
				return types.Double(total)
			}),
		),
	)
}
