package evaluator

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sheetcore/reactive-sheets/internal/domain/cellid"
	"github.com/sheetcore/reactive-sheets/internal/domain/value"
)

var tokenPattern = regexp.MustCompile(`^([A-Z]+)([1-9][0-9]*)(?:_([A-Z]+)([1-9][0-9]*))?$`)

// Lookup fetches a cell's current value by id; supplied by the engine so
// that binding can read through the cell store without this package
// depending on it.
type Lookup func(id string) value.Value

// Binding is the result of expanding a formula's free variables into an
// evaluator environment (spec.md §4.4).
type Binding struct {
	Env       map[string]value.Argument
	Record    map[string]struct{} // cells referenced, for edge installation
	ErrorFlag int                 // 0 normal, 1 self-referential input, 2 other error input
}

// Bind expands each token found by FindVariables into its cell set (spec
// §4.4's three reference forms), fetching each cell's current value via
// lookup and building the bound environment. While doing so it tracks
// record (referenced cells) and errorFlag exactly as the original
// evaluator's get_dependency_value macro does: the flag reflects the last
// error-valued reference seen during the scan, preferring 1 (self
// referential) only when that reference is itself the last one checked.
func Bind(formula string, lookup Lookup) Binding {
	b := Binding{
		Env:    make(map[string]value.Argument),
		Record: make(map[string]struct{}),
	}

	for _, tok := range FindVariables(formula) {
		m := tokenPattern.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		col1, row1Str, col2, row2Str := m[1], m[2], m[3], m[4]
		row1, _ := strconv.Atoi(row1Str)

		switch {
		case col2 == "":
			// Scalar reference.
			v := b.check(tok, lookup)
			b.Env[tok] = value.ScalarArg(v)

		case col1 == col2:
			// Column vector: same column, rows low..high inclusive.
			row2, _ := strconv.Atoi(row2Str)
			var vec []value.Value
			for r := row1; r <= row2; r++ {
				id := fmt.Sprintf("%s%d", col1, r)
				v := b.check(id, lookup)
				if b.ErrorFlag != 0 {
					continue
				}
				vec = append(vec, v)
			}
			b.Env[tok] = value.VectorArg(vec)

		case row1Str == row2Str:
			// Row vector: same row, columns low..high inclusive.
			c1, c2 := cellid.ColumnNumber(col1), cellid.ColumnNumber(col2)
			var vec []value.Value
			for c := c1; c <= c2; c++ {
				id := fmt.Sprintf("%s%s", cellid.ColumnName(c), row1Str)
				v := b.check(id, lookup)
				if b.ErrorFlag != 0 {
					continue
				}
				vec = append(vec, v)
			}
			b.Env[tok] = value.VectorArg(vec)

		default:
			// Rectangular range: rows outer, columns inner.
			row2, _ := strconv.Atoi(row2Str)
			c1, c2 := cellid.ColumnNumber(col1), cellid.ColumnNumber(col2)
			var mat [][]value.Value
			for r := row1; r <= row2; r++ {
				var rowVals []value.Value
				for c := c1; c <= c2; c++ {
					id := fmt.Sprintf("%s%d", cellid.ColumnName(c), r)
					v := b.check(id, lookup)
					if b.ErrorFlag != 0 {
						continue
					}
					rowVals = append(rowVals, v)
				}
				mat = append(mat, rowVals)
			}
			b.Env[tok] = value.MatrixArg(mat)
		}
	}

	return b
}

// check records id in Record, fetches its value, and updates ErrorFlag if
// that value is an error — mirroring the original get_check_cell_value
// macro, including its quirk of letting the *last* erroring reference seen
// decide the final flag.
func (b *Binding) check(id string, lookup Lookup) value.Value {
	b.Record[id] = struct{}{}
	v := lookup(id)
	if v.IsAnyError() {
		if v.IsSelfReferential() {
			b.ErrorFlag = 1
		} else {
			b.ErrorFlag = 2
		}
	}
	return v
}
