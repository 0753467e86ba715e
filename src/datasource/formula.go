package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Knetic/govaluate"

	"github.com/splotview/splotview/src/logging"
)

// Formula defines a derived column: an expression evaluated over the columns
// of a dataset, stored under a new name with its own unit.
type Formula struct {
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Expression string `json:"expression"`
}

func floatArgs(name string, args []interface{}) ([]float64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s needs at least one argument", name)
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is not numeric", name, i)
		}
		out[i] = f
	}
	return out, nil
}

var formulaFuncs = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		fa, err := floatArgs("abs", args)
		if err != nil {
			return nil, err
		}
		return math.Abs(fa[0]), nil
	},
	"sqrt": func(args ...interface{}) (interface{}, error) {
		fa, err := floatArgs("sqrt", args)
		if err != nil {
			return nil, err
		}
		return math.Sqrt(fa[0]), nil
	},
	"min": func(args ...interface{}) (interface{}, error) {
		fa, err := floatArgs("min", args)
		if err != nil {
			return nil, err
		}
		out := math.Inf(1)
		for _, f := range fa {
			out = math.Min(out, f)
		}
		return out, nil
	},
	"max": func(args ...interface{}) (interface{}, error) {
		fa, err := floatArgs("max", args)
		if err != nil {
			return nil, err
		}
		out := math.Inf(-1)
		for _, f := range fa {
			out = math.Max(out, f)
		}
		return out, nil
	},
}

// EvaluateFormula computes one derived series over ds, row by row. Columns
// are addressed by name and the reserved "index" key yields the row number.
// NaN samples propagate through the arithmetic.
func EvaluateFormula(ds *Dataset, expression string) ([]float64, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, formulaFuncs)
	if err != nil {
		return nil, fmt.Errorf("datasource: formula %q: %w", expression, err)
	}

	vars := expr.Vars()
	cols := make(map[string][]float64, len(vars))
	for _, v := range vars {
		if v == IndexKey {
			continue
		}
		vals, ok := ds.Values(v)
		if !ok {
			return nil, fmt.Errorf("datasource: formula %q references unknown variable %q", expression, v)
		}
		cols[v] = vals
	}

	n := ds.Len()
	out := make([]float64, n)
	params := make(map[string]interface{}, len(vars))
	for i := 0; i < n; i++ {
		for _, v := range vars {
			switch {
			case v == IndexKey:
				params[v] = float64(i)
			case i < len(cols[v]):
				params[v] = cols[v][i]
			default:
				params[v] = math.NaN()
			}
		}
		res, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("datasource: evaluate %q: %w", expression, err)
		}
		f, ok := res.(float64)
		if !ok {
			return nil, fmt.Errorf("datasource: formula %q is not numeric", expression)
		}
		out[i] = f
	}
	return out, nil
}

// ApplyFormulas evaluates every formula against ds and returns a copy of the
// dataset with the computed columns appended, plus the number of formulas
// that succeeded. Later formulas see the results of earlier ones. A formula
// that fails is skipped with a warning; the rest still apply.
func ApplyFormulas(ds *Dataset, formulas []Formula) (*Dataset, int) {
	out := ds.Clone()
	cnt := 0
	for _, f := range formulas {
		vals, err := EvaluateFormula(out, f.Expression)
		if err != nil {
			logging.Warnf("formula %q skipped: %v", f.Name, err)
			continue
		}
		out.AddColumn(f.Name, vals, f.Unit)
		cnt++
	}
	return out, cnt
}

// LoadFormulas reads a formula list from a JSON file. A missing file is not
// an error and yields an empty list.
func LoadFormulas(path string) ([]Formula, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Formula
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("datasource: formulas %s: %w", path, err)
	}
	return out, nil
}

// SaveFormulas writes a formula list as indented JSON.
func SaveFormulas(path string, formulas []Formula) error {
	raw, err := json.MarshalIndent(formulas, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
