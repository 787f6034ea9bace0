package predicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/leengari/csvpatch/internal/domain/data"
)

// Func tests whether a row matches certain criteria
type Func func(data.Row) (bool, error)

// KeyEquals matches rows whose column holds exactly value
func KeyEquals(column, value string) Func {
	return func(row data.Row) (bool, error) {
		v, ok := row[column]
		return ok && v == value, nil
	}
}

// And matches rows accepted by every predicate; with no predicates it
// matches every row
func And(preds ...Func) Func {
	return func(row data.Row) (bool, error) {
		for _, p := range preds {
			ok, err := p(row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Compile builds a predicate from a boolean expression over the header's
// columns, e.g. `status == "open" && owner == ""`.
// Every column is a string variable; columns that are not valid
// identifiers are reachable as $env["column name"].
// Unknown identifiers are rejected at compile time.
func Compile(source string, header []string) (Func, error) {
	env := make(map[string]interface{}, len(header))
	for _, col := range header {
		env[col] = ""
	}

	program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}

	return func(row data.Row) (bool, error) {
		return run(program, row)
	}, nil
}

func run(program *vm.Program, row data.Row) (bool, error) {
	env := make(map[string]interface{}, len(row))
	for k, v := range row {
		env[k] = v
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate expression: %w", err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, expected bool", out)
	}
	return matched, nil
}
