package filter

import (
	"strings"

	"github.com/s0up4200/uslcheck/usl"
)

// matchAll is used for an empty expression
type matchAll struct{}

func (matchAll) Evaluate(usl.BanRecord) bool { return true }

func (matchAll) Match(usl.BanRecord) (bool, error) { return true, nil }

func (matchAll) Expression() string { return "" }

// ParseAndCreateFilter compiles an expression with the default compiler.
// An empty expression matches every record.
func ParseAndCreateFilter(expression string) (CompiledFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return matchAll{}, nil
	}
	return NewExprCompiler().Compile(expression)
}

// Apply returns the records matched by f, preserving order. It stops at the
// first record the filter cannot be evaluated on and returns its
// *EvaluationError.
func Apply(f CompiledFilter, records []usl.BanRecord) ([]usl.BanRecord, error) {
	matched := make([]usl.BanRecord, 0, len(records))
	for _, record := range records {
		ok, err := f.Match(record)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, record)
		}
	}
	return matched, nil
}
