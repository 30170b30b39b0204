package filter

import (
	"github.com/s0up4200/uslcheck/usl"
)

// Filter defines the basic interface for ban record filters
type Filter interface {
	// Evaluate checks if a record matches the filter criteria
	Evaluate(record usl.BanRecord) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the evaluation error surfaced
	Match(record usl.BanRecord) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}
