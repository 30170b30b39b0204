package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/uslcheck/usl"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.custom, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		custom: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	custom map[string]any
}

// Compile compiles an expression into an executable filter. Unknown names
// are compile errors, so typos in field names are caught up front.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Type-check against a zero record so field types are known
	env := createRuntimeEnvironment(usl.BanRecord{}, c.custom)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
	}, nil
}

// Evaluate evaluates the filter against a record; evaluation errors never match
func (f *exprFilter) Evaluate(record usl.BanRecord) bool {
	ok, err := f.Match(record)
	return err == nil && ok
}

// Match evaluates the filter against a record
func (f *exprFilter) Match(record usl.BanRecord) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(record, f.custom))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Username:   record.Username,
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers, case-insensitive. The case-sensitive forms are the
	// built-in contains, startsWith and endsWith operators.
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(record usl.BanRecord, custom map[string]any) map[string]any {
	env := make(map[string]any, 24+len(custom))

	addHelperFunctions(env)
	maps.Copy(env, custom)

	env["hasTag"] = createHasTagFunc(record.Tags)

	// A zero BannedAt stays the zero time so daysSince() on unknown dates is huge
	var bannedAt time.Time
	if record.BannedAt != 0 {
		bannedAt = record.BannedAt.Time()
	}

	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}

	env["ID"] = record.ID
	env["Username"] = record.Username
	env["Traditional"] = record.Traditional
	env["BanReason"] = record.BanReason
	env["Subreddit"] = record.Subreddit
	env["Tags"] = tags
	env["BannedAt"] = bannedAt

	return env
}

func createHasTagFunc(tags []string) func(string) bool {
	// Pre-convert to lowercase for case-insensitive comparison
	lowerTags := make([]string, len(tags))
	for i, tag := range tags {
		lowerTags[i] = strings.ToLower(strings.TrimPrefix(tag, "#"))
	}
	return func(tag string) bool {
		target := strings.ToLower(strings.TrimPrefix(tag, "#"))
		return slices.Contains(lowerTags, target)
	}
}
