package filter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/s0up4200/uslcheck/usl"
)

func testRecords() []usl.BanRecord {
	now := time.Now()
	return []usl.BanRecord{
		{
			ID:          1,
			Username:    "paypal_pete",
			Traditional: true,
			BanReason:   "Chargeback scam via PayPal",
			Subreddit:   "borrow",
			Tags:        []string{"#scammer"},
			BannedAt:    usl.MillisOf(now.AddDate(0, 0, -90)),
		},
		{
			ID:        4,
			Username:  "shady_sam",
			BanReason: "Alt account of a known scammer",
			Subreddit: "hardwareswap",
			Tags:      []string{"#sketchy", "#Troll"},
			BannedAt:  usl.MillisOf(now.AddDate(0, 0, -2)),
		},
		{
			ID:       7,
			Username: "quiet_quinn",
		},
	}
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasTag("#scammer")`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasTag("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			expression: `Title == "Alien"`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Username`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `Traditional and daysSince(BannedAt) > 30 and containsFold(BanReason, "paypal")`,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
					return
				}
				var compErr *CompilationError
				if !errors.As(err, &compErr) {
					t.Errorf("expected *CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if filter == nil {
				t.Errorf("expected filter but got nil")
				return
			}
			if filter.Expression() != strings.TrimSpace(tt.expression) {
				t.Errorf("Expression() = %q, want %q", filter.Expression(), tt.expression)
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	records := testRecords()

	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{
			name:       "tag with hash",
			expression: `hasTag("#scammer")`,
			want:       []string{"paypal_pete"},
		},
		{
			name:       "tag without hash is case insensitive",
			expression: `hasTag("troll")`,
			want:       []string{"shady_sam"},
		},
		{
			name:       "tag membership",
			expression: `"#sketchy" in Tags`,
			want:       []string{"shady_sam"},
		},
		{
			name:       "traditional bans",
			expression: `Traditional`,
			want:       []string{"paypal_pete"},
		},
		{
			name:       "subreddit equality",
			expression: `Subreddit == "hardwareswap"`,
			want:       []string{"shady_sam"},
		},
		{
			name:       "reason contains any case",
			expression: `containsFold(BanReason, "SCAM")`,
			want:       []string{"paypal_pete", "shady_sam"},
		},
		{
			name:       "recent bans",
			expression: `BannedAt > daysAgo(7)`,
			want:       []string{"shady_sam"},
		},
		{
			name:       "old bans",
			expression: `daysSince(BannedAt) > 30 and BannedAt > parseDate("2000-01-01")`,
			want:       []string{"paypal_pete"},
		},
		{
			name:       "id comparison",
			expression: `ID >= 4`,
			want:       []string{"shady_sam", "quiet_quinn"},
		},
		{
			name:       "prefix and suffix",
			expression: `hasPrefix(Username, "PAYPAL") or hasSuffix(Username, "_QUINN")`,
			want:       []string{"paypal_pete", "quiet_quinn"},
		},
		{
			name:       "builtin operators are case sensitive",
			expression: `BanReason contains "PayPal" or Username startsWith "QUIET"`,
			want:       []string{"paypal_pete"},
		},
		{
			name:       "no tags",
			expression: `len(Tags) == 0`,
			want:       []string{"quiet_quinn"},
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			got := usernames(mustApply(t, filter, records))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("matched %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAndCreateFilter_Empty(t *testing.T) {
	filter, err := ParseAndCreateFilter("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := testRecords()
	if got := mustApply(t, filter, records); len(got) != len(records) {
		t.Errorf("empty filter matched %d records, want %d", len(got), len(records))
	}
}

func TestParseAndCreateFilter_Invalid(t *testing.T) {
	if _, err := ParseAndCreateFilter(`Username ==`); err == nil {
		t.Errorf("expected error but got none")
	}
}

func TestWithCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isHardware": func(subreddit string) bool {
			return strings.HasPrefix(subreddit, "hardware")
		},
	}))

	filter, err := compiler.Compile(`isHardware(Subreddit)`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	got := usernames(mustApply(t, filter, testRecords()))
	if len(got) != 1 || got[0] != "shady_sam" {
		t.Errorf("matched %v, want [shady_sam]", got)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()

	err := m.RegisterFilters(map[string]string{
		"scammers": `hasTag("#scammer")`,
		"recent":   `daysSince(BannedAt) < 7`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if names := m.ListFilters(); strings.Join(names, ",") != "recent,scammers" {
		t.Errorf("ListFilters() = %v", names)
	}

	filter, ok := m.GetFilter("scammers")
	if !ok {
		t.Fatalf("filter 'scammers' not registered")
	}
	if got := usernames(mustApply(t, filter, testRecords())); len(got) != 1 || got[0] != "paypal_pete" {
		t.Errorf("matched %v, want [paypal_pete]", got)
	}

	if _, ok := m.GetFilter("missing"); ok {
		t.Errorf("expected missing filter to be absent")
	}
}

func TestManager_RegisterFiltersAtomic(t *testing.T) {
	m := NewManager()

	err := m.RegisterFilters(map[string]string{
		"good": `Traditional`,
		"bad":  `Traditional and`,
	})
	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if !strings.Contains(err.Error(), "'bad'") {
		t.Errorf("error %q does not name the broken filter", err.Error())
	}
	if names := m.ListFilters(); len(names) != 0 {
		t.Errorf("expected no filters registered, got %v", names)
	}
}

func TestEvaluationError(t *testing.T) {
	inner := errors.New("boom")
	err := &EvaluationError{Expression: "Traditional", Username: "pete", Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("expected EvaluationError to unwrap to inner error")
	}
	want := "evaluation error for filter 'Traditional' on user 'pete': boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestApply_EvaluationError(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`Tags[0] == "#scammer" or Username == "b"`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	records := []usl.BanRecord{{Username: "a"}, {Username: "b"}}

	got, err := Apply(filter, records)
	if err == nil {
		t.Fatalf("expected evaluation error, matched %v", usernames(got))
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %T", err)
	}
	if evalErr.Username != "a" {
		t.Errorf("error names user %q, want %q", evalErr.Username, "a")
	}
	if got != nil {
		t.Errorf("expected no records on error, got %v", usernames(got))
	}

	// Evaluate hides the error and reports no match
	if filter.Evaluate(records[0]) {
		t.Errorf("expected Evaluate to be false for a failing record")
	}
}

func mustApply(t *testing.T, f CompiledFilter, records []usl.BanRecord) []usl.BanRecord {
	t.Helper()
	matched, err := Apply(f, records)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	return matched
}

func usernames(records []usl.BanRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Username)
	}
	return names
}
