package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/s0up4200/uslcheck/usl"
)

// generateTestRecords creates test ban data
func generateTestRecords(count int) []usl.BanRecord {
	records := make([]usl.BanRecord, count)
	tags := []string{"#scammer", "#sketchy", "#troll"}

	for i := 0; i < count; i++ {
		records[i] = usl.BanRecord{
			ID:          int64(i),
			Username:    fmt.Sprintf("user_%d", i),
			Traditional: i%2 == 0,
			BanReason:   fmt.Sprintf("reason %d", i%7),
			Subreddit:   []string{"borrow", "hardwareswap", "giftcardexchange"}[i%3],
			Tags:        tags[:(i%3)+1],
			BannedAt:    usl.MillisOf(time.Now().AddDate(0, 0, -i%400)),
		}
	}

	return records
}

func BenchmarkCompileFilter(b *testing.B) {
	compiler := NewExprCompiler()
	expression := `hasTag("#scammer") and daysSince(BannedAt) > 30`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := compiler.Compile(expression); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	filter, err := NewExprCompiler().Compile(`Traditional and hasTag("troll") and containsFold(Subreddit, "swap")`)
	if err != nil {
		b.Fatal(err)
	}

	for _, size := range sizes {
		records := generateTestRecords(size)
		b.Run(fmt.Sprintf("records_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Apply(filter, records); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
