package report

import (
	"fmt"
	"strings"

	"github.com/s0up4200/uslcheck/usl"
)

const dateLayout = "2006-01-02"

// ConsoleFormatter provides tree-style console output for query results
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatBanStatuses formats the results of simple queries
func (f *ConsoleFormatter) FormatBanStatuses(statuses []usl.BanStatus) string {
	if len(statuses) == 0 {
		return "No users checked"
	}

	var sb strings.Builder
	var bannedCount int

	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(statuses), "Result"), len(statuses))

	for i, status := range statuses {
		isLast := i == len(statuses)-1
		prefix, indent := branch(isLast)

		verdict := "not banned"
		if status.Banned {
			verdict = "BANNED"
			bannedCount++
		}
		fmt.Fprintf(&sb, "%s── %s: %s\n", prefix, status.Person, verdict)

		if status.BanReason != "" {
			fmt.Fprintf(&sb, "%sReason: %s\n", indent, status.BanReason)
		}
	}

	fmt.Fprintf(&sb, "\n%d of %d banned\n", bannedCount, len(statuses))
	return sb.String()
}

// FormatBanRecords formats bulk listing entries
func (f *ConsoleFormatter) FormatBanRecords(records []usl.BanRecord) string {
	if len(records) == 0 {
		return "No bans found"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(records), "Ban"), len(records))

	for i, record := range records {
		isLast := i == len(records)-1
		f.formatRecord(&sb, record, isLast)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) formatRecord(sb *strings.Builder, record usl.BanRecord, isLast bool) {
	prefix, indent := branch(isLast)

	fmt.Fprintf(sb, "%s── %s", prefix, record.Username)
	if len(record.Tags) > 0 {
		fmt.Fprintf(sb, " [%s]", strings.Join(record.Tags, " "))
	}
	sb.WriteString("\n")

	var parts []string
	if record.Subreddit != "" {
		parts = append(parts, fmt.Sprintf("Subreddit: %s", record.Subreddit))
	}
	if record.Traditional {
		parts = append(parts, "Traditional")
	}
	if record.BannedAt != 0 {
		parts = append(parts, fmt.Sprintf("Banned: %s", record.BannedAt.Time().Format(dateLayout)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))
	}

	if record.BanReason != "" {
		fmt.Fprintf(sb, "%sReason: %s\n", indent, record.BanReason)
	}
}

// branch returns the tree prefix for an entry and the indent for its details
func branch(isLast bool) (string, string) {
	if isLast {
		return "╰", "    "
	}
	return "├", "│   "
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
