package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/uslcheck/usl"
)

func sampleRecords() []usl.BanRecord {
	return []usl.BanRecord{
		{
			ID:          1,
			Username:    "paypal_pete",
			Traditional: true,
			BanReason:   "Chargeback scam",
			Subreddit:   "borrow",
			Tags:        []string{"#scammer"},
			BannedAt:    usl.MillisOf(time.Date(2021, 12, 31, 23, 59, 59, 999e6, time.UTC)),
		},
		{
			ID:       4,
			Username: "quiet_quinn",
		},
	}
}

func TestFormatBanStatuses(t *testing.T) {
	f := NewConsoleFormatter()

	out := f.FormatBanStatuses([]usl.BanStatus{
		{Person: "alice"},
		{Person: "bob", Banned: true, BanReason: "sold fake gift cards"},
	})

	assert.Contains(t, out, "Results (2):")
	assert.Contains(t, out, "├── alice: not banned\n")
	assert.Contains(t, out, "╰── bob: BANNED\n    Reason: sold fake gift cards\n")
	assert.Contains(t, out, "1 of 2 banned")

	assert.Equal(t, "No users checked", f.FormatBanStatuses(nil))
}

func TestFormatBanRecords(t *testing.T) {
	f := NewConsoleFormatter()

	out := f.FormatBanRecords(sampleRecords())

	assert.Contains(t, out, "Bans (2):")
	assert.Contains(t, out, "├── paypal_pete [#scammer]\n")
	assert.Contains(t, out, "│   Subreddit: borrow | Traditional | Banned: 2021-12-31\n")
	assert.Contains(t, out, "│   Reason: Chargeback scam\n│\n")
	assert.True(t, strings.HasSuffix(out, "╰── quiet_quinn\n\n"), "unexpected tail: %q", out)

	single := f.FormatBanRecords(sampleRecords()[:1])
	assert.Contains(t, single, "Ban (1):")
	assert.Contains(t, single, "╰── paypal_pete")

	assert.Equal(t, "No bans found", f.FormatBanRecords(nil))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"console", "json", "yaml"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestWriter_RecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON).Records(sampleRecords()))

	var got []usl.BanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleRecords(), got)
	assert.Contains(t, buf.String(), `"banned_at": 1640995199999`)
}

func TestWriter_EmptyRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON).Records(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriter_RecordsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatYAML).Records(sampleRecords()))

	assert.Contains(t, buf.String(), "username: paypal_pete")
	assert.Contains(t, buf.String(), "banned_at: 1640995199999")

	var got []usl.BanRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleRecords(), got)
}

func TestWriter_StatusesYAML(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf, FormatYAML).Statuses([]usl.BanStatus{
		{Person: "bob", Banned: true, BanReason: "scam"},
	})
	require.NoError(t, err)

	assert.Equal(t, "- person: bob\n  banned: true\n  ban_reason: scam\n", buf.String())
}

func TestWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatConsole)

	require.NoError(t, w.Statuses([]usl.BanStatus{{Person: "alice"}}))
	assert.Contains(t, buf.String(), "╰── alice: not banned")
}

func TestWriter_Raw(t *testing.T) {
	payload := json.RawMessage(`{"person":"bob","history":[{"subreddit":"borrow","banned":true}]}`)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(&buf, FormatJSON).Raw(payload))
		assert.JSONEq(t, string(payload), buf.String())
		assert.Contains(t, buf.String(), "\n  \"history\"")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(&buf, FormatYAML).Raw(payload))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "bob", got["person"])
		assert.Contains(t, buf.String(), "subreddit: borrow")
	})

	t.Run("invalid", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewWriter(&buf, FormatJSON).Raw(json.RawMessage(`{`)))
	})
}
