package usl

import (
	"encoding/json"
	"time"
)

// Duration selects the server-side lifetime of a session
type Duration string

const (
	// DurationOneDay keeps the session for a day
	DurationOneDay Duration = "1day"
	// DurationThirtyDays keeps the session for thirty days
	DurationThirtyDays Duration = "30days"
	// DurationForever keeps the session until logout
	DurationForever Duration = "forever"
)

// Valid checks if d is one of the durations the login endpoint accepts
func (d Duration) Valid() bool {
	switch d {
	case DurationOneDay, DurationThirtyDays, DurationForever:
		return true
	}
	return false
}

// Format selects the response shape of a single query
type Format int

const (
	// FormatSimple returns a ban flag and the matched person
	FormatSimple Format = 1
	// FormatHistory returns the full per-subreddit history
	FormatHistory Format = 2
)

// WhitelistedHashtags can be queried without elevated permission
var WhitelistedHashtags = []string{"#scammer", "#sketchy", "#troll"}

// Session is an authenticated identity returned by Login
type Session struct {
	Username string
	Token    string
	// ExpiresAt is advisory; the zero value means the server gave no expiry
	ExpiresAt time.Time
}

// Valid reports whether the session still carries a token
func (s Session) Valid() bool {
	return s.Token != ""
}

// Expired reports whether the server-supplied expiry has passed at now.
// Sessions without an expiry never report expired.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// invalidated returns a copy with the credential cleared
func (s Session) invalidated() Session {
	return Session{Username: s.Username}
}

// BanStatus is the data of a FormatSimple query
type BanStatus struct {
	Person    string `json:"person" yaml:"person"`
	Banned    bool   `json:"banned" yaml:"banned"`
	BanReason string `json:"ban_reason,omitempty" yaml:"ban_reason,omitempty"`
}

// BanRecord is a single entry of a bulk listing
type BanRecord struct {
	ID          int64    `json:"id,omitempty" yaml:"id,omitempty"`
	Username    string   `json:"username" yaml:"username"`
	Traditional bool     `json:"traditional,omitempty" yaml:"traditional,omitempty"`
	BanReason   string   `json:"ban_reason,omitempty" yaml:"ban_reason,omitempty"`
	Subreddit   string   `json:"subreddit,omitempty" yaml:"subreddit,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	// BannedAt is milliseconds since the UTC epoch
	BannedAt Millis `json:"banned_at,omitempty" yaml:"banned_at,omitempty"`
}

// BulkPage is one batch of the version 2 bulk listing
type BulkPage struct {
	Bans []BanRecord `json:"bans"`
	// NextID is nil once the listing is exhausted
	NextID *int64 `json:"next_id"`
}

// HasMore checks if there is another page to fetch
func (p *BulkPage) HasMore() bool {
	return p.NextID != nil
}

// UnmarshalJSON accepts the batch under either "bans" or "records"
func (p *BulkPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Bans    []BanRecord `json:"bans"`
		Records []BanRecord `json:"records"`
		NextID  *int64      `json:"next_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Bans = raw.Bans
	if p.Bans == nil {
		p.Bans = raw.Records
	}
	p.NextID = raw.NextID
	return nil
}

// Millis is a UTC epoch timestamp in milliseconds, as the bulk endpoints use
type Millis int64

// MillisOf converts t to epoch milliseconds
func MillisOf(t time.Time) Millis {
	return Millis(t.UTC().UnixMilli())
}

// Time converts m back to a UTC time
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// BulkParams selects one of the version 1 bulk listings.
//
//   - neither set: grandfathered users
//   - Offset only: non-grandfathered bans, skipping Offset entries
//   - Offset and Since: as above, ignoring bans after Since
type BulkParams struct {
	Offset *int
	Since  *Millis
}

// Grandfathered reports whether the params select the grandfathered listing
func (p BulkParams) Grandfathered() bool {
	return p.Offset == nil && p.Since == nil
}

// AtOffset returns params for the non-grandfathered listing starting at offset
func AtOffset(offset int) BulkParams {
	return BulkParams{Offset: &offset}
}

// SinceMillis returns a copy bounded by ms
func (p BulkParams) SinceMillis(ms Millis) BulkParams {
	p.Since = &ms
	return p
}

// SinceTime returns a copy bounded by t, converted to epoch milliseconds
func (p BulkParams) SinceTime(t time.Time) BulkParams {
	return p.SinceMillis(MillisOf(t))
}

// envelope is the wrapper every JSON endpoint returns
type envelope struct {
	Success      *bool           `json:"success"`
	Data         json.RawMessage `json:"data"`
	ErrorType    string          `json:"error_type"`
	ErrorMessage string          `json:"error_message"`
}
