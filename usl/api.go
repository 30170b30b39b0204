package usl

import (
	"context"
	"encoding/json"
)

// API defines the interface for USL operations
type API interface {
	// Login exchanges credentials for a session
	Login(ctx context.Context, username, password string, duration Duration) (*Session, error)

	// Logout invalidates a session and returns its cleared copy
	Logout(ctx context.Context, s *Session) (*Session, error)

	// Query looks up a single person in the given format
	Query(ctx context.Context, s *Session, query string, format Format, hashtags []string) (json.RawMessage, error)

	// Check looks up a single person in FormatSimple
	Check(ctx context.Context, s *Session, query string, hashtags []string) (*BanStatus, error)

	// History looks up a single person in FormatHistory
	History(ctx context.Context, s *Session, query string, hashtags []string) (json.RawMessage, error)

	// BulkQuery performs a version 1 bulk listing
	BulkQuery(ctx context.Context, s *Session, p BulkParams) (json.RawMessage, error)

	// BulkQuery2 fetches one page of the version 2 bulk listing
	BulkQuery2(ctx context.Context, s *Session, startID int64, limit int) (*BulkPage, error)
}

// BanWalker walks the version 2 bulk listing
type BanWalker interface {
	// WalkBans calls fn for every page starting at startID
	WalkBans(ctx context.Context, s *Session, startID int64, limit int, fn func(*BulkPage) error) error

	// AllBans collects every record of the listing
	AllBans(ctx context.Context, s *Session, limit int) ([]BanRecord, error)
}

var (
	_ API       = (*Client)(nil)
	_ BanWalker = (*Client)(nil)
)
