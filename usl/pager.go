package usl

import (
	"context"
	"errors"
	"fmt"
)

// ErrStopWalk can be returned by a WalkBans callback to end the walk early
// without an error.
var ErrStopWalk = errors.New("stop walk")

// WalkBans walks the version 2 bulk listing from startID, calling fn with
// every page until next_id is absent. A next_id that does not move past the
// start_id that produced it is reported as a malformed response so the walk
// always terminates.
//
// The listing can change between pages; callers must tolerate duplicates and
// omissions.
func (c *Client) WalkBans(ctx context.Context, s *Session, startID int64, limit int, fn func(*BulkPage) error) error {
	for pages := 1; ; pages++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := c.BulkQuery2(ctx, s, startID, limit)
		if err != nil {
			return err
		}

		c.logger.Debug().
			Int("page", pages).
			Int64("start_id", startID).
			Int("count", len(page.Bans)).
			Msg("Retrieved bulk page from USL")

		if err := fn(page); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}

		if !page.HasMore() {
			return nil
		}
		if *page.NextID <= startID {
			return malformedError(fmt.Sprintf("next_id %d does not advance past start_id %d", *page.NextID, startID), nil)
		}
		startID = *page.NextID
	}
}

// AllBans walks the whole version 2 listing and returns every record
func (c *Client) AllBans(ctx context.Context, s *Session, limit int) ([]BanRecord, error) {
	var all []BanRecord
	err := c.WalkBans(ctx, s, 0, limit, func(page *BulkPage) error {
		all = append(all, page.Bans...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
