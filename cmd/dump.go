package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/uslcheck/filter"
	"github.com/s0up4200/uslcheck/report"
	"github.com/s0up4200/uslcheck/usl"
)

var (
	filterExpr string
	preset     string
	pageSize   int
	startID    int64
	maxResults int

	legacyOffset        int
	legacySince         string
	legacyGrandfathered bool
)

// errMaxResults ends a dump once enough records matched
var errMaxResults = errors.New("max results reached")

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the ban listing",
	Long: `Walk the whole ban listing page by page and print every ban that
matches the filter expression.

Filter expressions can use the fields ID, Username, BanReason, Traditional,
Subreddit, Tags and BannedAt, and helpers such as hasTag("#scammer"),
containsFold(BanReason, "paypal") or daysSince(BannedAt) < 30. The built-in
operators contains, startsWith and endsWith match case-sensitively, e.g.
BanReason contains "PayPal".`,
	Example: `  uslcheck dump --filter 'hasTag("#scammer") and daysSince(BannedAt) < 30'
  uslcheck dump --preset recent --format json --output bans.json`,
	PreRunE: initializeApp,
	RunE:    runDump,
}

// legacyDumpCmd represents the legacy-dump command
var legacyDumpCmd = &cobra.Command{
	Use:   "legacy-dump",
	Short: "Dump bans with the offset based bulk query",
	Long: `Query the older offset based bulk listing.

Without flags the grandfathered users are listed. --offset skips that many
non-grandfathered bans, and --since additionally ignores bans after the
given time (RFC3339, YYYY-MM-DD or epoch milliseconds).`,
	PreRunE: initializeApp,
	RunE:    runLegacyDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	dumpCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	dumpCmd.Flags().IntVar(&pageSize, "limit", 0, "bans per page (default from config)")
	dumpCmd.Flags().Int64Var(&startID, "start-id", 0, "first ban id to fetch")
	dumpCmd.Flags().IntVar(&maxResults, "max", 0, "stop after this many matches (0 for no limit)")

	legacyDumpCmd.Flags().IntVar(&legacyOffset, "offset", -1, "skip this many non-grandfathered bans")
	legacyDumpCmd.Flags().StringVar(&legacySince, "since", "", "ignore bans after this time (requires --offset)")
	legacyDumpCmd.Flags().BoolVar(&legacyGrandfathered, "grandfathered", false, "decode the grandfathered listing into records")
}

// flagFilterName registers the --filter expression next to the presets
const flagFilterName = "--filter"

// resolveFilter compiles the filter selected by the flags.
// Priority: command line filter > preset > default. Presets are all
// compiled up front so a broken preset is reported even when unused.
func resolveFilter() (filter.CompiledFilter, error) {
	presets := filter.NewManager()
	exprs := make(map[string]string, len(cfg.Filter.Presets))
	for name, p := range cfg.Filter.Presets {
		exprs[name] = p.Expression
	}
	if err := presets.RegisterFilters(exprs); err != nil {
		return nil, fmt.Errorf("invalid filter preset: %w", err)
	}

	switch {
	case filterExpr != "":
		if err := presets.RegisterFilter(flagFilterName, filterExpr); err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		f, _ := presets.GetFilter(flagFilterName)
		return f, nil

	case preset != "":
		f, ok := presets.GetFilter(preset)
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config (available: %s)", preset, strings.Join(presets.ListFilters(), ", "))
		}
		return f, nil
	}

	// An empty default dumps everything
	f, err := filter.ParseAndCreateFilter(cfg.Filter.DefaultExpression)
	if err != nil {
		return nil, fmt.Errorf("invalid default filter: %w", err)
	}
	return f, nil
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := resolveFilter()
	if err != nil {
		return err
	}

	limit := cfg.Bulk.PageSize
	if pageSize > 0 {
		limit = pageSize
	}

	format, err := reportFormat()
	if err != nil {
		return err
	}

	logger.Info().
		Str("filter", f.Expression()).
		Int("limit", limit).
		Int64("start_id", startID).
		Msg("Dumping ban listing")

	var matched []usl.BanRecord
	err = withSession(ctx, uslClient, func(s *usl.Session) error {
		matched, err = dumpBans(ctx, uslClient, s, startID, limit, f, maxResults)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info().Int("matched", len(matched)).Msg("Dump complete")
	return writeReport(cmd.OutOrStdout(), format, func(w *report.Writer) error {
		return w.Records(matched)
	})
}

// dumpBans walks the listing on one goroutine and filters pages on another.
// The session is only ever used by the walking goroutine.
func dumpBans(ctx context.Context, walker usl.BanWalker, s *usl.Session, from int64, limit int, f filter.CompiledFilter, maxMatches int) ([]usl.BanRecord, error) {
	g, ctx := errgroup.WithContext(ctx)
	pages := make(chan []usl.BanRecord, 4)

	// Producer: fetch pages
	g.Go(func() error {
		defer close(pages)
		return walker.WalkBans(ctx, s, from, limit, func(page *usl.BulkPage) error {
			select {
			case pages <- page.Bans:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	// Consumer: filter pages in order; an evaluation error ends the dump
	var matched []usl.BanRecord
	g.Go(func() error {
		for bans := range pages {
			hits, err := filter.Apply(f, bans)
			if err != nil {
				return err
			}
			for _, record := range hits {
				matched = append(matched, record)
				if maxMatches > 0 && len(matched) >= maxMatches {
					return errMaxResults
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errMaxResults) {
		return nil, err
	}
	return matched, nil
}

func runLegacyDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := legacyParams()
	if err != nil {
		return err
	}
	if legacyGrandfathered && !params.Grandfathered() {
		return fmt.Errorf("--grandfathered cannot be combined with --offset or --since")
	}

	format, err := reportFormat()
	if err != nil {
		return err
	}

	var (
		records []usl.BanRecord
		data    json.RawMessage
	)
	err = withSession(ctx, uslClient, func(s *usl.Session) error {
		if legacyGrandfathered {
			records, err = uslClient.Grandfathered(ctx, s)
			if err != nil {
				return fmt.Errorf("failed to fetch grandfathered users: %w", err)
			}
			return nil
		}

		data, err = uslClient.BulkQuery(ctx, s, params)
		if err != nil {
			return fmt.Errorf("bulk query failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), format, func(w *report.Writer) error {
		if legacyGrandfathered {
			return w.Records(records)
		}
		return w.Raw(data)
	})
}

// legacyParams builds the bulk query parameters from the command flags
func legacyParams() (usl.BulkParams, error) {
	var params usl.BulkParams
	if legacyOffset >= 0 {
		params = usl.AtOffset(legacyOffset)
	}

	if legacySince != "" {
		if params.Offset == nil {
			return usl.BulkParams{}, fmt.Errorf("--since requires --offset")
		}
		since, err := parseSince(legacySince)
		if err != nil {
			return usl.BulkParams{}, err
		}
		params = params.SinceMillis(since)
	}

	return params, nil
}

// parseSince accepts epoch milliseconds, RFC3339 or a YYYY-MM-DD date in UTC
func parseSince(value string) (usl.Millis, error) {
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid --since value %q: must not be negative", value)
		}
		return usl.Millis(ms), nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return usl.MillisOf(t), nil
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return usl.MillisOf(t), nil
	}

	return 0, fmt.Errorf("invalid --since value %q: use RFC3339, YYYY-MM-DD or epoch milliseconds", value)
}
