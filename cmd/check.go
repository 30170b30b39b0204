package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/uslcheck/report"
	"github.com/s0up4200/uslcheck/usl"
)

var hashtags []string

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <username>...",
	Short: "Check whether users are banned",
	Long: `Look up one or more users on the Universal Scammer List.

Each name is queried separately in the simple format; the command reports
every user's ban flag and reason.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runCheck,
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:     "history <username>",
	Short:   "Show a user's ban history",
	Long:    `Show the per-subreddit ban history of a single user.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runHistory,
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, historyCmd} {
		c.Flags().StringSliceVar(&hashtags, "hashtags", nil, "hashtags to search (default from config)")
	}
}

// queryHashtags returns the flag value, falling back to the configured list
func queryHashtags() []string {
	if len(hashtags) > 0 {
		return hashtags
	}
	return cfg.USL.Hashtags
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := reportFormat()
	if err != nil {
		return err
	}

	var statuses []usl.BanStatus
	err = withSession(ctx, uslClient, func(s *usl.Session) error {
		statuses, err = checkUsers(ctx, uslClient, s, args)
		return err
	})
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), format, func(w *report.Writer) error {
		return w.Statuses(statuses)
	})
}

// checkUsers queries each name in turn, stopping at the first failure
func checkUsers(ctx context.Context, api usl.API, s *usl.Session, names []string) ([]usl.BanStatus, error) {
	statuses := make([]usl.BanStatus, 0, len(names))
	for _, name := range names {
		logger.Info().Str("user", name).Msg("Checking user")

		status, err := api.Check(ctx, s, name, queryHashtags())
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", name, err)
		}
		if status.Person == "" {
			status.Person = name
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := reportFormat()
	if err != nil {
		return err
	}

	var data json.RawMessage
	err = withSession(ctx, uslClient, func(s *usl.Session) error {
		logger.Info().Str("user", args[0]).Msg("Fetching ban history")

		data, err = uslClient.History(ctx, s, args[0], queryHashtags())
		if err != nil {
			return fmt.Errorf("failed to fetch history for %s: %w", args[0], err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), format, func(w *report.Writer) error {
		return w.Raw(data)
	})
}
