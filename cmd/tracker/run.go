package main

import (
	"context"
	"fmt"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/scheduler"
	"codeberg.org/tubetrack/server/internal/youtube"
)

// snapshots the tracked videos of one or all accounts, once, right now
func Run(ctx context.Context, cfg *config.Config, deps *Deps, flags config.Flags) error {
	tokens := auth.NewTokenSources(auth.OAuthConfig(cfg), deps.Accounts)
	provider := youtube.NewProvider(tokens.For, deps.KV, cfg.CacheTTL)

	runner := scheduler.NewRunner(deps.Accounts, deps.Tracked, provider, deps.Snapshots, nil, scheduler.Options{
		AnchorHour: cfg.SnapshotHour,
		Location:   cfg.Location,
		CallDelay:  cfg.SnapshotCallDelay,
	})

	var (
		report *scheduler.RunReport
		err    error
	)

	if flags.Account != "" {
		report, err = runner.RunAccount(ctx, scheduler.TriggerManual, flags.Account)
	} else {
		report, err = runner.Run(ctx, scheduler.TriggerManual)
	}

	if report != nil {
		printReport(report)
	}

	if err != nil {
		return fmt.Errorf("snapshot run: %w", err)
	}

	if !report.Clean() {
		logger.Warn("snapshot run finished with failures", "failures", len(report.Failures))
	}

	return nil
}

func printReport(report *scheduler.RunReport) {
	fmt.Printf("run %s (%s) for %s\n", report.RunID, report.Trigger, report.Date)
	fmt.Printf("  accounts:  %d (%d failed)\n", report.Accounts, report.FailedAccounts)
	fmt.Printf("  recorded:  %d\n", report.Recorded)
	fmt.Printf("  not found: %d\n", report.NotFound)
	fmt.Printf("  failed:    %d\n", report.Failed)

	for _, f := range report.Failures {
		if f.VideoID != "" {
			fmt.Printf("  - %s/%s: %s\n", f.AccountID, f.VideoID, f.Reason)
		} else {
			fmt.Printf("  - %s: %s\n", f.AccountID, f.Reason)
		}
	}
}
