package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/export"
	"codeberg.org/tubetrack/server/internal/logger"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/term"
)

// prints the impact of one video, or of every tracked video of the account
func Impact(ctx context.Context, deps *Deps, flags config.Flags) error {
	if flags.Account == "" {
		return fmt.Errorf("-account is required")
	}

	var results []attribution.Result

	if flags.Video != "" {
		if !errors.IsValidVideoID(flags.Video) {
			return fmt.Errorf("invalid video id %q", flags.Video)
		}

		results = []attribution.Result{deps.Attribution.VideoImpact(ctx, flags.Account, flags.Video)}
	} else {
		var err error
		if results, err = deps.Attribution.AccountImpact(ctx, flags.Account); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := export.MarkdownSummary(&buf, "Playlist impact", results); err != nil {
		return err
	}

	return printMarkdown(os.Stdout, buf.String())
}

// writes the report of one video in the requested format
func Export(ctx context.Context, deps *Deps, flags config.Flags) error {
	if flags.Account == "" || flags.Video == "" {
		return fmt.Errorf("-account and -video are required")
	}

	format, err := export.ParseFormat(flags.Format)
	if err != nil {
		return err
	}

	history := deps.Snapshots.For(flags.Account).Snapshots(ctx, flags.Video)
	report := export.NewReport(flags.Video, history, time.Now())

	var out io.Writer = os.Stdout

	if flags.Output != "" {
		f, err := os.Create(flags.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", flags.Output, err)
		}
		defer f.Close() //nolint:errcheck // write errors surface from export.Write

		out = f
	}

	if err := export.Write(out, format, report); err != nil {
		return err
	}

	if flags.Output != "" {
		logger.Info("report written", "path", flags.Output, "snapshots", len(history), "format", string(format))
	}

	return nil
}

// deletes the snapshot history of one video
func Clear(ctx context.Context, deps *Deps, flags config.Flags) error {
	if flags.Account == "" || flags.Video == "" {
		return fmt.Errorf("-account and -video are required")
	}

	if err := deps.Snapshots.For(flags.Account).Clear(ctx, flags.Video); err != nil {
		return err
	}

	logger.Info("snapshot history cleared", "account_id", flags.Account, "video_id", flags.Video)
	return nil
}

// renders markdown for a terminal, or writes it raw when piped
func printMarkdown(w io.Writer, markdown string) error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		_, err := io.WriteString(w, markdown)
		return err
	}

	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		width = 100
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return err
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}
