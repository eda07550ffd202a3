package config

import (
	"flag"
)

// parses flags for the run subcommand
func ParseRunFlags(args []string) Flags {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	account := fs.String("account", "", "only snapshot this account id (default: all accounts)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Account: *account}
}

// parses flags for the impact subcommand
func ParseImpactFlags(args []string) Flags {
	fs := flag.NewFlagSet("impact", flag.ExitOnError)
	account := fs.String("account", "", "account id (required)")
	video := fs.String("video", "", "video id (default: every tracked video)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Account: *account, Video: *video}
}

// parses flags for the export subcommand
func ParseExportFlags(args []string) Flags {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	account := fs.String("account", "", "account id (required)")
	video := fs.String("video", "", "video id (required)")
	format := fs.String("format", "csv", "output format: csv, json, yaml or markdown")
	output := fs.String("out", "", "output file (default: stdout)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Account: *account, Video: *video, Format: *format, Output: *output}
}

// parses flags for the clear subcommand
func ParseClearFlags(args []string) Flags {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	account := fs.String("account", "", "account id (required)")
	video := fs.String("video", "", "video id (required)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Account: *account, Video: *video}
}
