package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/logger"
)

func usage() {
	fmt.Println("Usage: tracker <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  run     - snapshot every tracked video now")
	fmt.Println("  impact  - print the playlist impact of an account's videos")
	fmt.Println("  export  - write the impact report of one video")
	fmt.Println("  clear   - delete the snapshot history of one video")
	fmt.Println("\nRun 'tracker <command> -h' for the options of a command.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect", "error", err)
	}
	defer deps.Close()

	switch command {
	case "run":
		err = Run(ctx, cfg, deps, config.ParseRunFlags(args))

	case "impact":
		err = Impact(ctx, deps, config.ParseImpactFlags(args))

	case "export":
		err = Export(ctx, deps, config.ParseExportFlags(args))

	case "clear":
		err = Clear(ctx, deps, config.ParseClearFlags(args))

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		logger.Fatal(command+" failed", "error", err)
	}
}
