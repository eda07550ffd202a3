package main

import (
	"fmt"
	"os"

	"codeberg.org/tubetrack/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "tubetrack tui needs an interactive terminal, use the tracker CLI instead")
		os.Exit(1)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	app := tui.NewApp(env)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running tubetrack: %v\n", err)
		os.Exit(1)
	}
}
