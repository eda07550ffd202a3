package tui

import (
	"fmt"
	"os"
	"os/exec"

	"codeberg.org/tubetrack/server/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
)

func ensureBinary(path, pkg string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	buildCmd := exec.Command("go", "build", "-o", path, pkg)
	if err := buildCmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s: %w", pkg, err)
	}

	return nil
}

func startServer() tea.Msg {
	serverPath := "bin/server"

	if err := ensureBinary(serverPath, "./cmd/server"); err != nil {
		return ErrorMsg{err: err}
	}

	cmd := exec.Command(serverPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	go func() {
		if err := cmd.Run(); err != nil {
			logger.ErrorErr(err, "server error")
		}
	}()

	return ServerStartedMsg{}
}

// runs the tracker CLI once for every account
func runTracker() tea.Msg {
	trackerPath := "bin/tracker"

	if err := ensureBinary(trackerPath, "./cmd/tracker"); err != nil {
		return ErrorMsg{err: err}
	}

	cmd := exec.Command(trackerPath, "run")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return ErrorMsg{err: fmt.Errorf("tracker run failed: %w", err)}
	}

	return TrackerCompleteMsg{}
}
