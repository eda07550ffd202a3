package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"codeberg.org/tubetrack/server/internal/attribution"
	tea "github.com/charmbracelet/bubbletea"
)

// creates a REST client from TUBETRACK_API_ENDPOINT and TUBETRACK_TOKEN
func NewAPIClient() *APIClient {
	return &APIClient{
		endpoint:   strings.TrimSuffix(getEnv("TUBETRACK_API_ENDPOINT", "http://localhost:8080"), "/"),
		token:      getEnv("TUBETRACK_TOKEN", ""),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// fetches the impact of every tracked video
func (c *APIClient) Impact(ctx context.Context) ([]attribution.Result, error) {
	var resp struct {
		Videos []attribution.Result `json:"videos"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/v1/impact", http.StatusOK, &resp); err != nil {
		return nil, err
	}

	return resp.Videos, nil
}

// asks the server to snapshot the account's videos in the background
func (c *APIClient) TriggerRun(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/snapshots/run", http.StatusAccepted, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errResp apiErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}

		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that loads the impact report
func (c *APIClient) ImpactCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		results, err := c.Impact(ctx)
		if err != nil {
			return ImpactErrorMsg{err: err}
		}

		return ImpactLoadedMsg{results: results}
	}
}

// returns a tea.Cmd that starts a manual run
func (c *APIClient) TriggerRunCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := c.TriggerRun(ctx); err != nil {
			return RunErrorMsg{err: err}
		}

		return RunAcceptedMsg{}
	}
}

type apiErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
