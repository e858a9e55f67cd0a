package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skytrace/missionmap/internal/render"
	"github.com/skytrace/missionmap/pkg/core"
)

// Client talks to a running missionmap API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the API is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Missions returns the registry summary, newest mission first.
func (c *Client) Missions(ctx context.Context) (render.Summary, error) {
	var out render.Summary
	return out, c.getJSON(ctx, "/api/missions", &out)
}

// Markers returns the map markers of the ready missions.
func (c *Client) Markers(ctx context.Context) ([]core.Marker, error) {
	var out []core.Marker
	return out, c.getJSON(ctx, "/api/markers", &out)
}

// Remove deletes a mission.
func (c *Client) Remove(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/missions/"+id, nil)
	if err != nil {
		return fmt.Errorf("remove request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("remove returned status %d", resp.StatusCode)
	}
	return nil
}

// Hover resolves a chart sample against the selected mission. ok is false
// when the server has no position for it.
func (c *Client) Hover(ctx context.Context, sample core.ChartSample) (pos core.HoverPosition, ok bool, err error) {
	body, err := json.Marshal(sample)
	if err != nil {
		return pos, false, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/hover", bytes.NewReader(body))
	if err != nil {
		return pos, false, fmt.Errorf("hover request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return pos, false, nil
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
			return pos, false, fmt.Errorf("decode hover: %w", err)
		}
		return pos, true, nil
	default:
		return pos, false, fmt.Errorf("hover returned status %d", resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}
