package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Nominatim queries an OpenStreetMap Nominatim reverse endpoint.
type Nominatim struct {
	baseURL    string
	language   string
	userAgent  string
	httpClient *http.Client
}

// NewNominatim creates a client. timeout <= 0 uses 10 seconds.
func NewNominatim(baseURL, language, userAgent string, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Place is a full reverse-geocoding answer.
type Place struct {
	Label       string
	DisplayName string
	Address     map[string]string
}

// Label implements Lookup.
func (n *Nominatim) Label(ctx context.Context, lat, lng float64) (string, error) {
	p, err := n.Reverse(ctx, lat, lng)
	if err != nil {
		return "", err
	}
	return p.Label, nil
}

// Reverse performs the HTTP lookup.
func (n *Nominatim) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	if n.language != "" {
		q.Set("accept-language", n.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("failed to create request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("reverse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("reverse returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("decoding reverse response: %w", err)
	}
	if body.Error != "" {
		return Place{}, fmt.Errorf("%w: %s", ErrNoResult, body.Error)
	}

	label := ShortLabel(body.DisplayName)
	if label == "" {
		return Place{}, ErrNoResult
	}
	return Place{Label: label, DisplayName: body.DisplayName, Address: body.Address}, nil
}

// ShortLabel keeps the first three comma separated parts of a display name.
func ShortLabel(displayName string) string {
	parts := strings.Split(displayName, ",")
	out := make([]string, 0, 3)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == 3 {
			break
		}
	}
	return strings.Join(out, ", ")
}
