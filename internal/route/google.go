package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/config"
)

// Compile-time interface check.
var _ RoutingProvider = (*GoogleRouter)(nil)

// GoogleRouter queries the Google Directions API.
type GoogleRouter struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGoogleRouter creates a directions client. A missing API key is fatal at
// this boundary.
func NewGoogleRouter(cfg config.Config, logger *slog.Logger) (*GoogleRouter, error) {
	if cfg.MapsAPIKey == "" {
		return nil, fmt.Errorf("maps API key required (set GANBATTE_MAPS_API_KEY)")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleRouter{
		apiKey:   cfg.MapsAPIKey,
		endpoint: cfg.DirectionsURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int64 `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
	ErrorMessage string `json:"error_message"`
}

// Route fetches directions. Returns an error for any non-OK provider status;
// the enricher degrades that to "no metrics".
func (g *GoogleRouter) Route(ctx context.Context, origin, destination string, waypoints []string) (*Route, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	if len(waypoints) > 0 {
		q.Set("waypoints", strings.Join(waypoints, "|"))
	}
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("directions API error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("directions status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	best := decoded.Routes[0]
	out := &Route{Polyline: best.OverviewPolyline.Points}
	for _, leg := range best.Legs {
		out.Legs = append(out.Legs, LegMetric{
			DistanceMeters:  leg.Distance.Value,
			DurationSeconds: leg.Duration.Value,
		})
	}

	g.logger.Debug("route.done",
		"origin", origin,
		"destination", destination,
		"waypoints", len(waypoints),
		"legs", len(out.Legs),
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}
