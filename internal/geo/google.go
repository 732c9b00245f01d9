package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/config"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// Compile-time interface check.
var _ Geocoder = (*GoogleGeocoder)(nil)

// GoogleGeocoder resolves addresses via the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGoogleGeocoder creates a geocoding client. A missing API key is fatal at
// this boundary.
func NewGoogleGeocoder(cfg config.Config, logger *slog.Logger) (*GoogleGeocoder, error) {
	if cfg.MapsAPIKey == "" {
		return nil, fmt.Errorf("maps API key required (set GANBATTE_MAPS_API_KEY)")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleGeocoder{
		apiKey:   cfg.MapsAPIKey,
		endpoint: cfg.GeocodeURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode resolves an address. ZERO_RESULTS comes back as an empty slice;
// other non-OK statuses are errors.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocode API error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []GeocodeResult{}, nil
	default:
		return nil, fmt.Errorf("geocode status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	results := make([]GeocodeResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, GeocodeResult{
			FormattedAddress: r.FormattedAddress,
			Location: models.Coordinate{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
		})
	}

	g.logger.Debug("geocode.done",
		"address", address,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())

	return results, nil
}
