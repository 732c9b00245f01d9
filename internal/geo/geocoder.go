package geo

import (
	"context"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// GeocodeResult is one candidate returned by the geocoding provider.
type GeocodeResult struct {
	FormattedAddress string
	Location         models.Coordinate
}

// Geocoder resolves free-text addresses to coordinates. Implementations
// return an empty slice (not an error) when the provider found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]GeocodeResult, error)
}
