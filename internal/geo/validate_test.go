package geo

import (
	"context"
	"fmt"
	"testing"

	"github.com/ganbatte-hq/ganbatte/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeocoder is a deterministic Geocoder for tests.
type fakeGeocoder struct {
	calls   int
	results []GeocodeResult
	err     error
}

var _ Geocoder = (*fakeGeocoder)(nil)

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	f.calls++
	return f.results, f.err
}

func okGeocoder() *fakeGeocoder {
	return &fakeGeocoder{results: []GeocodeResult{{
		FormattedAddress: "123 Main St, Irvine, CA 92614, USA",
		Location:         models.Coordinate{Lat: 33.6846, Lng: -117.8265},
	}}}
}

func TestValidateHeuristicRejects(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"empty", ""},
		{"too short", "12 Elm"},
		{"vague my shop", "pick it up from my shop please"},
		{"vague home", "deliver it home today"},
		{"vague garage", "it's in the garage somewhere"},
		{"vague the shop", "over at the shop"},
		{"no digit", "Main Street near the park"},
		{"city state only", "Irvine, CA"},
		{"city state long", "Santa Ana, California"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := okGeocoder()
			v := NewValidator(g, nil)

			res := v.Validate(context.Background(), tt.address)
			assert.False(t, res.Valid)
			assert.Zero(t, g.calls, "heuristic reject must not call the geocoder")
		})
	}
}

func TestValidateCoordinateShortCircuit(t *testing.T) {
	g := okGeocoder()
	v := NewValidator(g, nil)

	res := v.Validate(context.Background(), "33.6846, -117.8265")
	require.True(t, res.Valid)
	require.NotNil(t, res.Coord)
	assert.InDelta(t, 33.6846, res.Coord.Lat, 1e-9)
	assert.Zero(t, g.calls, "coordinate input must not be geocoded")
}

func TestValidateGeocodes(t *testing.T) {
	g := okGeocoder()
	v := NewValidator(g, nil)

	res := v.Validate(context.Background(), "123 Main St, Irvine CA")
	require.True(t, res.Valid)
	assert.Equal(t, "123 Main St, Irvine, CA 92614, USA", res.Resolved)
	require.NotNil(t, res.Coord)
	assert.Equal(t, 1, g.calls)
}

func TestValidateIdempotent(t *testing.T) {
	g := okGeocoder()
	v := NewValidator(g, nil)

	first := v.Validate(context.Background(), "123 Main St, Irvine CA")
	second := v.Validate(context.Background(), "123 Main St, Irvine CA")

	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Resolved, second.Resolved)
}

func TestValidateProviderFailureIsInvalid(t *testing.T) {
	v := NewValidator(&fakeGeocoder{err: fmt.Errorf("connection refused")}, nil)

	res := v.Validate(context.Background(), "123 Main St, Irvine CA")
	assert.False(t, res.Valid, "provider failure degrades to invalid, never panics or errors")
}

func TestValidateNoResultsIsInvalid(t *testing.T) {
	v := NewValidator(&fakeGeocoder{results: []GeocodeResult{}}, nil)

	res := v.Validate(context.Background(), "999999 Nowhere Blvd, Atlantis")
	assert.False(t, res.Valid)
}
