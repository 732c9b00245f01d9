package route

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganbatte-hq/ganbatte/internal/geo"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// fakeRouter records the query it saw and returns canned legs.
type fakeRouter struct {
	calls       int
	origin      string
	destination string
	waypoints   []string
	route       *Route
	err         error
}

var _ RoutingProvider = (*fakeRouter)(nil)

func (f *fakeRouter) Route(ctx context.Context, origin, destination string, waypoints []string) (*Route, error) {
	f.calls++
	f.origin = origin
	f.destination = destination
	f.waypoints = waypoints
	return f.route, f.err
}

// fakeGeocoder resolves every address to a fixed point.
type fakeGeocoder struct {
	calls int
	err   error
}

var _ geo.Geocoder = (*fakeGeocoder)(nil)

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) ([]geo.GeocodeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []geo.GeocodeResult{{
		FormattedAddress: address,
		Location:         models.Coordinate{Lat: 33.7, Lng: -117.8},
	}}, nil
}

func TestEnrichSingleLeg(t *testing.T) {
	r := &fakeRouter{route: &Route{
		Legs:     []LegMetric{{DistanceMeters: 12000, DurationSeconds: 900}},
		Polyline: "abc123",
	}}
	e := NewEnricher(r, nil, nil, nil)

	m := e.EnrichLeg(context.Background(), "123 Main St, Irvine CA", "456 Oak Ave, Santa Ana CA")
	require.True(t, m.Available())
	assert.Equal(t, int64(12000), *m.DistanceMeters)
	assert.Equal(t, int64(900), *m.DurationSeconds)
	assert.Equal(t, "abc123", m.Polyline)
	assert.Empty(t, r.waypoints)
}

func TestEnrichEmptyEndpointSkipsProvider(t *testing.T) {
	r := &fakeRouter{route: &Route{Legs: []LegMetric{{DistanceMeters: 1, DurationSeconds: 1}}}}
	e := NewEnricher(r, nil, nil, nil)

	m := e.EnrichLeg(context.Background(), "", "123 Main St")
	assert.False(t, m.Available())
	assert.Nil(t, m.DistanceMeters)
	assert.Nil(t, m.DurationSeconds)
	assert.Zero(t, r.calls, "incomplete drafts must not reach the provider")
}

func TestEnrichProviderFailureDegrades(t *testing.T) {
	r := &fakeRouter{err: fmt.Errorf("503 backend error")}
	e := NewEnricher(r, nil, nil, nil)

	m := e.EnrichLeg(context.Background(), "123 Main St, Irvine CA", "456 Oak Ave, Santa Ana CA")
	assert.False(t, m.Available(), "provider failure means no metrics, not a pipeline error")
}

func TestEnrichMultiLegSumsAndOrdersWaypoints(t *testing.T) {
	r := &fakeRouter{route: &Route{Legs: []LegMetric{
		{DistanceMeters: 1000, DurationSeconds: 100},
		{DistanceMeters: 2000, DurationSeconds: 200},
		{DistanceMeters: 3000, DurationSeconds: 300},
	}}}
	e := NewEnricher(r, nil, nil, nil)

	legs := []models.Leg{
		{Pickup: "A St 1", Dropoff: "B St 2"},
		{Pickup: "B St 2", Dropoff: "C St 3"},
		{Pickup: "C St 3", Dropoff: "D St 4"},
	}

	m := e.Enrich(context.Background(), legs)
	require.True(t, m.Available())
	assert.Equal(t, int64(6000), *m.DistanceMeters, "total distance is the sum of the legs")
	assert.Equal(t, int64(600), *m.DurationSeconds)

	assert.Equal(t, "A St 1", r.origin)
	assert.Equal(t, "D St 4", r.destination)
	assert.Equal(t, []string{"B St 2", "C St 3"}, r.waypoints)
	assert.Equal(t, 1, r.calls, "multi-leg jobs issue a single routing call")
}

func TestGeocodeLegs(t *testing.T) {
	g := &fakeGeocoder{}
	e := NewEnricher(&fakeRouter{}, g, nil, nil)

	legs := []models.Leg{
		{Pickup: "123 Main St, Irvine CA", Dropoff: "456 Oak Ave, Santa Ana CA"},
		{Pickup: "456 Oak Ave, Santa Ana CA", Dropoff: "33.6846, -117.8265"},
	}

	out := e.GeocodeLegs(context.Background(), legs)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].PickupCoord)
	require.NotNil(t, out[0].DropoffCoord)
	require.NotNil(t, out[1].DropoffCoord)
	// Literal coordinates never hit the provider.
	assert.InDelta(t, 33.6846, out[1].DropoffCoord.Lat, 1e-9)
	assert.Equal(t, 3, g.calls)
}

func TestGeocodeLegsFailuresAreIndependent(t *testing.T) {
	g := &fakeGeocoder{err: fmt.Errorf("quota exceeded")}
	e := NewEnricher(&fakeRouter{}, g, nil, nil)

	legs := []models.Leg{
		{Pickup: "33.6846, -117.8265", Dropoff: "456 Oak Ave, Santa Ana CA"},
	}

	out := e.GeocodeLegs(context.Background(), legs)
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].PickupCoord, "literal coordinate resolves even when the provider is down")
	assert.Nil(t, out[0].DropoffCoord, "failed endpoint stays nil")
}
