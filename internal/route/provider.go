// Package route computes trip distance/duration for finalized jobs via an
// external routing provider.
package route

import "context"

// LegMetric is one leg's totals as reported by the routing provider.
type LegMetric struct {
	DistanceMeters  int64
	DurationSeconds int64
}

// Route is one candidate route with ordered legs.
type Route struct {
	Legs     []LegMetric
	Polyline string
}

// RoutingProvider answers origin/destination/waypoints queries. Swappable for
// a deterministic fake in tests.
type RoutingProvider interface {
	Route(ctx context.Context, origin, destination string, waypoints []string) (*Route, error)
}
