package route

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/geo"
	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// Enricher computes trip metrics for finalized jobs. Provider failures
// degrade to "metrics unavailable"; they never block job creation.
type Enricher struct {
	provider  RoutingProvider
	geocoder  geo.Geocoder
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewEnricher creates a route enricher. The geocoder is used only by
// GeocodeLegs; collector may be nil.
func NewEnricher(provider RoutingProvider, geocoder geo.Geocoder, collector *metrics.Collector, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{provider: provider, geocoder: geocoder, collector: collector, logger: logger}
}

// EnrichLeg computes metrics for a single pickup/dropoff pair.
func (e *Enricher) EnrichLeg(ctx context.Context, pickup, dropoff string) models.RouteMetrics {
	return e.Enrich(ctx, []models.Leg{{Pickup: pickup, Dropoff: dropoff}})
}

// Enrich computes aggregated metrics across an ordered sequence of legs:
// origin is the first leg's pickup, destination the last leg's dropoff, and
// every intermediate dropoff becomes a waypoint in order. Per-leg values from
// the response are summed.
func (e *Enricher) Enrich(ctx context.Context, legs []models.Leg) models.RouteMetrics {
	if len(legs) == 0 {
		return models.RouteMetrics{}
	}

	// Incomplete drafts never reach the provider.
	for _, leg := range legs {
		if strings.TrimSpace(leg.Pickup) == "" || strings.TrimSpace(leg.Dropoff) == "" {
			return models.RouteMetrics{}
		}
	}

	origin := legs[0].Pickup
	destination := legs[len(legs)-1].Dropoff
	var waypoints []string
	for _, leg := range legs[:len(legs)-1] {
		waypoints = append(waypoints, leg.Dropoff)
	}

	start := time.Now()
	r, err := e.provider.Route(ctx, origin, destination, waypoints)
	if e.collector != nil {
		e.collector.RecordTiming(metrics.OpRoute, time.Since(start))
	}
	if err != nil {
		if e.collector != nil {
			e.collector.RecordError(metrics.OpRoute)
		}
		e.logger.Warn("route unavailable", "origin", origin, "destination", destination, "error", err)
		return models.RouteMetrics{}
	}

	var distance, duration int64
	for _, leg := range r.Legs {
		distance += leg.DistanceMeters
		duration += leg.DurationSeconds
	}

	return models.RouteMetrics{
		DistanceMeters:  &distance,
		DurationSeconds: &duration,
		Polyline:        r.Polyline,
	}
}

// GeocodeLegs resolves each leg's endpoint coordinates concurrently. Legs are
// independent: one endpoint's failure leaves only that coordinate nil. The
// returned slice preserves the input order.
func (e *Enricher) GeocodeLegs(ctx context.Context, legs []models.Leg) []models.Leg {
	out := make([]models.Leg, len(legs))
	copy(out, legs)

	var wg sync.WaitGroup
	resolve := func(dst **models.Coordinate, address string) {
		if *dst != nil {
			return // already known
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = e.resolveCoord(ctx, address)
		}()
	}
	for i := range out {
		resolve(&out[i].PickupCoord, out[i].Pickup)
		resolve(&out[i].DropoffCoord, out[i].Dropoff)
	}
	wg.Wait()

	return out
}

// resolveCoord turns an address into coordinates, preferring a literal
// coordinate parse over a provider call. Returns nil on any failure.
func (e *Enricher) resolveCoord(ctx context.Context, address string) *models.Coordinate {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	if coord, ok := geo.DetectCoordinate(address); ok {
		return &coord
	}
	if e.geocoder == nil {
		return nil
	}

	start := time.Now()
	results, err := e.geocoder.Geocode(ctx, address)
	if e.collector != nil {
		e.collector.RecordTiming(metrics.OpGeocode, time.Since(start))
	}
	if err != nil || len(results) == 0 {
		if err != nil && e.collector != nil {
			e.collector.RecordError(metrics.OpGeocode)
		}
		return nil
	}

	loc := results[0].Location
	return &loc
}
