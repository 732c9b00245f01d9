package models

// Leg is one pickup to dropoff segment of a possibly multi-stop job.
type Leg struct {
	Pickup       string      `json:"pickup"`
	Dropoff      string      `json:"dropoff"`
	PickupCoord  *Coordinate `json:"pickup_coord,omitempty"`
	DropoffCoord *Coordinate `json:"dropoff_coord,omitempty"`
}

// RouteMetrics holds trip totals from the routing provider. Nil fields mean
// "no route info available"; job creation proceeds without them.
type RouteMetrics struct {
	DistanceMeters  *int64 `json:"distance_meters"`
	DurationSeconds *int64 `json:"duration_seconds"`
	Polyline        string `json:"polyline,omitempty"`
}

// Available reports whether the provider returned usable metrics.
func (m RouteMetrics) Available() bool {
	return m.DistanceMeters != nil && m.DurationSeconds != nil
}
