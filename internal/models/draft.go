// Package models defines data structures for the Ganbatte delivery pipeline.
package models

// Coordinate is a geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeadlineResolution is the outcome of normalizing a free-text deadline phrase.
// ISO and Display resolve or fail together: an empty ISO means the phrase could
// not be interpreted, and Display is empty as well.
type DeadlineResolution struct {
	ISO     string `json:"iso,omitempty"`
	Display string `json:"display,omitempty"`
}

// Resolved reports whether the deadline was successfully normalized.
func (d DeadlineResolution) Resolved() bool {
	return d.ISO != ""
}

// DraftJob is an in-progress job under construction via conversation.
// It is created fresh each turn from extraction output, merged against the
// previously confirmed draft when a clarification round targets one field,
// and discarded once a finalized job is persisted.
type DraftJob struct {
	// Parts are free-text item descriptions in mention order.
	Parts []string `json:"parts"`

	// Pickup and Dropoff are the raw location strings as extracted.
	Pickup  string `json:"pickup"`
	Dropoff string `json:"dropoff"`

	// PickupResolved/DropoffResolved hold the geocoder's formatted address
	// once validation succeeds.
	PickupResolved  string `json:"pickup_resolved,omitempty"`
	DropoffResolved string `json:"dropoff_resolved,omitempty"`

	PickupCoord  *Coordinate `json:"pickup_coord,omitempty"`
	DropoffCoord *Coordinate `json:"dropoff_coord,omitempty"`

	// Deadline is the raw phrase as supplied by the user.
	Deadline string `json:"deadline"`

	// DeadlineISO/DeadlineDisplay are set only after normalization succeeds.
	DeadlineISO     string `json:"deadline_iso,omitempty"`
	DeadlineDisplay string `json:"deadline_display,omitempty"`
}

// Complete reports whether the draft is ready for persistence: both endpoints
// validated and the deadline resolved to an absolute timestamp.
func (j *DraftJob) Complete() bool {
	return j.PickupResolved != "" && j.DropoffResolved != "" && j.DeadlineISO != ""
}

// Clone returns a deep copy of the draft.
func (j *DraftJob) Clone() *DraftJob {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Parts = append([]string(nil), j.Parts...)
	if j.PickupCoord != nil {
		c := *j.PickupCoord
		cp.PickupCoord = &c
	}
	if j.DropoffCoord != nil {
		c := *j.DropoffCoord
		cp.DropoffCoord = &c
	}
	return &cp
}
