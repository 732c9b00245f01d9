package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// JobStatus is the lifecycle tag of a persisted delivery job.
type JobStatus string

const (
	JobStatusPendingQuote JobStatus = "pending_quote"
	JobStatusScheduled    JobStatus = "scheduled"
	JobStatusPickedUp     JobStatus = "picked_up"
	JobStatusInTransit    JobStatus = "in_transit"
	JobStatusDelivered    JobStatus = "delivered"
	JobStatusCancelled    JobStatus = "cancelled"
)

// jobStatusOrder defines the forward progression used for progress display.
var jobStatusOrder = []JobStatus{
	JobStatusPendingQuote,
	JobStatusScheduled,
	JobStatusPickedUp,
	JobStatusInTransit,
	JobStatusDelivered,
}

// Step returns the 0-based position of the status in the delivery lifecycle
// and the total number of steps. Cancelled reports position -1.
func (s JobStatus) Step() (int, int) {
	for i, st := range jobStatusOrder {
		if st == s {
			return i, len(jobStatusOrder)
		}
	}
	return -1, len(jobStatusOrder)
}

// Terminal reports whether no further transitions are expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDelivered || s == JobStatusCancelled
}

// ParseJobStatus validates a raw status string.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch status := JobStatus(s); status {
	case JobStatusPendingQuote, JobStatusScheduled, JobStatusPickedUp,
		JobStatusInTransit, JobStatusDelivered, JobStatusCancelled:
		return status, true
	}
	return "", false
}

// DeliveryJob is a finalized, persisted job row.
type DeliveryJob struct {
	ID              surrealmodels.RecordID `json:"id"`
	Parts           []string               `json:"parts"`
	Pickup          string                 `json:"pickup"`
	Dropoff         string                 `json:"dropoff"`
	PickupCoord     *Coordinate            `json:"pickup_coord,omitempty"`
	DropoffCoord    *Coordinate            `json:"dropoff_coord,omitempty"`
	DeadlineISO     string                 `json:"deadline_iso"`
	DeadlineDisplay string                 `json:"deadline_display"`
	DistanceMeters  *int64                 `json:"distance_meters,omitempty"`
	DurationSeconds *int64                 `json:"duration_seconds,omitempty"`
	PriceCents      *int64                 `json:"price_cents,omitempty"`
	Status          JobStatus              `json:"status"`
	SessionID       *string                `json:"session_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}
