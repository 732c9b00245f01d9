package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// CreateJobParams carries the finalized draft plus computed metrics into the
// store.
type CreateJobParams struct {
	ID              string
	Parts           []string
	Pickup          string
	Dropoff         string
	PickupCoord     *models.Coordinate
	DropoffCoord    *models.Coordinate
	DeadlineISO     string
	DeadlineDisplay string
	DistanceMeters  *int64
	DurationSeconds *int64
	PriceCents      *int64
	SessionID       *string
}

// CreateJob persists a finalized job with status pending_quote.
func (c *Client) CreateJob(ctx context.Context, p CreateJobParams) (*models.DeliveryJob, error) {
	sql := `
		CREATE type::record("delivery_job", $id) CONTENT {
			parts: $parts,
			pickup: $pickup,
			dropoff: $dropoff,
			pickup_coord: $pickup_coord,
			dropoff_coord: $dropoff_coord,
			deadline_iso: $deadline_iso,
			deadline_display: $deadline_display,
			distance_meters: $distance_meters,
			duration_seconds: $duration_seconds,
			price_cents: $price_cents,
			status: $status,
			session_id: $session_id
		}
	`
	vars := map[string]any{
		"id":               p.ID,
		"parts":            p.Parts,
		"pickup":           p.Pickup,
		"dropoff":          p.Dropoff,
		"pickup_coord":     p.PickupCoord,
		"dropoff_coord":    p.DropoffCoord,
		"deadline_iso":     p.DeadlineISO,
		"deadline_display": p.DeadlineDisplay,
		"distance_meters":  p.DistanceMeters,
		"duration_seconds": p.DurationSeconds,
		"price_cents":      p.PriceCents,
		"status":           string(models.JobStatusPendingQuote),
		"session_id":       p.SessionID,
	}
	if p.Parts == nil {
		vars["parts"] = []string{}
	}

	results, err := surrealdb.Query[[]models.DeliveryJob](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create job: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// GetJob retrieves a job by ID. Returns ErrNotFound when it does not exist.
func (c *Client) GetJob(ctx context.Context, id string) (*models.DeliveryJob, error) {
	results, err := surrealdb.Query[[]models.DeliveryJob](ctx, c.db, `
		SELECT * FROM type::record("delivery_job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get job %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// ListJobs returns jobs, most recent first, optionally filtered by status.
func (c *Client) ListJobs(ctx context.Context, status *models.JobStatus, limit int) ([]models.DeliveryJob, error) {
	if limit <= 0 {
		limit = 50
	}

	statusClause := ""
	vars := map[string]any{"limit": limit}
	if status != nil {
		statusClause = "WHERE status = $status"
		vars["status"] = string(*status)
	}

	sql := fmt.Sprintf(`
		SELECT * FROM delivery_job %s ORDER BY created_at DESC LIMIT $limit
	`, statusClause)

	results, err := surrealdb.Query[[]models.DeliveryJob](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.DeliveryJob{}, nil
	}
	return (*results)[0].Result, nil
}

// UpdateStatus transitions a job to a new lifecycle status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.JobStatus) (*models.DeliveryJob, error) {
	results, err := surrealdb.Query[[]models.DeliveryJob](ctx, c.db, `
		UPDATE type::record("delivery_job", $id) SET
			status = $status,
			updated_at = time::now()
	`, map[string]any{"id": id, "status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("update status %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// CountByStatus returns job counts grouped by lifecycle status.
func (c *Client) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	type statusCount struct {
		Status models.JobStatus `json:"status"`
		Count  int              `json:"count"`
	}

	results, err := surrealdb.Query[[]statusCount](ctx, c.db, `
		SELECT status, count() AS count FROM delivery_job GROUP BY status
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", wrapQueryError(err))
	}

	counts := make(map[models.JobStatus]int)
	if results != nil && len(*results) > 0 {
		for _, sc := range (*results)[0].Result {
			counts[sc.Status] = sc.Count
		}
	}
	return counts, nil
}
