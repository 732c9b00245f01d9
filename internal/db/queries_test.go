// Package db_test contains integration tests for the job store queries.
package db_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganbatte-hq/ganbatte/internal/db"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// NOTE: getTestConfig() and getEnv() are defined in client_test.go.
// Both files are in package db_test, so these helpers are shared.

// testClient creates a connected client for testing.
// Skips test in short mode.
func testClient(t *testing.T) (*db.Client, context.Context) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(func() { cancel() })

	cfg := getTestConfig() // from client_test.go
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := db.NewClient(ctx, cfg, logger)
	require.NoError(t, err, "should connect to SurrealDB")
	t.Cleanup(func() { client.Close(ctx) })

	err = client.InitSchema(ctx)
	require.NoError(t, err, "should initialize schema")

	return client, ctx
}

// cleanupJob removes a single test job by ID.
func cleanupJob(t *testing.T, client *db.Client, ctx context.Context, id string) {
	_, err := client.Query(ctx, `DELETE type::record("delivery_job", $id)`, map[string]any{"id": id})
	require.NoError(t, err, "cleanup job")
}

func testJobParams(id string) db.CreateJobParams {
	distance := int64(12400)
	duration := int64(1100)
	price := int64(2988)
	session := "sess-" + id
	return db.CreateJobParams{
		ID:              id,
		Parts:           []string{"brake pads", "rotors"},
		Pickup:          "123 Main St, Irvine, CA 92614, USA",
		Dropoff:         "456 Oak Ave, Santa Ana, CA 92701, USA",
		PickupCoord:     &models.Coordinate{Lat: 33.6846, Lng: -117.8265},
		DropoffCoord:    &models.Coordinate{Lat: 33.7455, Lng: -117.8677},
		DeadlineISO:     "2026-06-26T17:00:00Z",
		DeadlineDisplay: "Friday, Jun 26, 5:00 PM UTC",
		DistanceMeters:  &distance,
		DurationSeconds: &duration,
		PriceCents:      &price,
		SessionID:       &session,
	}
}

func TestCreateJob(t *testing.T) {
	client, ctx := testClient(t)
	id := uuid.New().String()[:8]
	t.Cleanup(func() { cleanupJob(t, client, ctx, id) })

	job, err := client.CreateJob(ctx, testJobParams(id))
	require.NoError(t, err)

	assert.Equal(t, id, models.MustRecordIDString(job.ID))
	assert.Equal(t, []string{"brake pads", "rotors"}, job.Parts)
	assert.Equal(t, models.JobStatusPendingQuote, job.Status)
	require.NotNil(t, job.PriceCents)
	assert.Equal(t, int64(2988), *job.PriceCents)
	assert.False(t, job.CreatedAt.IsZero(), "created_at should default to time::now()")
}

func TestGetJob(t *testing.T) {
	client, ctx := testClient(t)
	id := uuid.New().String()[:8]
	t.Cleanup(func() { cleanupJob(t, client, ctx, id) })

	_, err := client.GetJob(ctx, id)
	require.ErrorIs(t, err, db.ErrNotFound, "missing job should map to ErrNotFound")

	_, err = client.CreateJob(ctx, testJobParams(id))
	require.NoError(t, err)

	job, err := client.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Irvine, CA 92614, USA", job.Pickup)
	require.NotNil(t, job.PickupCoord)
	assert.InDelta(t, 33.6846, job.PickupCoord.Lat, 0.0001)
}

func TestListJobs(t *testing.T) {
	client, ctx := testClient(t)

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.New().String()[:8]
		_, err := client.CreateJob(ctx, testJobParams(ids[i]))
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, id := range ids {
			cleanupJob(t, client, ctx, id)
		}
	})

	jobs, err := client.ListJobs(ctx, nil, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(jobs), 3)

	status := models.JobStatusDelivered
	_, err = client.UpdateStatus(ctx, ids[0], status)
	require.NoError(t, err)

	delivered, err := client.ListJobs(ctx, &status, 100)
	require.NoError(t, err)
	for _, j := range delivered {
		assert.Equal(t, models.JobStatusDelivered, j.Status)
	}
}

func TestUpdateStatus(t *testing.T) {
	client, ctx := testClient(t)
	id := uuid.New().String()[:8]
	t.Cleanup(func() { cleanupJob(t, client, ctx, id) })

	_, err := client.CreateJob(ctx, testJobParams(id))
	require.NoError(t, err)

	job, err := client.UpdateStatus(ctx, id, models.JobStatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusScheduled, job.Status)

	_, err = client.UpdateStatus(ctx, "does-not-exist", models.JobStatusScheduled)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	client, ctx := testClient(t)
	id := uuid.New().String()[:8]
	t.Cleanup(func() { cleanupJob(t, client, ctx, id) })

	_, err := client.CreateJob(ctx, testJobParams(id))
	require.NoError(t, err)

	_, err = client.UpdateStatus(ctx, id, models.JobStatus("teleported"))
	require.Error(t, err, "schema assertion should reject unknown status values")
	assert.ErrorIs(t, err, db.ErrInvalidTransition)
}

func TestCountByStatus(t *testing.T) {
	client, ctx := testClient(t)
	id := uuid.New().String()[:8]
	t.Cleanup(func() { cleanupJob(t, client, ctx, id) })

	_, err := client.CreateJob(ctx, testJobParams(id))
	require.NoError(t, err)

	counts, err := client.CountByStatus(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[models.JobStatusPendingQuote], 1)
}
