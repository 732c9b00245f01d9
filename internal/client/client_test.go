package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

func TestProcessTurn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/intake/turn", r.URL.Path)

		var req TurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deliver brake pads", req.Message)

		json.NewEncoder(w).Encode(TurnResponse{
			SessionID:          "s1",
			NeedsClarification: true,
			Field:              "pickup",
			Message:            "which address?",
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	resp, err := c.ProcessTurn(context.Background(), TurnRequest{Message: "deliver brake pads"})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SessionID)
	assert.True(t, resp.NeedsClarification)
	assert.Equal(t, "pickup", resp.Field)
}

func TestGetJobNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "job not found"})
	}))
	defer ts.Close()

	_, err := New(ts.URL).GetJob(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobsQueryParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "delivered", r.URL.Query().Get("status"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string][]models.DeliveryJob{"jobs": {}})
	}))
	defer ts.Close()

	status := models.JobStatusDelivered
	jobs, err := New(ts.URL).ListJobs(context.Background(), ListJobsOptions{Status: &status, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestServerErrorMessageSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid status transition"})
	}))
	defer ts.Close()

	_, err := New(ts.URL).UpdateStatus(context.Background(), "abc123", models.JobStatusScheduled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition")
}
