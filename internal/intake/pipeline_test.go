package intake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganbatte-hq/ganbatte/internal/deadline"
	"github.com/ganbatte-hq/ganbatte/internal/extract"
	"github.com/ganbatte-hq/ganbatte/internal/geo"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// scriptedProvider replays one canned completion per call.
type scriptedProvider struct {
	responses []string
	call      int
}

var _ extract.CompletionProvider = (*scriptedProvider)(nil)

func (s *scriptedProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp := s.responses[s.call]
	s.call++
	return resp, nil
}

// digitGeocoder resolves any address containing a digit.
type digitGeocoder struct{}

var _ geo.Geocoder = (*digitGeocoder)(nil)

func (digitGeocoder) Geocode(ctx context.Context, address string) ([]geo.GeocodeResult, error) {
	return []geo.GeocodeResult{{
		FormattedAddress: address + ", USA",
		Location:         models.Coordinate{Lat: 33.7, Lng: -117.8},
	}}, nil
}

func newPipeline(t *testing.T, responses []string) *Controller {
	t.Helper()
	engine := extract.NewEngine(&scriptedProvider{responses: responses}, nil, nil)
	validator := geo.NewValidator(digitGeocoder{}, nil)
	normalizer := deadline.NewNormalizer(time.UTC, nil)
	return NewController(engine, validator, normalizer, func() time.Time { return testNow }, nil)
}

func TestPipelineEndToEnd(t *testing.T) {
	c := newPipeline(t, []string{
		`{"parts":["brake pads"],"pickup":"123 Main St, Irvine CA","dropoff":"456 Oak Ave, Santa Ana CA","deadline":"next friday 5pm"}`,
	})

	msg := "deliver brake pads from 123 Main St, Irvine CA to 456 Oak Ave, Santa Ana CA by next friday 5pm"
	res, err := c.ProcessTurn(context.Background(), msg, models.ConversationState{}, "")
	require.NoError(t, err)

	require.False(t, res.NeedsClarification)
	assert.Equal(t, []string{"brake pads"}, res.Job.Parts)
	assert.Equal(t, "123 Main St, Irvine CA, USA", res.Job.PickupResolved)
	assert.Equal(t, "456 Oak Ave, Santa Ana CA, USA", res.Job.DropoffResolved)

	got, err := time.Parse(time.RFC3339, res.Job.DeadlineISO)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 17, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.True(t, got.After(testNow))
}

func TestPipelineConvergesInThreeRounds(t *testing.T) {
	c := newPipeline(t, []string{
		// Initial message: everything vague.
		`{"parts":["alternator"],"pickup":"my shop","dropoff":"home","deadline":"whenever"}`,
		// Round 1 corrects pickup.
		`{"parts":[],"pickup":"100 A St, Irvine CA","dropoff":"","deadline":""}`,
		// Round 2 corrects dropoff.
		`{"parts":[],"pickup":"","dropoff":"200 B St, Tustin CA","deadline":""}`,
		// Round 3 corrects the deadline.
		`{"parts":[],"pickup":"","dropoff":"","deadline":"next friday 5pm"}`,
	})

	state := models.ConversationState{}

	res, err := c.ProcessTurn(context.Background(), "deliver an alternator from my shop to home whenever", state, "")
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	assert.Equal(t, FieldPickup, res.Field)
	state.LastConfirmed = res.Job

	res, err = c.ProcessTurn(context.Background(), "pick up from 100 A St, Irvine CA", state, res.Field)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	assert.Equal(t, FieldDropoff, res.Field)
	state.LastConfirmed = res.Job

	res, err = c.ProcessTurn(context.Background(), "deliver to 200 B St, Tustin CA", state, res.Field)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	assert.Equal(t, FieldDeadline, res.Field)
	state.LastConfirmed = res.Job

	res, err = c.ProcessTurn(context.Background(), "next friday 5pm", state, res.Field)
	require.NoError(t, err)

	assert.False(t, res.NeedsClarification, "third correction round completes the draft")
	assert.True(t, res.Job.Complete())
	assert.Equal(t, []string{"alternator"}, res.Job.Parts, "parts survive every merge")
	assert.Equal(t, "100 A St, Irvine CA, USA", res.Job.PickupResolved, "corrected fields never regress")
	assert.Equal(t, "200 B St, Tustin CA, USA", res.Job.DropoffResolved)
}
