package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aMonday is Monday 2026-06-22 10:00 UTC, the fixed "now" for weekday math.
var aMonday = time.Date(2026, 6, 22, 10, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(time.UTC, nil)
}

func TestNormalizeBlank(t *testing.T) {
	n := newTestNormalizer()

	for _, input := range []string{"", "   ", "\t"} {
		res := n.Normalize(input, aMonday)
		assert.Empty(t, res.ISO)
		assert.Empty(t, res.Display)
	}
}

func TestNormalizeNextWeekdaySameDay(t *testing.T) {
	n := newTestNormalizer()

	// "next monday" said on a Monday means the Monday after next, never today.
	res := n.Normalize("next monday", aMonday)
	require.NotEmpty(t, res.ISO)

	got, err := time.Parse(time.RFC3339, res.ISO)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.Equal(t, aMonday.AddDate(0, 0, 7).Day(), got.Day())
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
}

func TestNormalizeNextWeekdayFromTuesday(t *testing.T) {
	n := newTestNormalizer()
	aTuesday := aMonday.AddDate(0, 0, 1)

	// "next monday" said on a Tuesday is 6 days out.
	res := n.Normalize("next monday", aTuesday)
	require.NotEmpty(t, res.ISO)

	got, err := time.Parse(time.RFC3339, res.ISO)
	require.NoError(t, err)
	assert.Equal(t, aTuesday.AddDate(0, 0, 6).Day(), got.Day())
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
}

func TestNormalizeNextWeekdayWithTime(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		input      string
		wantHour   int
		wantMinute int
	}{
		{"next tues by 2pm", 14, 0},
		{"next tues 2:30 pm", 14, 30},
		{"next friday 12pm", 12, 0},
		{"next friday 12am", 0, 0},
		{"next wed at 9am", 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := n.Normalize(tt.input, aMonday)
			require.NotEmpty(t, res.ISO)

			got, err := time.Parse(time.RFC3339, res.ISO)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.wantMinute, got.Minute())
		})
	}
}

func TestNormalizeNextWeekdayAbbreviations(t *testing.T) {
	n := newTestNormalizer()

	want := map[string]time.Weekday{
		"next sun":   time.Sunday,
		"next tues":  time.Tuesday,
		"next thurs": time.Thursday,
		"next sat":   time.Saturday,
	}

	for input, wd := range want {
		res := n.Normalize(input, aMonday)
		require.NotEmpty(t, res.ISO, input)

		got, err := time.Parse(time.RFC3339, res.ISO)
		require.NoError(t, err)
		assert.Equal(t, wd, got.Weekday(), input)
	}
}

func TestNormalizeStripsLeadingPreposition(t *testing.T) {
	n := newTestNormalizer()

	res := n.Normalize("by next friday 5pm", aMonday)
	require.NotEmpty(t, res.ISO)

	got, err := time.Parse(time.RFC3339, res.ISO)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 17, got.Hour())
}

func TestNormalizeGeneralPhrases(t *testing.T) {
	n := newTestNormalizer()

	res := n.Normalize("tomorrow", aMonday)
	require.NotEmpty(t, res.ISO, "general parser should handle tomorrow")

	got, err := time.Parse(time.RFC3339, res.ISO)
	require.NoError(t, err)
	assert.True(t, got.After(aMonday))
}

func TestNormalizeUnparseable(t *testing.T) {
	n := newTestNormalizer()

	res := n.Normalize("whenever works for you", aMonday)
	assert.Empty(t, res.ISO)
	assert.Empty(t, res.Display)
}

func TestNormalizeResolutionInvariant(t *testing.T) {
	n := newTestNormalizer()

	// ISO and Display resolve or fail together.
	for _, input := range []string{"", "gibberish", "next tuesday", "tomorrow"} {
		res := n.Normalize(input, aMonday)
		assert.Equal(t, res.ISO == "", res.Display == "", input)
	}
}

func TestNormalizeDisplayFormat(t *testing.T) {
	n := newTestNormalizer()

	res := n.Normalize("next tues by 2pm", aMonday)
	require.NotEmpty(t, res.Display)
	assert.Equal(t, "Tuesday, Jun 23, 2:00 PM UTC", res.Display)
}
