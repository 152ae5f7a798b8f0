package stats_test

import (
	"testing"
	"time"

	"github.com/2beens/liftdash/internal/fitapi"
	"github.com/2beens/liftdash/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePacingStatus(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := start.Add(100 * 24 * time.Hour)
	// 50 days in, elapsed fraction is exactly 0.5
	now := start.Add(50 * 24 * time.Hour)

	for name, tc := range map[string]struct {
		progressPercent float64
		expected        stats.PacingStatus
	}{
		"well ahead":            {80, stats.PacingAhead},
		"just above tolerance":  {55.001, stats.PacingAhead},
		"upper tolerance edge":  {55, stats.PacingOnTrack},
		"exactly proportional":  {50, stats.PacingOnTrack},
		"lower tolerance edge":  {45, stats.PacingOnTrack},
		"just below tolerance":  {44.999, stats.PacingBehind},
		"well behind":           {10, stats.PacingBehind},
		"no progress":           {0, stats.PacingBehind},
		"already over the goal": {120, stats.PacingAhead},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stats.DerivePacingStatus(tc.progressPercent, start, deadline, now))
		})
	}
}

func TestDerivePacingStatus_DegenerateWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)

	// a deadline at or before the start yields no verdict
	assert.Equal(t, stats.PacingUnknown, stats.DerivePacingStatus(50, start, start, now))
	assert.Equal(t, stats.PacingUnknown, stats.DerivePacingStatus(50, start, start.Add(-24*time.Hour), now))
}

func TestParsePacingStatus(t *testing.T) {
	for input, expected := range map[string]stats.PacingStatus{
		"ahead":    stats.PacingAhead,
		"AHEAD":    stats.PacingAhead,
		"on_track": stats.PacingOnTrack,
		"on-track": stats.PacingOnTrack,
		"onTrack":  stats.PacingOnTrack,
		"behind":   stats.PacingBehind,
		"":         stats.PacingUnknown,
		"paused":   stats.PacingUnknown,
	} {
		assert.Equal(t, expected, stats.ParsePacingStatus(input), "input %q", input)
	}
}

func TestEvaluatePacing(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := start.Add(100 * 24 * time.Hour)
	now := start.Add(50 * 24 * time.Hour)

	goals := []fitapi.GoalPacing{
		{
			ExerciseID:      "ex-sq",
			ProgressPercent: 75,
			Status:          "ahead",
			StartedAt:       start,
			Deadline:        deadline,
		},
		{
			ExerciseID:      "ex-bp",
			ProgressPercent: 20,
			Status:          "ahead", // server says ahead, the numbers disagree
			StartedAt:       start,
			Deadline:        deadline,
		},
	}

	evaluated := stats.EvaluatePacing(goals, now)
	require.Len(t, evaluated, 2)

	assert.Equal(t, stats.PacingAhead, evaluated[0].Status)
	assert.Equal(t, stats.PacingAhead, evaluated[0].Rederived)

	// the server status stays authoritative, the re-derivation records
	// the disagreement
	assert.Equal(t, stats.PacingAhead, evaluated[1].Status)
	assert.Equal(t, stats.PacingBehind, evaluated[1].Rederived)
}

func TestEvaluatePacing_Empty(t *testing.T) {
	assert.Empty(t, stats.EvaluatePacing(nil, time.Now()))
}
