package stats

import (
	"strings"
	"time"

	"github.com/2beens/liftdash/internal/fitapi"
)

type PacingStatus string

const (
	PacingAhead   PacingStatus = "ahead"
	PacingOnTrack PacingStatus = "onTrack"
	PacingBehind  PacingStatus = "behind"
	PacingUnknown PacingStatus = "unknown"
)

// pacingTolerance is the dead band around the time-proportional target.
const pacingTolerance = 0.05

func ParsePacingStatus(status string) PacingStatus {
	switch strings.ToLower(status) {
	case "ahead":
		return PacingAhead
	case "on_track", "on-track", "ontrack":
		return PacingOnTrack
	case "behind":
		return PacingBehind
	default:
		return PacingUnknown
	}
}

// DerivePacingStatus classifies goal progress against the elapsed-time
// fraction of the goal window. The server-assigned status stays
// authoritative for display, this derivation exists to validate it.
func DerivePacingStatus(progressPercent float64, start, deadline, now time.Time) PacingStatus {
	if !deadline.After(start) {
		return PacingUnknown
	}

	elapsedFraction := float64(now.Sub(start)) / float64(deadline.Sub(start))
	progress := progressPercent / 100

	switch {
	case progress > elapsedFraction+pacingTolerance:
		return PacingAhead
	case progress < elapsedFraction-pacingTolerance:
		return PacingBehind
	default:
		return PacingOnTrack
	}
}

// GoalProgress is one goal's pacing record with both the authoritative
// server status and the client-side re-derivation.
type GoalProgress struct {
	fitapi.GoalPacing
	Status    PacingStatus `json:"pacingStatus"`
	Rederived PacingStatus `json:"rederivedStatus"`
}

func EvaluatePacing(goals []fitapi.GoalPacing, now time.Time) []GoalProgress {
	evaluated := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		evaluated = append(evaluated, GoalProgress{
			GoalPacing: goal,
			Status:     ParsePacingStatus(goal.Status),
			Rederived:  DerivePacingStatus(goal.ProgressPercent, goal.StartedAt, goal.Deadline, now),
		})
	}
	return evaluated
}
