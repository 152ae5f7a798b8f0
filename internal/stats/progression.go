package stats

import (
	"strings"

	"github.com/2beens/liftdash/internal/fitapi"
)

type Rank string

const (
	RankS Rank = "S"
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
	RankE Rank = "E"
)

// RankFromClassification maps the backend percentile label to a rank.
// Note that no label maps to rank B - that is how the backend label set
// works today, do not "fix" it here.
func RankFromClassification(classification string) Rank {
	switch strings.ToLower(classification) {
	case "elite":
		return RankS
	case "advanced":
		return RankA
	case "intermediate":
		return RankC
	case "novice":
		return RankD
	default:
		return RankE
	}
}

// LevelingCurve computes the xp needed for the next level and the progress
// within the current level. Supplied externally, the curve math is not
// owned by this package.
type LevelingCurve func(level, totalXP int) (xpToNextLevel int, levelProgress float64)

// ProgressionState is the display-ready gamification progression.
type ProgressionState struct {
	TotalXP           int     `json:"totalXp"`
	Level             int     `json:"level"`
	Rank              Rank    `json:"rank"`
	CurrentStreakDays int     `json:"currentStreakDays"`
	XPToNextLevel     int     `json:"xpToNextLevel"`
	LevelProgress     float64 `json:"levelProgress"`
}

// DeriveProgression turns the raw backend progression into a display-ready
// state. Total over its inputs: a nil progression yields nil, malformed
// numbers are clamped to the model's invariants.
func DeriveProgression(progression *fitapi.Progression, curve LevelingCurve) *ProgressionState {
	if progression == nil {
		return nil
	}

	state := &ProgressionState{
		TotalXP:           progression.TotalXP,
		Level:             progression.Level,
		Rank:              RankFromClassification(progression.Classification),
		CurrentStreakDays: progression.CurrentStreakDays,
	}
	if state.TotalXP < 0 {
		state.TotalXP = 0
	}
	if state.Level < 1 {
		state.Level = 1
	}
	if state.CurrentStreakDays < 0 {
		state.CurrentStreakDays = 0
	}

	if curve != nil {
		state.XPToNextLevel, state.LevelProgress = curve(state.Level, state.TotalXP)
		if state.LevelProgress < 0 {
			state.LevelProgress = 0
		}
		if state.LevelProgress > 1 {
			state.LevelProgress = 1
		}
	}

	return state
}
