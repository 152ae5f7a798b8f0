package dashboard

import (
	"time"

	"github.com/2beens/liftdash/internal/fitapi"
	"github.com/2beens/liftdash/internal/stats"
)

// Field identifies one independently fetched and independently failable
// part of the snapshot.
type Field string

const (
	FieldRecentWorkout   Field = "recent-workout"
	FieldWeeklyTotals    Field = "weekly-totals"
	FieldPersonalRecords Field = "personal-records"
	FieldInsights        Field = "insights"
	FieldProgression     Field = "progression"
	FieldAchievements    Field = "recent-achievements"
	FieldDailyQuests     Field = "daily-quests"
	FieldProfile         Field = "user-profile"
	FieldMuscleRecovery  Field = "muscle-recovery"
	FieldExerciseCatalog Field = "exercise-catalog"
	FieldCurrentMission  Field = "current-mission"
	FieldGoalPacing      Field = "goal-pacing"
	FieldTrends          Field = "exercise-trends"
)

var allFields = []Field{
	FieldRecentWorkout,
	FieldWeeklyTotals,
	FieldPersonalRecords,
	FieldInsights,
	FieldProgression,
	FieldAchievements,
	FieldDailyQuests,
	FieldProfile,
	FieldMuscleRecovery,
	FieldExerciseCatalog,
	FieldCurrentMission,
	FieldGoalPacing,
	FieldTrends,
}

type FieldState string

const (
	FieldStatePending FieldState = "pending"
	FieldStateLoaded  FieldState = "loaded"
	// FieldStateEmpty is a valid-but-empty result, rendered as an empty
	// state, not an error state.
	FieldStateEmpty FieldState = "empty"
	// FieldStateFailed means the fetch failed and no prior value exists.
	FieldStateFailed FieldState = "failed"
	// FieldStateStale means the last fetch failed but a previously loaded
	// value is kept - stale but present, never silently cleared.
	FieldStateStale FieldState = "stale"
)

// Snapshot is the materialized state of the dashboard. Every field is
// independently absent until its source settles, the snapshot is always
// legally renderable, possibly partial.
type Snapshot struct {
	RecentWorkout   *fitapi.Workout               `json:"recentWorkout,omitempty"`
	WeeklyTotals    *fitapi.WeeklyTotals          `json:"weeklyTotals,omitempty"`
	PersonalRecords []fitapi.PersonalRecord       `json:"personalRecords,omitempty"`
	Insights        []fitapi.Insight              `json:"insights,omitempty"`
	Progression     *stats.ProgressionState       `json:"progression,omitempty"`
	Achievements    []fitapi.Achievement          `json:"achievements,omitempty"`
	DailyQuests     []fitapi.Quest                `json:"dailyQuests,omitempty"`
	Profile         *fitapi.Profile               `json:"profile,omitempty"`
	MuscleRecovery  []stats.RecoveryStatus        `json:"muscleRecovery,omitempty"`
	ExerciseCatalog []fitapi.ExerciseType         `json:"exerciseCatalog,omitempty"`
	CurrentMission  *fitapi.Mission               `json:"currentMission,omitempty"`
	Goals           []stats.GoalProgress          `json:"goals,omitempty"`
	Trends          map[string]fitapi.TrendRecord `json:"trends,omitempty"`

	// BigThree always has exactly one record per canonical lift.
	BigThree []stats.LiftRecord `json:"bigThree,omitempty"`

	FieldStates map[Field]FieldState `json:"fieldStates"`
	FieldErrors map[Field]string     `json:"fieldErrors"`

	// AuthRequired is raised when any source settles unauthorized.
	// The rest of the snapshot is kept for use after re-authentication.
	AuthRequired bool      `json:"authRequired"`
	RefreshedAt  time.Time `json:"refreshedAt"`
}

func newSnapshot() Snapshot {
	fieldStates := make(map[Field]FieldState, len(allFields))
	for _, field := range allFields {
		fieldStates[field] = FieldStatePending
	}
	return Snapshot{
		Trends:      make(map[string]fitapi.TrendRecord),
		FieldStates: fieldStates,
		FieldErrors: make(map[Field]string),
	}
}

// clone copies the snapshot's slices and maps, so that readers never share
// mutable state with the aggregator. The payload records themselves are
// treated as immutable.
func (s Snapshot) clone() Snapshot {
	out := s

	if s.PersonalRecords != nil {
		out.PersonalRecords = append([]fitapi.PersonalRecord(nil), s.PersonalRecords...)
	}
	if s.Insights != nil {
		out.Insights = append([]fitapi.Insight(nil), s.Insights...)
	}
	if s.Achievements != nil {
		out.Achievements = append([]fitapi.Achievement(nil), s.Achievements...)
	}
	if s.DailyQuests != nil {
		out.DailyQuests = append([]fitapi.Quest(nil), s.DailyQuests...)
	}
	if s.MuscleRecovery != nil {
		out.MuscleRecovery = append([]stats.RecoveryStatus(nil), s.MuscleRecovery...)
	}
	if s.ExerciseCatalog != nil {
		out.ExerciseCatalog = append([]fitapi.ExerciseType(nil), s.ExerciseCatalog...)
	}
	if s.Goals != nil {
		out.Goals = append([]stats.GoalProgress(nil), s.Goals...)
	}
	if s.BigThree != nil {
		out.BigThree = append([]stats.LiftRecord(nil), s.BigThree...)
	}

	out.Trends = make(map[string]fitapi.TrendRecord, len(s.Trends))
	for exerciseID, trend := range s.Trends {
		out.Trends[exerciseID] = trend
	}
	out.FieldStates = make(map[Field]FieldState, len(s.FieldStates))
	for field, state := range s.FieldStates {
		out.FieldStates[field] = state
	}
	out.FieldErrors = make(map[Field]string, len(s.FieldErrors))
	for field, errMsg := range s.FieldErrors {
		out.FieldErrors[field] = errMsg
	}

	return out
}
