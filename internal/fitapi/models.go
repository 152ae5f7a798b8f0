package fitapi

import (
	"fmt"
	"time"
)

// Payload shapes are owned by the fitness analytics backend and treated
// as opaque typed records on this side.

type Workout struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	StartedAt       time.Time `json:"startedAt"`
	DurationMinutes int       `json:"durationMinutes"`
	TotalVolume     float64   `json:"totalVolume"`
	ExerciseCount   int       `json:"exerciseCount"`
}

type WeeklyTotals struct {
	Workouts      int     `json:"workouts"`
	Volume        float64 `json:"volume"`
	ActiveMinutes int     `json:"activeMinutes"`
}

type PersonalRecord struct {
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Kilos        float64   `json:"kilos"`
	Reps         int       `json:"reps"`
	AchievedAt   time.Time `json:"achievedAt"`
}

type Insight struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Progression carries the raw gamification triple. Classification is the
// backend percentile label (elite, advanced, intermediate, novice, ...),
// mapped to a rank on this side.
type Progression struct {
	TotalXP           int    `json:"totalXp"`
	Level             int    `json:"level"`
	Classification    string `json:"classification"`
	CurrentStreakDays int    `json:"currentStreakDays"`
}

type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

type Quest struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	XPReward  int    `json:"xpReward"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}

type Profile struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	BodyweightKg float64   `json:"bodyweightKg"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MuscleRecovery is the backend-computed recovery state of one muscle group.
// CooldownPercent is in [0, 100], where 100 means fully recovered.
type MuscleRecovery struct {
	MuscleGroup     string  `json:"muscleGroup"`
	CooldownPercent float64 `json:"cooldownPercent"`
	HoursRemaining  float64 `json:"hoursRemaining"`
}

type ExerciseType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}

type Mission struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TargetValue  float64   `json:"targetValue"`
	CurrentValue float64   `json:"currentValue"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TrendRecord is the backend-computed strength trend for one exercise.
// Direction is a string tag (improving, regressing, stable, insufficient_data).
type TrendRecord struct {
	ExerciseID    string   `json:"exerciseId"`
	E1RM          float64  `json:"e1rm"`
	Direction     string   `json:"direction"`
	PercentChange *float64 `json:"percentChange,omitempty"`
}

// GoalPacing is the backend-computed pacing of one strength goal.
// Status is assigned server-side and is authoritative for display.
type GoalPacing struct {
	ExerciseID              string     `json:"exerciseId"`
	CurrentE1RM             float64    `json:"currentE1rm"`
	TargetWeight            float64    `json:"targetWeight"`
	ProgressPercent         float64    `json:"progressPercent"`
	Status                  string     `json:"status"`
	RequiredWeeklyGain      *float64   `json:"requiredWeeklyGain,omitempty"`
	ActualWeeklyGain        *float64   `json:"actualWeeklyGain,omitempty"`
	ProjectedCompletionDate *time.Time `json:"projectedCompletionDate,omitempty"`
	StartedAt               time.Time  `json:"startedAt"`
	Deadline                time.Time  `json:"deadline"`
}

// ProgressionPatch is returned by the claim quest endpoint and is used to
// patch the progression state without a full refetch.
type ProgressionPatch struct {
	TotalXP        int    `json:"totalXp"`
	Level          int    `json:"level"`
	Classification string `json:"classification"`
}

// TimeRange is the trend query range token, from a fixed backend-defined set.
type TimeRange string

const (
	TimeRange4W  TimeRange = "4w"
	TimeRange8W  TimeRange = "8w"
	TimeRange12W TimeRange = "12w"
	TimeRange26W TimeRange = "26w"
	TimeRange52W TimeRange = "52w"
)

func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case TimeRange4W, TimeRange8W, TimeRange12W, TimeRange26W, TimeRange52W:
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("invalid time range: %q", s)
	}
}
