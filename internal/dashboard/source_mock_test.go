package dashboard_test

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/liftdash/internal/dashboard"
	"github.com/2beens/liftdash/internal/fitapi"
)

var _ dashboard.DataSource = (*sourceMock)(nil)

// sourceMock is a stateful in-memory data source. Per-method errors are
// injected via the Errors map, keyed by method name, and call counts are
// tracked so tests can assert which fetches ran.
type sourceMock struct {
	mutex  sync.Mutex
	Errors map[string]error
	Calls  map[string]int

	Workout     *fitapi.Workout
	Totals      *fitapi.WeeklyTotals
	Records     []fitapi.PersonalRecord
	InsightList []fitapi.Insight
	Progression *fitapi.Progression
	Unlocked    []fitapi.Achievement
	Quests      []fitapi.Quest
	Account     *fitapi.Profile
	Recovery    []fitapi.MuscleRecovery
	Catalog     []fitapi.ExerciseType
	Mission     *fitapi.Mission
	Goals       []fitapi.GoalPacing
	Trends      map[string]*fitapi.TrendRecord
	Patch       *fitapi.ProgressionPatch
}

func newSourceMock() *sourceMock {
	percentChange := 2.5
	return &sourceMock{
		Errors: map[string]error{},
		Calls:  map[string]int{},
		Workout: &fitapi.Workout{
			ID:              "w-1",
			Title:           "push day",
			StartedAt:       time.Now().Add(-3 * time.Hour),
			DurationMinutes: 65,
			TotalVolume:     8450,
			ExerciseCount:   6,
		},
		Totals: &fitapi.WeeklyTotals{
			Workouts:      4,
			Volume:        31200,
			ActiveMinutes: 255,
		},
		Records: []fitapi.PersonalRecord{
			{ExerciseID: "ex-dl", ExerciseName: "Deadlift", Kilos: 180, Reps: 1},
		},
		InsightList: []fitapi.Insight{
			{ID: "in-1", Title: "volume up", Body: "weekly volume up 8%"},
		},
		Progression: &fitapi.Progression{
			TotalXP:           12500,
			Level:             14,
			Classification:    "intermediate",
			CurrentStreakDays: 9,
		},
		Unlocked: []fitapi.Achievement{
			{ID: "ach-1", Name: "centurion", Description: "100 workouts"},
		},
		Quests: []fitapi.Quest{
			{ID: "q-1", Title: "log a workout", XPReward: 50, Completed: true},
			{ID: "q-2", Title: "hit a pr", XPReward: 150},
		},
		Account: &fitapi.Profile{
			ID:           "u-1",
			Username:     "lifter",
			DisplayName:  "Lifter",
			BodyweightKg: 82.5,
		},
		Recovery: []fitapi.MuscleRecovery{
			{MuscleGroup: "chest", CooldownPercent: 100},
			{MuscleGroup: "legs", CooldownPercent: 35, HoursRemaining: 18},
			{MuscleGroup: "back", CooldownPercent: 72, HoursRemaining: 6},
		},
		Catalog: []fitapi.ExerciseType{
			{ID: "ex-sq", Name: "Barbell Back Squat", MuscleGroup: "legs"},
			{ID: "ex-bp", Name: "Bench Press", MuscleGroup: "chest"},
			{ID: "ex-dl", Name: "Deadlift", MuscleGroup: "back"},
		},
		Mission: &fitapi.Mission{
			ID:          "m-1",
			Title:       "squat 100t",
			TargetValue: 100000,
		},
		Goals: []fitapi.GoalPacing{
			{
				ExerciseID:      "ex-sq",
				CurrentE1RM:     140,
				TargetWeight:    160,
				ProgressPercent: 50,
				Status:          "on_track",
				StartedAt:       time.Now().Add(-30 * 24 * time.Hour),
				Deadline:        time.Now().Add(30 * 24 * time.Hour),
			},
		},
		Trends: map[string]*fitapi.TrendRecord{
			"ex-sq": {ExerciseID: "ex-sq", E1RM: 150, Direction: "improving", PercentChange: &percentChange},
			"ex-bp": {ExerciseID: "ex-bp", E1RM: 105, Direction: "stable"},
			"ex-dl": {ExerciseID: "ex-dl", E1RM: 185, Direction: "improving"},
		},
		Patch: &fitapi.ProgressionPatch{
			TotalXP:        12550,
			Level:          14,
			Classification: "intermediate",
		},
	}
}

func (m *sourceMock) called(method string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Calls[method]++
	return m.Errors[method]
}

func (m *sourceMock) CallCount(method string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.Calls[method]
}

func (m *sourceMock) SetError(method string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err == nil {
		delete(m.Errors, method)
		return
	}
	m.Errors[method] = err
}

func (m *sourceMock) MostRecentWorkout(_ context.Context) (*fitapi.Workout, error) {
	if err := m.called("MostRecentWorkout"); err != nil {
		return nil, err
	}
	return m.Workout, nil
}

func (m *sourceMock) WeeklyTotals(_ context.Context) (*fitapi.WeeklyTotals, error) {
	if err := m.called("WeeklyTotals"); err != nil {
		return nil, err
	}
	return m.Totals, nil
}

func (m *sourceMock) PersonalRecords(_ context.Context) ([]fitapi.PersonalRecord, error) {
	if err := m.called("PersonalRecords"); err != nil {
		return nil, err
	}
	return m.Records, nil
}

func (m *sourceMock) Insights(_ context.Context) ([]fitapi.Insight, error) {
	if err := m.called("Insights"); err != nil {
		return nil, err
	}
	return m.InsightList, nil
}

func (m *sourceMock) ProgressionState(_ context.Context) (*fitapi.Progression, error) {
	if err := m.called("ProgressionState"); err != nil {
		return nil, err
	}
	return m.Progression, nil
}

func (m *sourceMock) RecentAchievements(_ context.Context) ([]fitapi.Achievement, error) {
	if err := m.called("RecentAchievements"); err != nil {
		return nil, err
	}
	return m.Unlocked, nil
}

func (m *sourceMock) DailyQuests(_ context.Context) ([]fitapi.Quest, error) {
	if err := m.called("DailyQuests"); err != nil {
		return nil, err
	}
	return m.Quests, nil
}

func (m *sourceMock) UserProfile(_ context.Context) (*fitapi.Profile, error) {
	if err := m.called("UserProfile"); err != nil {
		return nil, err
	}
	return m.Account, nil
}

func (m *sourceMock) MuscleRecoveryList(_ context.Context) ([]fitapi.MuscleRecovery, error) {
	if err := m.called("MuscleRecoveryList"); err != nil {
		return nil, err
	}
	return m.Recovery, nil
}

func (m *sourceMock) ExerciseCatalog(_ context.Context) ([]fitapi.ExerciseType, error) {
	if err := m.called("ExerciseCatalog"); err != nil {
		return nil, err
	}
	return m.Catalog, nil
}

func (m *sourceMock) CurrentMission(_ context.Context) (*fitapi.Mission, error) {
	if err := m.called("CurrentMission"); err != nil {
		return nil, err
	}
	return m.Mission, nil
}

func (m *sourceMock) GoalPacingList(_ context.Context) ([]fitapi.GoalPacing, error) {
	if err := m.called("GoalPacingList"); err != nil {
		return nil, err
	}
	return m.Goals, nil
}

func (m *sourceMock) ExerciseTrend(_ context.Context, exerciseID string, _ fitapi.TimeRange) (*fitapi.TrendRecord, error) {
	if err := m.called("ExerciseTrend"); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	trend, ok := m.Trends[exerciseID]
	if !ok {
		return nil, fitapi.ErrNotFound
	}
	return trend, nil
}

func (m *sourceMock) ClaimQuest(_ context.Context, _ string) (*fitapi.ProgressionPatch, error) {
	if err := m.called("ClaimQuest"); err != nil {
		return nil, err
	}
	return m.Patch, nil
}

var _ dashboard.HealthSyncer = (*syncerMock)(nil)

type syncerMock struct {
	mutex sync.Mutex
	err   error
	calls int
	done  chan struct{}
}

func newSyncerMock() *syncerMock {
	return &syncerMock{done: make(chan struct{}, 10)}
}

func (m *syncerMock) SyncToBackend(_ context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++
	m.done <- struct{}{}
	return m.err
}

func (m *syncerMock) CallCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}
