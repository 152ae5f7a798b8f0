package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/liftdash/internal/fitapi"
	"github.com/2beens/liftdash/internal/stats"
	"github.com/2beens/liftdash/internal/telemetry/metrics"
	"github.com/2beens/liftdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// DataSource is the fitness analytics backend boundary, one method per
// domain query. Every read is independently callable and independently
// failable.
type DataSource interface {
	MostRecentWorkout(ctx context.Context) (*fitapi.Workout, error)
	WeeklyTotals(ctx context.Context) (*fitapi.WeeklyTotals, error)
	PersonalRecords(ctx context.Context) ([]fitapi.PersonalRecord, error)
	Insights(ctx context.Context) ([]fitapi.Insight, error)
	ProgressionState(ctx context.Context) (*fitapi.Progression, error)
	RecentAchievements(ctx context.Context) ([]fitapi.Achievement, error)
	DailyQuests(ctx context.Context) ([]fitapi.Quest, error)
	UserProfile(ctx context.Context) (*fitapi.Profile, error)
	MuscleRecoveryList(ctx context.Context) ([]fitapi.MuscleRecovery, error)
	ExerciseCatalog(ctx context.Context) ([]fitapi.ExerciseType, error)
	CurrentMission(ctx context.Context) (*fitapi.Mission, error)
	GoalPacingList(ctx context.Context) ([]fitapi.GoalPacing, error)
	ExerciseTrend(ctx context.Context, exerciseID string, timeRange fitapi.TimeRange) (*fitapi.TrendRecord, error)
	ClaimQuest(ctx context.Context, questID string) (*fitapi.ProgressionPatch, error)
}

// HealthSyncer triggers the one-way sync of device-observed health
// counters to the backend.
type HealthSyncer interface {
	SyncToBackend(ctx context.Context) error
}

const (
	defaultRefreshTimeout = 30 * time.Second
	defaultTrendRange     = fitapi.TimeRange12W
)

// Aggregator owns the dashboard snapshot. It fans out all source fetches
// concurrently, isolates per-source failures and merges the results
// field by field. The snapshot is the only piece of shared mutable state,
// all writes to it are serialized on the aggregator's mutex.
type Aggregator struct {
	dataSource     DataSource
	healthSyncer   HealthSyncer // optional
	metricsManager *metrics.Manager
	levelingCurve  stats.LevelingCurve
	trendRange     fitapi.TimeRange
	refreshTimeout time.Duration

	mu             sync.Mutex
	snapshot       Snapshot
	cancelInFlight context.CancelFunc
	updates        chan Snapshot
	syncWG         sync.WaitGroup
}

type AggregatorParams struct {
	DataSource     DataSource
	HealthSyncer   HealthSyncer
	MetricsManager *metrics.Manager
	LevelingCurve  stats.LevelingCurve
	TrendRange     fitapi.TimeRange
	RefreshTimeout time.Duration
}

func NewAggregator(params AggregatorParams) *Aggregator {
	trendRange := params.TrendRange
	if trendRange == "" {
		trendRange = defaultTrendRange
	}
	refreshTimeout := params.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}

	return &Aggregator{
		dataSource:     params.DataSource,
		healthSyncer:   params.HealthSyncer,
		metricsManager: params.MetricsManager,
		levelingCurve:  params.LevelingCurve,
		trendRange:     trendRange,
		refreshTimeout: refreshTimeout,
		snapshot:       newSnapshot(),
		updates:        make(chan Snapshot, 1),
	}
}

// Snapshot returns a copy of the current, possibly partial, snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot.clone()
}

// Updates delivers the latest snapshot after each settled refresh cycle.
// A slow consumer only ever misses intermediate snapshots, never the
// latest one.
func (a *Aggregator) Updates() <-chan Snapshot {
	return a.updates
}

// Refresh runs one full aggregation cycle and returns the resulting
// snapshot. It never fails as a whole: per-source failures are recorded
// in the snapshot's errors-by-field map. A new call supersedes and
// cancels a still-running previous cycle.
func (a *Aggregator) Refresh(ctx context.Context) Snapshot {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.aggregator.refresh")
	defer span.End()

	if a.metricsManager != nil {
		a.metricsManager.CounterRefreshCycles.Inc()
		defer func(begin time.Time) {
			a.metricsManager.HistRefreshDuration.Observe(time.Since(begin).Seconds())
		}(time.Now())
	}

	a.mu.Lock()
	if a.cancelInFlight != nil {
		a.cancelInFlight()
	}
	cycleCtx, cancel := context.WithTimeout(ctx, a.refreshTimeout)
	a.cancelInFlight = cancel
	// the new cycle re-evaluates the auth state
	a.snapshot.AuthRequired = false
	a.mu.Unlock()
	defer cancel()

	a.runPrimaryFetches(cycleCtx)

	a.mu.Lock()
	authRequired := a.snapshot.AuthRequired
	a.mu.Unlock()

	if authRequired {
		log.Warn("dashboard refresh: unauthorized, re-authentication required")
		if a.metricsManager != nil {
			a.metricsManager.CounterUnauthorized.Inc()
		}
	} else {
		a.runTrendFetches(cycleCtx)
		a.recomputeDerived()
		a.triggerHealthSync(cycleCtx)
	}

	a.mu.Lock()
	a.snapshot.RefreshedAt = time.Now()
	snapshot := a.snapshot.clone()
	a.mu.Unlock()

	a.publish(snapshot)
	return snapshot
}

// ClaimQuest acknowledges a completed quest and patches the progression
// state from the returned xp / level / classification triple, without a
// full refetch.
func (a *Aggregator) ClaimQuest(ctx context.Context, questID string) (_ *stats.ProgressionState, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.aggregator.claimQuest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	patch, err := a.dataSource.ClaimQuest(ctx, questID)
	if err != nil {
		return nil, fmt.Errorf("claim quest %s: %w", questID, err)
	}
	if a.metricsManager != nil {
		a.metricsManager.CounterQuestsClaimed.Inc()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	streakDays := 0
	if a.snapshot.Progression != nil {
		streakDays = a.snapshot.Progression.CurrentStreakDays
	}
	a.snapshot.Progression = stats.DeriveProgression(&fitapi.Progression{
		TotalXP:           patch.TotalXP,
		Level:             patch.Level,
		Classification:    patch.Classification,
		CurrentStreakDays: streakDays,
	}, a.levelingCurve)
	a.snapshot.FieldStates[FieldProgression] = FieldStateLoaded
	delete(a.snapshot.FieldErrors, FieldProgression)

	for i := range a.snapshot.DailyQuests {
		if a.snapshot.DailyQuests[i].ID == questID {
			a.snapshot.DailyQuests[i].Claimed = true
		}
	}

	progression := *a.snapshot.Progression
	return &progression, nil
}

// Close cancels a running cycle and waits for background work to finish.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.cancelInFlight != nil {
		a.cancelInFlight()
	}
	a.mu.Unlock()
	a.syncWG.Wait()
}

func (a *Aggregator) runPrimaryFetches(ctx context.Context) {
	var wg sync.WaitGroup
	run := func(fetch func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetch(ctx)
		}()
	}

	run(a.fetchRecentWorkout)
	run(a.fetchWeeklyTotals)
	run(a.fetchPersonalRecords)
	run(a.fetchInsights)
	run(a.fetchProgression)
	run(a.fetchAchievements)
	run(a.fetchDailyQuests)
	run(a.fetchProfile)
	run(a.fetchMuscleRecovery)
	run(a.fetchExerciseCatalog)
	run(a.fetchCurrentMission)
	run(a.fetchGoalPacing)

	wg.Wait()
}

func (a *Aggregator) fetchRecentWorkout(ctx context.Context) {
	workout, err := a.dataSource.MostRecentWorkout(ctx)
	a.settle(FieldRecentWorkout, err, func(s *Snapshot) {
		s.RecentWorkout = workout
	})
}

func (a *Aggregator) fetchWeeklyTotals(ctx context.Context) {
	totals, err := a.dataSource.WeeklyTotals(ctx)
	a.settle(FieldWeeklyTotals, err, func(s *Snapshot) {
		s.WeeklyTotals = totals
	})
}

func (a *Aggregator) fetchPersonalRecords(ctx context.Context) {
	records, err := a.dataSource.PersonalRecords(ctx)
	a.settle(FieldPersonalRecords, err, func(s *Snapshot) {
		s.PersonalRecords = records
	})
}

func (a *Aggregator) fetchInsights(ctx context.Context) {
	insights, err := a.dataSource.Insights(ctx)
	a.settle(FieldInsights, err, func(s *Snapshot) {
		s.Insights = insights
	})
}

func (a *Aggregator) fetchProgression(ctx context.Context) {
	progression, err := a.dataSource.ProgressionState(ctx)
	a.settle(FieldProgression, err, func(s *Snapshot) {
		s.Progression = stats.DeriveProgression(progression, a.levelingCurve)
	})
}

func (a *Aggregator) fetchAchievements(ctx context.Context) {
	achievements, err := a.dataSource.RecentAchievements(ctx)
	a.settle(FieldAchievements, err, func(s *Snapshot) {
		s.Achievements = achievements
	})
}

func (a *Aggregator) fetchDailyQuests(ctx context.Context) {
	quests, err := a.dataSource.DailyQuests(ctx)
	a.settle(FieldDailyQuests, err, func(s *Snapshot) {
		s.DailyQuests = quests
	})
}

func (a *Aggregator) fetchProfile(ctx context.Context) {
	profile, err := a.dataSource.UserProfile(ctx)
	a.settle(FieldProfile, err, func(s *Snapshot) {
		s.Profile = profile
	})
}

func (a *Aggregator) fetchMuscleRecovery(ctx context.Context) {
	recoveryList, err := a.dataSource.MuscleRecoveryList(ctx)
	a.settle(FieldMuscleRecovery, err, func(s *Snapshot) {
		s.MuscleRecovery = stats.RecoveryDisplayOrder(recoveryList)
	})
}

func (a *Aggregator) fetchExerciseCatalog(ctx context.Context) {
	catalog, err := a.dataSource.ExerciseCatalog(ctx)
	a.settle(FieldExerciseCatalog, err, func(s *Snapshot) {
		s.ExerciseCatalog = catalog
	})
}

func (a *Aggregator) fetchCurrentMission(ctx context.Context) {
	mission, err := a.dataSource.CurrentMission(ctx)
	a.settle(FieldCurrentMission, err, func(s *Snapshot) {
		s.CurrentMission = mission
	})
}

func (a *Aggregator) fetchGoalPacing(ctx context.Context) {
	goals, err := a.dataSource.GoalPacingList(ctx)
	a.settle(FieldGoalPacing, err, func(s *Snapshot) {
		s.Goals = stats.EvaluatePacing(goals, time.Now())
	})
}

// settle records the outcome of one source fetch. Each fetch writes
// exactly its own field, under the aggregator's mutex, so that any
// interleaving of arrivals produces the same final snapshot.
func (a *Aggregator) settle(field Field, err error, apply func(s *Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case err == nil:
		apply(&a.snapshot)
		a.snapshot.FieldStates[field] = FieldStateLoaded
		delete(a.snapshot.FieldErrors, field)
	case errors.Is(err, fitapi.ErrNotFound):
		// valid but empty, not a failure
		apply(&a.snapshot)
		a.snapshot.FieldStates[field] = FieldStateEmpty
		delete(a.snapshot.FieldErrors, field)
	case errors.Is(err, fitapi.ErrUnauthorized):
		a.snapshot.AuthRequired = true
		a.flagFailedLocked(field, err)
	default:
		a.flagFailedLocked(field, err)
		if a.metricsManager != nil {
			a.metricsManager.CounterSourceFetchErrors.WithLabelValues(string(field)).Inc()
		}
		log.Errorf("dashboard: fetch %s: %s", field, err)
	}
}

func (a *Aggregator) flagFailedLocked(field Field, err error) {
	// a previously loaded value is kept - stale but present
	switch a.snapshot.FieldStates[field] {
	case FieldStateLoaded, FieldStateStale:
		a.snapshot.FieldStates[field] = FieldStateStale
	default:
		a.snapshot.FieldStates[field] = FieldStateFailed
	}
	a.snapshot.FieldErrors[field] = err.Error()
}

// runTrendFetches is the second, dependent phase: per-exercise trends need
// the exercise catalog. If the catalog did not load this cycle, trends are
// skipped entirely - not attempted, not marked failed.
func (a *Aggregator) runTrendFetches(ctx context.Context) {
	a.mu.Lock()
	catalogState := a.snapshot.FieldStates[FieldExerciseCatalog]
	catalog := a.snapshot.ExerciseCatalog
	a.mu.Unlock()

	if catalogState != FieldStateLoaded {
		log.Debugf("dashboard: exercise catalog not loaded (%s), skipping trend fetches", catalogState)
		return
	}

	exerciseIDs := make([]string, 0, len(stats.CanonicalLifts))
	for _, lift := range stats.CanonicalLifts {
		if exerciseType, ok := stats.ResolveLift(catalog, lift); ok {
			exerciseIDs = append(exerciseIDs, exerciseType.ID)
		}
	}

	if len(exerciseIDs) == 0 {
		a.mu.Lock()
		a.snapshot.FieldStates[FieldTrends] = FieldStateEmpty
		delete(a.snapshot.FieldErrors, FieldTrends)
		a.mu.Unlock()
		return
	}

	var (
		wg        sync.WaitGroup
		errsMu    sync.Mutex
		trendErrs error
	)
	for _, exerciseID := range exerciseIDs {
		wg.Add(1)
		go func(exerciseID string) {
			defer wg.Done()

			trend, err := a.dataSource.ExerciseTrend(ctx, exerciseID, a.trendRange)
			switch {
			case err == nil && trend != nil:
				a.mu.Lock()
				a.snapshot.Trends[exerciseID] = *trend
				a.mu.Unlock()
			case errors.Is(err, fitapi.ErrNotFound):
				// no trend data for this exercise yet
			case errors.Is(err, fitapi.ErrUnauthorized):
				a.mu.Lock()
				a.snapshot.AuthRequired = true
				a.mu.Unlock()
				errsMu.Lock()
				trendErrs = multierr.Append(trendErrs, fmt.Errorf("trend %s: %w", exerciseID, err))
				errsMu.Unlock()
			default:
				if a.metricsManager != nil {
					a.metricsManager.CounterSourceFetchErrors.WithLabelValues(string(FieldTrends)).Inc()
				}
				log.Errorf("dashboard: fetch trend for %s: %s", exerciseID, err)
				errsMu.Lock()
				trendErrs = multierr.Append(trendErrs, fmt.Errorf("trend %s: %w", exerciseID, err))
				errsMu.Unlock()
			}
		}(exerciseID)
	}
	wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if trendErrs != nil {
		a.flagFailedLocked(FieldTrends, trendErrs)
		return
	}
	if len(a.snapshot.Trends) > 0 {
		a.snapshot.FieldStates[FieldTrends] = FieldStateLoaded
	} else {
		a.snapshot.FieldStates[FieldTrends] = FieldStateEmpty
	}
	delete(a.snapshot.FieldErrors, FieldTrends)
}

func (a *Aggregator) recomputeDerived() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot.BigThree = stats.BigThree(a.snapshot.ExerciseCatalog, a.snapshot.Trends)
}

// triggerHealthSync fires the one-way health counters sync and lets the
// refresh return. Sync failures never affect the snapshot.
func (a *Aggregator) triggerHealthSync(ctx context.Context) {
	if a.healthSyncer == nil {
		return
	}

	syncCtx := context.WithoutCancel(ctx)
	a.syncWG.Add(1)
	go func() {
		defer a.syncWG.Done()
		if err := a.healthSyncer.SyncToBackend(syncCtx); err != nil {
			if a.metricsManager != nil {
				a.metricsManager.CounterHealthSyncFailures.Inc()
			}
			log.Errorf("dashboard: health counters sync: %s", err)
			return
		}
		if a.metricsManager != nil {
			a.metricsManager.CounterHealthSyncs.Inc()
		}
	}()
}

// publish keeps only the latest snapshot in the updates channel.
func (a *Aggregator) publish(snapshot Snapshot) {
	for {
		select {
		case a.updates <- snapshot:
			return
		default:
		}
		select {
		case <-a.updates:
		default:
		}
	}
}
