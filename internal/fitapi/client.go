package fitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/2beens/liftdash/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogCacheKey = "exercise-catalog"
	// the exercise catalog moves slowly, cache it for a while
	catalogCacheExpireSeconds = 10 * 60
)

// Client talks to the fitness analytics backend. All payload shapes are
// defined by the backend, the client only decodes them.
type Client struct {
	baseURL      string
	authToken    string
	httpClient   *http.Client
	catalogCache *freecache.Cache
}

type ClientParams struct {
	BaseURL                   string
	AuthToken                 string
	HTTPClient                *http.Client
	CatalogCacheSizeMegabytes int
}

func NewClient(params ClientParams) *Client {
	megabyte := 1024 * 1024
	cacheSize := params.CatalogCacheSizeMegabytes * megabyte
	if cacheSize <= 0 {
		cacheSize = megabyte
	}

	return &Client{
		baseURL:      params.BaseURL,
		authToken:    params.AuthToken,
		httpClient:   params.HTTPClient,
		catalogCache: freecache.NewCache(cacheSize),
	}
}

func (c *Client) MostRecentWorkout(ctx context.Context) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.mostRecentWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout := &Workout{}
	if err := c.getJSON(ctx, "/v1/workouts/recent", nil, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (c *Client) WeeklyTotals(ctx context.Context) (_ *WeeklyTotals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.weeklyTotals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	totals := &WeeklyTotals{}
	if err := c.getJSON(ctx, "/v1/stats/weekly", nil, totals); err != nil {
		return nil, err
	}
	return totals, nil
}

func (c *Client) PersonalRecords(ctx context.Context) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.personalRecords")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var records []PersonalRecord
	if err := c.getJSON(ctx, "/v1/records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Insights(ctx context.Context) (_ []Insight, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.insights")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var insights []Insight
	if err := c.getJSON(ctx, "/v1/insights", nil, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

func (c *Client) ProgressionState(ctx context.Context) (_ *Progression, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.progressionState")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	progression := &Progression{}
	if err := c.getJSON(ctx, "/v1/progression", nil, progression); err != nil {
		return nil, err
	}
	return progression, nil
}

func (c *Client) RecentAchievements(ctx context.Context) (_ []Achievement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.recentAchievements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var achievements []Achievement
	if err := c.getJSON(ctx, "/v1/achievements/recent", nil, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (c *Client) DailyQuests(ctx context.Context) (_ []Quest, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.dailyQuests")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var quests []Quest
	if err := c.getJSON(ctx, "/v1/quests/daily", nil, &quests); err != nil {
		return nil, err
	}
	return quests, nil
}

func (c *Client) UserProfile(ctx context.Context) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.userProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profile := &Profile{}
	if err := c.getJSON(ctx, "/v1/profile", nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) MuscleRecoveryList(ctx context.Context) (_ []MuscleRecovery, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.muscleRecoveryList")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var recovery []MuscleRecovery
	if err := c.getJSON(ctx, "/v1/recovery", nil, &recovery); err != nil {
		return nil, err
	}
	return recovery, nil
}

func (c *Client) ExerciseCatalog(ctx context.Context) (_ []ExerciseType, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.exerciseCatalog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if catalogBytes, err := c.catalogCache.Get([]byte(catalogCacheKey)); err == nil {
		var catalog []ExerciseType
		if err = json.Unmarshal(catalogBytes, &catalog); err == nil {
			log.Tracef("found exercise catalog in cache, %d entries", len(catalog))
			return catalog, nil
		}
		log.Errorf("failed to unmarshal exercise catalog from cache: %s", err)
	}

	respBytes, err := c.get(ctx, "/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var catalog []ExerciseType
	if err := json.Unmarshal(respBytes, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal exercise catalog: %w", err)
	}

	if err := c.catalogCache.Set([]byte(catalogCacheKey), respBytes, catalogCacheExpireSeconds); err != nil {
		log.Errorf("failed to write exercise catalog cache: %s", err)
	}

	return catalog, nil
}

func (c *Client) CurrentMission(ctx context.Context) (_ *Mission, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.currentMission")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	mission := &Mission{}
	if err := c.getJSON(ctx, "/v1/missions/current", nil, mission); err != nil {
		return nil, err
	}
	return mission, nil
}

func (c *Client) GoalPacingList(ctx context.Context) (_ []GoalPacing, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.goalPacingList")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var goals []GoalPacing
	if err := c.getJSON(ctx, "/v1/goals/pacing", nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *Client) ExerciseTrend(
	ctx context.Context,
	exerciseID string,
	timeRange TimeRange,
) (_ *TrendRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.exerciseTrend")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise_id", exerciseID),
		attribute.String("time_range", string(timeRange)),
	)

	query := url.Values{}
	query.Set("range", string(timeRange))

	trend := &TrendRecord{}
	path := fmt.Sprintf("/v1/exercises/%s/trend", url.PathEscape(exerciseID))
	if err := c.getJSON(ctx, path, query, trend); err != nil {
		return nil, err
	}
	return trend, nil
}

// ClaimQuest acknowledges a completed daily quest and returns the updated
// xp / level / classification triple.
func (c *Client) ClaimQuest(ctx context.Context, questID string) (_ *ProgressionPatch, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitapi.claimQuest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("quest_id", questID))

	reqURL := fmt.Sprintf("%s/v1/quests/%s/claim", c.baseURL, url.PathEscape(questID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(nil))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	respBytes, err := c.do(req)
	if err != nil {
		return nil, err
	}

	patch := &ProgressionPatch{}
	if err := json.Unmarshal(respBytes, patch); err != nil {
		return nil, fmt.Errorf("unmarshal claim quest response: %w", err)
	}
	return patch, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	respBytes, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response bytes: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBytes),
		}
	}

	return respBytes, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
