package fitapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2beens/liftdash/internal/fitapi"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(serverURL string) *fitapi.Client {
	return fitapi.NewClient(fitapi.ClientParams{
		BaseURL:    serverURL,
		AuthToken:  "test-token",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
}

func TestClient_MostRecentWorkout(t *testing.T) {
	workout := fitapi.Workout{
		ID:              gofakeit.UUID(),
		Title:           gofakeit.Sentence(3),
		StartedAt:       time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second),
		DurationMinutes: gofakeit.Number(20, 120),
		TotalVolume:     gofakeit.Float64Range(1000, 20000),
		ExerciseCount:   gofakeit.Number(3, 10),
	}

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workouts/recent", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewEncoder(w).Encode(workout))
	}))
	defer testServer.Close()

	client := newTestClient(testServer.URL)
	received, err := client.MostRecentWorkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workout, *received)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	for name, tc := range map[string]struct {
		statusCode int
		checkErr   func(t *testing.T, err error)
	}{
		"unauthorized": {
			statusCode: http.StatusUnauthorized,
			checkErr: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, fitapi.ErrUnauthorized))
			},
		},
		"forbidden is unauthorized too": {
			statusCode: http.StatusForbidden,
			checkErr: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, fitapi.ErrUnauthorized))
			},
		},
		"not found": {
			statusCode: http.StatusNotFound,
			checkErr: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, fitapi.ErrNotFound))
			},
		},
		"server error": {
			statusCode: http.StatusInternalServerError,
			checkErr: func(t *testing.T, err error) {
				var apiErr *fitapi.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			},
		},
		"bad request": {
			statusCode: http.StatusBadRequest,
			checkErr: func(t *testing.T, err error) {
				var apiErr *fitapi.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.statusCode)
			}))
			defer testServer.Close()

			client := newTestClient(testServer.URL)
			totals, err := client.WeeklyTotals(context.Background())
			require.Error(t, err)
			assert.Nil(t, totals)
			tc.checkErr(t, err)
		})
	}
}

func TestClient_ExerciseCatalog_Cached(t *testing.T) {
	catalog := []fitapi.ExerciseType{
		{ID: gofakeit.UUID(), Name: "Barbell Back Squat", MuscleGroup: "legs"},
		{ID: gofakeit.UUID(), Name: "Bench Press", MuscleGroup: "chest"},
	}

	var serverHits atomic.Int32
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits.Add(1)
		assert.Equal(t, "/v1/exercises", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(catalog))
	}))
	defer testServer.Close()

	client := newTestClient(testServer.URL)
	ctx := context.Background()

	received, err := client.ExerciseCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog, received)
	assert.Equal(t, int32(1), serverHits.Load())

	// second read is served from the cache
	received, err = client.ExerciseCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog, received)
	assert.Equal(t, int32(1), serverHits.Load())
}

func TestClient_ExerciseTrend(t *testing.T) {
	percentChange := 4.2
	trend := fitapi.TrendRecord{
		ExerciseID:    "ex-sq",
		E1RM:          152.5,
		Direction:     "improving",
		PercentChange: &percentChange,
	}

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exercises/ex-sq/trend", r.URL.Path)
		assert.Equal(t, "12w", r.URL.Query().Get("range"))
		require.NoError(t, json.NewEncoder(w).Encode(trend))
	}))
	defer testServer.Close()

	client := newTestClient(testServer.URL)
	received, err := client.ExerciseTrend(context.Background(), "ex-sq", fitapi.TimeRange12W)
	require.NoError(t, err)
	assert.Equal(t, trend, *received)
}

func TestClient_ClaimQuest(t *testing.T) {
	patch := fitapi.ProgressionPatch{
		TotalXP:        12550,
		Level:          14,
		Classification: "intermediate",
	}

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/quests/q-1/claim", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(patch))
	}))
	defer testServer.Close()

	client := newTestClient(testServer.URL)
	received, err := client.ClaimQuest(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, patch, *received)
}

func TestClient_MalformedResponse(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("not json at all"))
		require.NoError(t, err)
	}))
	defer testServer.Close()

	client := newTestClient(testServer.URL)
	profile, err := client.UserProfile(context.Background())
	require.Error(t, err)
	assert.Nil(t, profile)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestParseTimeRange(t *testing.T) {
	for _, valid := range []string{"4w", "8w", "12w", "26w", "52w"} {
		timeRange, err := fitapi.ParseTimeRange(valid)
		require.NoError(t, err)
		assert.Equal(t, fitapi.TimeRange(valid), timeRange)
	}

	for _, invalid := range []string{"", "1w", "12W", "twelve weeks"} {
		_, err := fitapi.ParseTimeRange(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}
