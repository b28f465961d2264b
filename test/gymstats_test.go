//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/befit/internal/gymstats/details"
	"github.com/2beens/befit/internal/gymstats/exercises"
	"github.com/2beens/befit/internal/gymstats/sessions"
	"github.com/2beens/befit/internal/gymstats/stats"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) deleteAllTrainingData(ctx context.Context) {
	_, err := s.dbPool.Exec(ctx, "DELETE FROM training_detail")
	require.NoError(s.T(), err)
	_, err = s.dbPool.Exec(ctx, "DELETE FROM training_session")
	require.NoError(s.T(), err)
	_, err = s.dbPool.Exec(ctx, "DELETE FROM exercise")
	require.NoError(s.T(), err)
}

func (s *IntegrationTestSuite) TestExerciseCatalog() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.deleteAllTrainingData(ctx)

	adminToken := doLogin(ctx, t, s.httpClient, testAdminUsername, testPassword)
	userToken := doLogin(ctx, t, s.httpClient, testUsername, testPassword)

	resp, body := doRequest(ctx, t, "POST", "/gymstats/exercises", userToken, exercises.ExerciseInput{Name: "Squat"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode, string(body))

	resp, body = doRequest(ctx, t, "POST", "/gymstats/exercises", adminToken, exercises.ExerciseInput{Name: "Sq"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"must be at least 3 characters long"`)
	assert.Contains(t, string(body), `"input"`)

	resp, body = doRequest(ctx, t, "POST", "/gymstats/exercises", adminToken, exercises.ExerciseInput{Name: "Squat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var squat exercises.Exercise
	require.NoError(t, json.Unmarshal(body, &squat))

	// lookup is public and reflects the write right away
	resp, body = doRequest(ctx, t, "GET", "/gymstats/exercises/lookup", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lookup []exercises.LookupItem
	require.NoError(t, json.Unmarshal(body, &lookup))
	assert.Equal(t, []exercises.LookupItem{{ID: squat.ID, Name: "Squat"}}, lookup)

	// update with the current version, then with the stale one
	update := exercises.ExerciseInput{ID: squat.ID, Name: "Back Squat", Version: squat.Version}
	exercisePath := fmt.Sprintf("/gymstats/exercises/%d", squat.ID)
	resp, body = doRequest(ctx, t, "PUT", exercisePath, adminToken, update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, _ = doRequest(ctx, t, "PUT", exercisePath, adminToken, update)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = doRequest(ctx, t, "DELETE", exercisePath, adminToken, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/gymstats/exercises", resp.Header.Get("Location"))

	resp, _ = doRequest(ctx, t, "DELETE", exercisePath, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestTrainingSessionsAndStatistics() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.deleteAllTrainingData(ctx)

	adminToken := doLogin(ctx, t, s.httpClient, testAdminUsername, testPassword)
	userToken := doLogin(ctx, t, s.httpClient, testUsername, testPassword)
	otherToken := doLogin(ctx, t, s.httpClient, testOtherUsername, testPassword)

	resp, body := doRequest(ctx, t, "POST", "/gymstats/exercises", adminToken, exercises.ExerciseInput{Name: "Squat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var squat exercises.Exercise
	require.NoError(t, json.Unmarshal(body, &squat))

	// no data yet
	resp, body = doRequest(ctx, t, "GET", "/gymstats/stats", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report stats.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Empty(t, report.Statistics)
	assert.Equal(t, stats.NoDataMessage, report.Message)

	start := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Second)
	resp, body = doRequest(ctx, t, "POST", "/gymstats/sessions", userToken, sessions.SessionInput{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var session sessions.TrainingSession
	require.NoError(t, json.Unmarshal(body, &session))
	sessionPath := fmt.Sprintf("/gymstats/sessions/%d", session.ID)

	for _, in := range []details.DetailInput{
		{TrainingSessionID: session.ID, ExerciseID: squat.ID, Load: decimal.NewFromInt(100), Sets: 3, Repetitions: 10},
		{TrainingSessionID: session.ID, ExerciseID: squat.ID, Load: decimal.NewFromInt(110), Sets: 3, Repetitions: 8},
	} {
		resp, body = doRequest(ctx, t, "POST", "/gymstats/details", userToken, in)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		assert.Equal(t, sessionPath, resp.Header.Get("Location"))
	}

	resp, body = doRequest(ctx, t, "POST", "/gymstats/details", userToken, details.DetailInput{
		TrainingSessionID: session.ID, ExerciseID: squat.ID, Load: decimal.RequireFromString("10.555"), Sets: 3, Repetitions: 8,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "must have at most two decimal places")

	// the other user sees nothing of it
	resp, _ = doRequest(ctx, t, "GET", sessionPath+"/details", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doRequest(ctx, t, "DELETE", sessionPath, otherToken, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = doRequest(ctx, t, "GET", sessionPath+"/details", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var views []details.DetailView
	require.NoError(t, json.Unmarshal(body, &views))
	require.Len(t, views, 2)

	resp, body = doRequest(ctx, t, "GET", "/gymstats/stats", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &report))
	require.Len(t, report.Statistics, 1)
	squatStats := report.Statistics[0]
	assert.Equal(t, "Squat", squatStats.ExerciseName)
	assert.Equal(t, 2, squatStats.TimesPerformed)
	assert.Equal(t, 54, squatStats.TotalReps)
	assert.Equal(t, 105.0, squatStats.AverageLoad)
	assert.True(t, decimal.NewFromInt(110).Equal(squatStats.MaximumLoad))

	// details first, then the session
	resp, _ = doRequest(ctx, t, "DELETE", sessionPath, userToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	for _, v := range views {
		resp, _ = doRequest(ctx, t, "DELETE", fmt.Sprintf("/gymstats/details/%d", v.ID), userToken, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, sessionPath, resp.Header.Get("Location"))
	}
	resp, _ = doRequest(ctx, t, "DELETE", sessionPath, userToken, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/gymstats/sessions", resp.Header.Get("Location"))
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	t := s.T()

	resp, err := s.httpClient.Get(fmt.Sprintf("http://%s:%s/metrics", serverHost, metricsPort))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "befit_main_request")
	assert.Contains(t, string(body), "pgxpool_")
}
