//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/2beens/befit/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		creds              auth.Credentials
		expectedStatusCode int
		expectedBody       string
	}{
		"good creds": {
			creds:              auth.Credentials{Username: testUsername, Password: testPassword},
			expectedStatusCode: http.StatusOK,
		},
		"bad password": {
			creds:              auth.Credentials{Username: testUsername, Password: "bad-password"},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "error, wrong credentials",
		},
		"bad username": {
			creds:              auth.Credentials{Username: "bad-username", Password: testPassword},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "error, wrong credentials",
		},
		"missing password": {
			creds:              auth.Credentials{Username: testUsername},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "error, password empty",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			resp, body := doRequest(ctx, t, "POST", "/a/login", "", tc.creds)
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, strings.TrimSpace(string(body)))
			} else {
				assert.Contains(t, string(body), `"token"`)
			}
		})
	}

	t.Run("login then logout", func(t *testing.T) {
		token := doLogin(ctx, t, s.httpClient, testUsername, testPassword)

		resp, _ := doRequest(ctx, t, "GET", "/gymstats/sessions", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := doRequest(ctx, t, "GET", "/a/logout", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "logged-out", string(body))

		resp, _ = doRequest(ctx, t, "GET", "/gymstats/sessions", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rate limiting", func(t *testing.T) {
		// simulate login requests brute force attack
		require.NoError(t, s.rateLimitsCleanup(ctx))
		creds := auth.Credentials{Username: "test-user", Password: "test-pass"}

		// config allows 10 login attempts per minute
		for i := 1; i <= 15; i++ {
			resp, _ := doRequest(ctx, t, "POST", "/a/login", "", creds)
			if i <= 10 {
				require.Equal(t, http.StatusBadRequest, resp.StatusCode, "iteration: %d", i)
				assert.Empty(t, resp.Header.Get("Retry-After"), "iteration: %d", i)
			} else {
				require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
				retryAfter, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64)
				require.NoError(t, err, "iteration: %d", i)
				assert.True(t, retryAfter > 0, "iteration: %d", i)
			}
		}

		require.NoError(t, s.rateLimitsCleanup(ctx))
	})
}
