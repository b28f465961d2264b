//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/2beens/befit/internal/auth"

	"github.com/stretchr/testify/require"
)

type loginResponse struct {
	Token string `json:"token"`
}

func doLogin(ctx context.Context, t *testing.T, client *http.Client, username, password string) string {
	t.Helper()

	loginReqJson, err := json.Marshal(auth.Credentials{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), bytes.NewBuffer(loginReqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, respBytes)

	var loginResp loginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))

	return loginResp.Token
}

// doRequest sends body (marshalled to json when not nil) with the login token, if any.
// Redirects are not followed so 303 answers can be asserted.
func doRequest(
	ctx context.Context,
	t *testing.T,
	method, path, token string,
	body any,
) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBytes
}
