// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encre-app/encre/internal/api"
)

type readyPayload struct {
	Data struct {
		Status string `json:"status"`
		Checks []struct {
			Name  string `json:"name"`
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"checks"`
	} `json:"data"`
}

func ready(t *testing.T, deps api.HealthDependencies) (int, readyPayload) {
	t.Helper()

	_, readiness := api.NewHealthHandlers(deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var payload readyPayload
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder.Code, payload
}

/*
TestReadiness_AllHealthy verifies a 200 with every check reported.
*/
func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }

	code, payload := ready(t, api.HealthDependencies{CheckDatabase: ok, CheckCache: ok})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", payload.Data.Status)
	require.Len(t, payload.Data.Checks, 2)
	assert.Equal(t, "postgres", payload.Data.Checks[0].Name)
	assert.Equal(t, "redis", payload.Data.Checks[1].Name)
}

/*
TestReadiness_Degraded verifies that one failing dependency yields a 503 and does not hide the other result.
*/
func TestReadiness_Degraded(t *testing.T) {
	code, payload := ready(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("connection refused") },
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", payload.Data.Status)
	require.Len(t, payload.Data.Checks, 2)
	assert.True(t, payload.Data.Checks[0].OK)
	assert.False(t, payload.Data.Checks[1].OK)
	assert.Equal(t, "connection refused", payload.Data.Checks[1].Error)
}

/*
TestReadiness_CheckDeadline verifies that checks receive a bounded context.
*/
func TestReadiness_CheckDeadline(t *testing.T) {
	var hasDeadline bool
	code, _ := ready(t, api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, hasDeadline)
}
