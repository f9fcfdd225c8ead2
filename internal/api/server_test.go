// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-crawler/internal/api"
	"github.com/taibuivan/yomira-crawler/internal/crawler"
	"github.com/taibuivan/yomira-crawler/internal/library"
	"github.com/taibuivan/yomira-crawler/internal/platform/config"
	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

func newServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	// The services are never reached by these requests.
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Crawler:   crawler.NewHandler(crawler.NewService(nil, nil, nil, nil, nil, logger)),
		Library:   library.NewHandler(library.NewService(nil, nil, nil, logger)),
	}

	cfg := &config.Config{ServerPort: "0", Environment: "production"}
	return api.NewServer(ctx, cfg, logger, handlers).Handler()
}

/*
TestHealth reports liveness and per-dependency readiness.
*/
func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		deps   api.HealthDependencies
		path   string
		status int
		body   string
	}{
		{"liveness", api.HealthDependencies{}, "/health", http.StatusOK, `"app":"` + constants.AppName + `"`},
		{
			"ready",
			api.HealthDependencies{
				CheckDatabase: func(context.Context) error { return nil },
				CheckCache:    func(context.Context) error { return nil },
			},
			"/ready", http.StatusOK, `"status":"ready"`,
		},
		{
			"redis_down",
			api.HealthDependencies{
				CheckDatabase: func(context.Context) error { return nil },
				CheckCache:    func(context.Context) error { return errors.New("connection refused") },
			},
			"/ready", http.StatusServiceUnavailable, `"error":"connection refused"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			newServer(t, tt.deps).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.body)
			assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
		})
	}
}

/*
TestRouting mounts the domain routers under /api/v1.
*/
func TestRouting(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/manga", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code, "empty search is rejected before any upstream call")

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/chapters/x/pages/0", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code, "page indices start at 1")

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v2/anything", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
