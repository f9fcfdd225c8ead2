// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
)

func newTestClient(t *testing.T, handler http.Handler) *mangadex.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return mangadex.NewClient(server.Client(), mangadex.Options{
		APIURL:     server.URL,
		UploadsURL: server.URL + "/uploads",
		Timeout:    5 * time.Second,
	})
}

/*
TestResolveChapter covers header parsing and the required-field checks of the
at-home response.
*/
func TestResolveChapter(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		headers    map[string]string
		body       string
		wantErr    error
		wantSignal mangadex.RateSignal
		wantPages  int
	}{
		{
			name:       "ok_with_headers",
			status:     http.StatusOK,
			headers:    map[string]string{"X-RateLimit-Remaining": "38", "X-RateLimit-Retry-After": "1.5"},
			body:       `{"result":"ok","baseUrl":"https://node.example/","chapter":{"hash":"h1","data":["d1","d2","d3"]}}`,
			wantSignal: mangadex.RateSignal{Remaining: 38, RetryAfter: 1500 * time.Millisecond},
			wantPages:  3,
		},
		{
			name:       "headers_absent_default",
			status:     http.StatusOK,
			body:       `{"baseUrl":"https://node.example","chapter":{"hash":"h1","data":["d1"]}}`,
			wantSignal: mangadex.RateSignal{Remaining: 1},
			wantPages:  1,
		},
		{
			name:       "headers_garbage_default",
			status:     http.StatusOK,
			headers:    map[string]string{"X-RateLimit-Remaining": "many", "X-RateLimit-Retry-After": "soon"},
			body:       `{"baseUrl":"https://node.example","chapter":{"hash":"h1","data":["d1"]}}`,
			wantSignal: mangadex.RateSignal{Remaining: 1},
			wantPages:  1,
		},
		{
			name:    "missing_base_url",
			status:  http.StatusOK,
			body:    `{"chapter":{"hash":"h1","data":["d1"]}}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "missing_hash",
			status:  http.StatusOK,
			body:    `{"baseUrl":"https://node.example","chapter":{"data":["d1"]}}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "missing_data",
			status:  http.StatusOK,
			body:    `{"baseUrl":"https://node.example","chapter":{"hash":"h1"}}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "empty_data",
			status:  http.StatusOK,
			body:    `{"baseUrl":"https://node.example","chapter":{"hash":"h1","data":[]}}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "result_error",
			status:  http.StatusOK,
			body:    `{"result":"error","baseUrl":"https://node.example","chapter":{"hash":"h1","data":["d1"]}}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{}`,
			wantErr: mangadex.ErrMetadataMissing,
		},
		{
			name:    "malformed_json",
			status:  http.StatusOK,
			body:    `{"baseUrl":`,
			wantErr: mangadex.ErrMetadataMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/at-home/server/chapter-1", request.URL.Path)
				for key, value := range tt.headers {
					writer.Header().Set(key, value)
				}
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))

			server, err := client.ResolveChapter(context.Background(), "chapter-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, server)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSignal, server.Signal)
			assert.Len(t, server.Digests, tt.wantPages)
			assert.Equal(t, "https://node.example/data/h1/d1", server.PageURL("d1"))
		})
	}
}

/*
TestResolveChapter_TooManyRequests checks that a 429 surfaces as a RateLimitError
with an exhausted budget.
*/
func TestResolveChapter_TooManyRequests(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("X-RateLimit-Retry-After", "12")
		writer.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ResolveChapter(context.Background(), "chapter-1")

	var limited *mangadex.RateLimitError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 0, limited.Signal.Remaining)
	assert.Equal(t, 12*time.Second, limited.Signal.RetryAfter)
}

/*
TestResolveChapter_EmptyID ensures no request is made for a blank identifier.
*/
func TestResolveChapter_EmptyID(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	_, err := client.ResolveChapter(context.Background(), "  ")
	assert.Error(t, err)
	assert.False(t, called)
}
