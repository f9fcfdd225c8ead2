// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requestutil "github.com/taibuivan/yomira-crawler/internal/platform/request"
	"github.com/taibuivan/yomira-crawler/internal/platform/validate"
)

type fetchBody struct {
	Force bool `json:"force"`
}

/*
TestDecodeOptionalJSON accepts an empty body and rejects malformed JSON.
*/
func TestDecodeOptionalJSON(t *testing.T) {
	var body fetchBody

	empty := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, requestutil.DecodeOptionalJSON(empty, &body))
	assert.False(t, body.Force)

	valid := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"force":true}`))
	require.NoError(t, requestutil.DecodeOptionalJSON(valid, &body))
	assert.True(t, body.Force)

	broken := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"force":`))
	assert.ErrorIs(t, requestutil.DecodeOptionalJSON(broken, &body), validate.ErrInvalidJSON)
}

/*
TestIntParam reads integer route parameters through chi.
*/
func TestIntParam(t *testing.T) {
	router := chi.NewRouter()
	var got int
	var gotErr error
	router.Get("/pages/{page}", func(_ http.ResponseWriter, request *http.Request) {
		got, gotErr = requestutil.IntParam(request, "page")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages/7", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, 7, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages/seven", nil))
	assert.Error(t, gotErr)
}

/*
TestQueryList merges repeated and comma separated query values.
*/
func TestQueryList(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/manga?included=a,b&included=c", nil)
	assert.Equal(t, []string{"a", "b", "c"}, requestutil.QueryList(request, "included"))
}
