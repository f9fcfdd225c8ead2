// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction and body decoding so that
handlers share the same error behaviour.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-crawler/internal/platform/validate"
	"github.com/taibuivan/yomira-crawler/pkg/query"
)

// maxBodyBytes caps JSON request bodies; crawler requests are tiny.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes)).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// DecodeOptionalJSON is [DecodeJSON] but accepts an empty body, leaving target untouched.
func DecodeOptionalJSON(request *http.Request, target any) error {
	if request.Body == nil || request.ContentLength == 0 {
		return nil
	}

	err := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes)).Decode(target)
	if err != nil && !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (chapter or manga ID) from the request.
*/
func ID(request *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(request, name))
}

// IntParam parses a named URL parameter as an integer.
func IntParam(request *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(request, name))
	if err != nil {
		return 0, validate.RequiredError(name, "Must be an integer")
	}
	return value, nil
}

// QueryList returns the values of a repeated or comma separated query parameter.
//
// Both ?tag=a&tag=b and ?tag=a,b yield [a b].
func QueryList(request *http.Request, name string) []string {
	return query.StringSlice(request.URL.Query()[name]...)
}
