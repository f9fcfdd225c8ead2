// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangadex is the typed client for the MangaDex public API.

It covers the endpoints the crawler depends on:

  - At-home metadata (/at-home/server/{id}) with its rate-limit headers.
  - Title search (/manga) and manga details (/manga/{id}).
  - Chapter listing (/chapter) with offset pagination.
  - Cover art bytes from the uploads host.

Responses are decoded into typed structs. Fields the crawler cannot work without are
declared as pointers so that their absence is detected instead of silently zero-valued.

The client never retries and never sleeps on rate limits; it surfaces the advisory
counters and lets the caller decide.
*/
package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// # Errors

var (
	// ErrMetadataMissing is returned when an upstream response lacks data the crawler requires.
	ErrMetadataMissing = errors.New("mangadex: chapter metadata missing")

	// ErrUpstream is returned for non-2xx responses outside the at-home endpoint.
	ErrUpstream = errors.New("mangadex: upstream request failed")

	// ErrNotFound is returned when the upstream answers 404.
	ErrNotFound = errors.New("mangadex: not found")

	// ErrCoverTooLarge is returned when a cover body exceeds the configured cap.
	ErrCoverTooLarge = errors.New("mangadex: cover exceeds size cap")
)

// Options configures a [Client].
type Options struct {
	APIURL     string
	UploadsURL string
	// Timeout bounds each metadata call. Zero keeps the caller's deadline only.
	Timeout time.Duration
	// MaxCoverBytes caps a cover download. Zero means 20 MiB.
	MaxCoverBytes int64
}

// Client talks to the MangaDex API through a shared [http.Client].
type Client struct {
	httpClient *http.Client
	apiURL     string
	uploadsURL string
	timeout    time.Duration
	maxCover   int64
}

// NewClient creates a [Client]. The http client is expected to carry identity headers
// and the outbound budget (see the httpclient package).
func NewClient(httpClient *http.Client, options Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if options.MaxCoverBytes <= 0 {
		options.MaxCoverBytes = maxCoverBytes
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(options.APIURL, "/"),
		uploadsURL: strings.TrimRight(options.UploadsURL, "/"),
		timeout:    options.Timeout,
		maxCover:   options.MaxCoverBytes,
	}
}

// # Internal Helpers

// withTimeout applies the per-call metadata deadline when one is configured.
func (client *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if client.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, client.timeout)
}

// getJSON issues a GET against the API host and decodes a 2xx JSON body into target.
func (client *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	ctx, cancel := client.withTimeout(ctx)
	defer cancel()

	endpoint := client.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("mangadex: build request %s: %w", path, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mangadex: request %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		// Drain a little of the body so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4<<10))
		return fmt.Errorf("%w: %s returned %s", ErrUpstream, path, response.Status)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("mangadex: decode %s: %w", path, err)
	}

	return nil
}
