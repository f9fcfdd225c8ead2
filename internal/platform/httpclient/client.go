// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package httpclient builds the single long-lived outbound [http.Client] of the crawler.

The client is created once in cmd/crawler and injected into the MangaDex client and
the page scheduler. It is safe for concurrent use by every page task.

Policy carried by the transport:

  - Identity: User-Agent on every request, API key only towards the API host.
  - Budget: A token bucket (x/time/rate) throttles requests to the API host.
  - Pooling: Enough idle connections per host for a full parallel page batch.

Timeouts are per call (context deadlines), never a global [http.Client.Timeout],
so a slow image host cannot starve metadata calls and vice versa.
*/
package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Options configures [New].
type Options struct {
	// APIURL identifies the host whose requests are throttled and authenticated.
	APIURL string
	// APIKey is sent as a bearer token to the API host when non-empty.
	APIKey string
	// UserAgent is set on every outbound request that does not already carry one.
	UserAgent string
	// RPS and Burst size the API host token bucket.
	RPS   float64
	Burst int
	// MaxConnsPerHost bounds parallel connections per host; 0 means unlimited.
	MaxConnsPerHost int
}

// Transport decorates a base RoundTripper with identity headers and the API budget.
type Transport struct {
	Base      http.RoundTripper
	apiHost   string
	apiKey    string
	userAgent string
	limiter   *rate.Limiter
}

// New constructs the shared outbound client.
func New(options Options) (*http.Client, error) {
	apiURL, err := url.Parse(strings.TrimSpace(options.APIURL))
	if err != nil || apiURL.Host == "" {
		return nil, fmt.Errorf("httpclient: invalid API URL %q", options.APIURL)
	}

	if options.RPS <= 0 || options.Burst < 1 {
		return nil, errors.New("httpclient: RPS must be positive and Burst at least 1")
	}

	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		MaxConnsPerHost:       options.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: &Transport{
			Base:      base,
			apiHost:   apiURL.Host,
			apiKey:    strings.TrimSpace(options.APIKey),
			userAgent: options.UserAgent,
			limiter:   rate.NewLimiter(rate.Limit(options.RPS), options.Burst),
		},
	}, nil
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	if request == nil {
		return nil, errors.New("httpclient: nil request")
	}

	// Clone so the caller's request is never mutated by the transport.
	outbound := request.Clone(request.Context())
	if outbound.Header.Get("User-Agent") == "" && t.userAgent != "" {
		outbound.Header.Set("User-Agent", t.userAgent)
	}

	if outbound.URL.Host == t.apiHost {
		if t.apiKey != "" {
			outbound.Header.Set("Authorization", "Bearer "+t.apiKey)
		}

		// Wait honours the request context, so a cancelled call never blocks here.
		if err := t.limiter.Wait(outbound.Context()); err != nil {
			return nil, fmt.Errorf("httpclient: outbound budget: %w", err)
		}
	}

	return t.base().RoundTrip(outbound)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}
