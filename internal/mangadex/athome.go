// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

// RateSignal holds the advisory rate-limit counters of an at-home response.
type RateSignal struct {
	// Remaining is the number of requests left in the current window.
	Remaining int
	// RetryAfter is the advised wait before the budget refills.
	RetryAfter time.Duration
}

// AtHomeServer is the resolved page-serving location of one chapter.
type AtHomeServer struct {
	ChapterID string
	BaseURL   string
	Hash      string
	// Digests holds page file names in page order; index = position + 1.
	Digests []string
	// DataSaver holds the compressed variants when the upstream sends them.
	DataSaver []string
	Signal    RateSignal
}

// PageURL builds the download URL of one page digest.
func (server *AtHomeServer) PageURL(digest string) string {
	return server.BaseURL + "/data/" + server.Hash + "/" + digest
}

// RateLimitError is returned when the at-home endpoint answers 429.
type RateLimitError struct {
	Signal RateSignal
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("mangadex: rate limited, retry after %s", e.Signal.RetryAfter)
}

/*
ResolveChapter retrieves the page locations and rate counters for a chapter.

Parameters:
  - ctx: context.Context
  - chapterID: string (non-empty MangaDex chapter ID)

Returns:
  - *AtHomeServer: Base URL, hash, ordered digests and the rate signal
  - error: ErrMetadataMissing (wrapped) or *RateLimitError
*/
func (client *Client) ResolveChapter(ctx context.Context, chapterID string) (*AtHomeServer, error) {
	chapterID = strings.TrimSpace(chapterID)
	if chapterID == "" {
		return nil, errors.New("mangadex: chapter id is required")
	}

	ctx, cancel := client.withTimeout(ctx)
	defer cancel()

	endpoint := client.apiURL + "/at-home/server/" + url.PathEscape(chapterID)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrMetadataMissing, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMetadataMissing, chapterID, err)
	}
	defer response.Body.Close()

	signal := parseRateSignal(response.Header)

	if response.StatusCode == http.StatusTooManyRequests {
		signal.Remaining = 0
		return nil, &RateLimitError{Signal: signal}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4<<10))
		return nil, fmt.Errorf("%w: %s returned %s", ErrMetadataMissing, chapterID, response.Status)
	}

	var payload atHomeResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrMetadataMissing, chapterID, err)
	}

	server, err := payload.toServer(chapterID)
	if err != nil {
		return nil, err
	}
	server.Signal = signal

	return server, nil
}

func (payload *atHomeResponse) toServer(chapterID string) (*AtHomeServer, error) {
	if payload.Result != nil && *payload.Result != "ok" {
		return nil, fmt.Errorf("%w: %s: result %q", ErrMetadataMissing, chapterID, *payload.Result)
	}

	if payload.BaseURL == nil || *payload.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s: baseUrl", ErrMetadataMissing, chapterID)
	}

	if payload.Chapter == nil || payload.Chapter.Hash == nil || *payload.Chapter.Hash == "" {
		return nil, fmt.Errorf("%w: %s: chapter.hash", ErrMetadataMissing, chapterID)
	}

	if payload.Chapter.Data == nil || len(*payload.Chapter.Data) == 0 {
		return nil, fmt.Errorf("%w: %s: chapter.data", ErrMetadataMissing, chapterID)
	}

	return &AtHomeServer{
		ChapterID: chapterID,
		BaseURL:   strings.TrimRight(*payload.BaseURL, "/"),
		Hash:      *payload.Chapter.Hash,
		Digests:   *payload.Chapter.Data,
		DataSaver: payload.Chapter.DataSaver,
	}, nil
}

// parseRateSignal reads the rate headers; Remaining defaults to 1 and RetryAfter to 0.
func parseRateSignal(header http.Header) RateSignal {
	signal := RateSignal{Remaining: 1}

	if raw := strings.TrimSpace(header.Get(constants.HeaderRateLimitRemaining)); raw != "" {
		if remaining, err := strconv.Atoi(raw); err == nil {
			signal.Remaining = remaining
		}
	}

	if raw := strings.TrimSpace(header.Get(constants.HeaderRateLimitRetryAfter)); raw != "" {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds > 0 {
			signal.RetryAfter = time.Duration(seconds * float64(time.Second))
		}
	}

	return signal
}
