// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/ctxutil"
)

// # Parallel Fetch Scheduler

const (
	// poolHeadroom is added to GOMAXPROCS; page downloads are I/O bound.
	poolHeadroom = 4

	// maxPageBytes is the default cap on a single page body.
	maxPageBytes = 32 << 20
)

var (
	errEmptyPage = errors.New("empty page body")

	// ErrPageTooLarge is returned for a page body above the configured cap.
	// The page is reported as a failure and never stored.
	ErrPageTooLarge = errors.New("page body exceeds size cap")
)

// Work is one page to download.
type Work struct {
	Index  int
	Digest string
}

// WorkSet pairs each digest with its 1-based index and drops indices already stored.
func WorkSet(digests []string, stored PageSet) []Work {
	work := make([]Work, 0, len(digests))
	for position, digest := range digests {
		index := position + 1
		if stored.Has(index) {
			continue
		}
		work = append(work, Work{Index: index, Digest: digest})
	}
	return work
}

// PoolSize bounds concurrency to min(work, GOMAXPROCS+4). A positive override
// replaces the GOMAXPROCS+4 term.
func PoolSize(work, override int) int {
	if work <= 0 {
		return 0
	}

	limit := runtime.GOMAXPROCS(0) + poolHeadroom
	if override > 0 {
		limit = override
	}

	return min(work, limit)
}

// SchedulerOptions configures a [Scheduler].
type SchedulerOptions struct {
	// PageTimeout bounds each page download. Zero disables the per-page deadline.
	PageTimeout time.Duration
	// Parallelism overrides the pool ceiling when positive.
	Parallelism int
	// MaxPageBytes caps a page body. Zero means 32 MiB.
	MaxPageBytes int64
}

// Scheduler downloads the missing pages of a chapter in one bounded pool.
type Scheduler struct {
	httpClient  *http.Client
	pageTimeout time.Duration
	parallelism int
	maxBytes    int64
	logger      *slog.Logger
}

// NewScheduler constructs a [Scheduler] on the shared outbound client.
func NewScheduler(httpClient *http.Client, options SchedulerOptions, logger *slog.Logger) *Scheduler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if options.MaxPageBytes <= 0 {
		options.MaxPageBytes = maxPageBytes
	}

	return &Scheduler{
		httpClient:  httpClient,
		pageTimeout: options.PageTimeout,
		parallelism: options.Parallelism,
		maxBytes:    options.MaxPageBytes,
		logger:      logger,
	}
}

/*
FetchMissing downloads every page of server whose index is not in stored.

Each task writes only its own slot, so no locking is needed. A failed task is
logged at WARN and reported in the failure list; it never cancels its siblings.
There is no retry.

Parameters:
  - ctx: context.Context (propagated to every task)
  - server: *mangadex.AtHomeServer (resolved page locations)
  - stored: PageSet (indices to skip)

Returns:
  - []Page: Downloaded pages, in work order
  - []PageFailure: Pages that could not be downloaded
*/
func (scheduler *Scheduler) FetchMissing(ctx context.Context, server *mangadex.AtHomeServer, stored PageSet) ([]Page, []PageFailure) {
	work := WorkSet(server.Digests, stored)
	if len(work) == 0 {
		return nil, nil
	}

	logger := ctxutil.LoggerOr(ctx, scheduler.logger)
	pool := PoolSize(len(work), scheduler.parallelism)

	logger.Debug("page_pool_started",
		slog.String("chapter_id", server.ChapterID),
		slog.Int("work", len(work)),
		slog.Int("pool", pool),
	)

	type slot struct {
		data []byte
		err  error
	}
	slots := make([]slot, len(work))

	var group errgroup.Group
	group.SetLimit(pool)

	for i, item := range work {
		group.Go(func() error {
			data, err := scheduler.fetchPage(ctx, server.PageURL(item.Digest))
			slots[i] = slot{data: data, err: err}
			return nil
		})
	}

	// Tasks never return errors; Wait is the single join barrier.
	_ = group.Wait()

	var pages []Page
	var failures []PageFailure

	for i, item := range work {
		if err := slots[i].err; err != nil {
			logger.Warn("page_fetch_failed",
				slog.String("chapter_id", server.ChapterID),
				slog.Int("page", item.Index),
				slog.String("digest", item.Digest),
				slog.Any("error", err),
			)
			failures = append(failures, PageFailure{Index: item.Index, Digest: item.Digest, Err: err})
			continue
		}
		pages = append(pages, Page{Index: item.Index, Data: slots[i].data})
	}

	return pages, failures
}

func (scheduler *Scheduler) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if scheduler.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scheduler.pageTimeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	response, err := scheduler.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", response.Status)
	}

	// One extra byte tells a body at the cap apart from a longer one.
	data, err := io.ReadAll(io.LimitReader(response.Body, scheduler.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > scheduler.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPageTooLarge, scheduler.maxBytes)
	}
	if len(data) == 0 {
		return nil, errEmptyPage
	}

	return data, nil
}
