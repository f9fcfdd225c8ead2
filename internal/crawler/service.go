// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
	"github.com/taibuivan/yomira-crawler/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-crawler/internal/platform/dberr"
	"github.com/taibuivan/yomira-crawler/internal/platform/validate"
)

const (
	FieldChapterID = "chapter_id"
	FieldMangaID   = "manga_id"
	FieldPage      = "page"

	// maxIdentifierLength matches the varchar(36) key columns.
	maxIdentifierLength = 36
)

// Resolver resolves the page locations of a chapter.
type Resolver interface {
	ResolveChapter(ctx context.Context, chapterID string) (*mangadex.AtHomeServer, error)
}

// PageFetcher downloads the pages of a resolved chapter that are not stored yet.
type PageFetcher interface {
	FetchMissing(ctx context.Context, server *mangadex.AtHomeServer, stored PageSet) ([]Page, []PageFailure)
}

// # Service Layer

// Service orchestrates chapter fetches and read access to stored pages.
type Service struct {
	resolver Resolver
	fetcher  PageFetcher
	store    PageStore
	policy   LimitPolicy
	lock     ChapterLock
	logger   *slog.Logger
}

// NewService constructs a [Service]. policy and lock may be nil.
func NewService(resolver Resolver, fetcher PageFetcher, store PageStore, policy LimitPolicy, lock ChapterLock, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		store:    store,
		policy:   policy,
		lock:     lock,
		logger:   logger,
	}
}

// # Chapter Fetch

/*
FetchChapter downloads the pages of a chapter that are missing from known and stores them.

Sequence: cooldown check, chapter lock, resolve, record size, rate gate, fetch, assemble, persist.
Failed pages are reported in the result and left for a later call.

Parameters:
  - ctx: context.Context
  - chapterID: string
  - known: PageSet (indices the caller knows are stored; ignored when opts.Force)
  - opts: FetchOptions

Returns:
  - *FetchResult: Ordered pages and per-page failures
  - error: METADATA_UNAVAILABLE, RATE_LIMITED, PERSISTENCE_FAILED, CONFLICT or VALIDATION_ERROR
*/
func (service *Service) FetchChapter(ctx context.Context, chapterID string, known PageSet, opts FetchOptions) (*FetchResult, error) {
	chapterID = strings.TrimSpace(chapterID)
	if err := validateFetch(chapterID, opts); err != nil {
		return nil, err
	}

	logger := ctxutil.LoggerOr(ctx, service.logger).With(slog.String(FieldChapterID, chapterID))

	// 1. Refuse early while a shared cooldown is active
	if err := service.checkCooldown(ctx, logger); err != nil {
		return nil, err
	}

	// 2. One fetch per chapter at a time
	if service.lock != nil {
		release, ok, err := service.lock.TryAcquire(ctx, chapterID)
		switch {
		case err != nil:
			logger.Warn("chapter_lock_unavailable", slog.Any("error", err))
		case !ok:
			return nil, apperr.Conflict("A fetch of this chapter is already running")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("chapter_lock_release_failed", slog.Any("error", err))
				}
			}()
		}
	}

	// 3. Resolve page locations
	server, err := service.resolver.ResolveChapter(ctx, chapterID)
	if err != nil {
		return nil, service.resolveError(ctx, logger, err)
	}

	// 4. Record the declared size before any page is requested
	declared := len(server.Digests)
	if err := service.store.RecordChapterSize(ctx, chapterID, declared); err != nil {
		return nil, apperr.PersistenceFailed(fmt.Errorf("%w: record chapter size: %w", ErrPersistenceFailed, err))
	}

	// 5. One-shot rate gate
	if Admit(ctx, server.Signal, service.policy) == DecisionAbort {
		logger.Info("chapter_fetch_rate_limited",
			slog.Int("remaining", server.Signal.Remaining),
			slog.Duration("retry_after", server.Signal.RetryAfter),
		)
		return nil, rateLimited(server.Signal.RetryAfter)
	}

	// 6. Fetch the missing pages
	stored := known
	if opts.Force {
		stored = nil
	}

	scheduled := len(WorkSet(server.Digests, stored))
	pages, failures := service.fetcher.FetchMissing(ctx, server, stored)

	// 7. Restore page order and persist
	ordered := Assemble(pages)
	if err := service.store.PersistPages(ctx, chapterID, opts.MangaID, ordered); err != nil {
		return nil, apperr.PersistenceFailed(fmt.Errorf("%w: %w", ErrPersistenceFailed, err))
	}

	logger.Info("chapter_fetched",
		slog.Int("declared", declared),
		slog.Int("scheduled", scheduled),
		slog.Int("stored", len(ordered)),
		slog.Int("failed", len(failures)),
	)

	return &FetchResult{
		ChapterID:     chapterID,
		DeclaredPages: declared,
		Scheduled:     scheduled,
		Pages:         ordered,
		Failed:        failures,
	}, nil
}

/*
SyncChapter fetches whatever the store does not hold yet.

The stored set is read from the [PageStore], so repeated calls converge and a
complete chapter schedules no downloads.
*/
func (service *Service) SyncChapter(ctx context.Context, chapterID string, opts FetchOptions) (*FetchResult, error) {
	chapterID = strings.TrimSpace(chapterID)
	if err := validateFetch(chapterID, opts); err != nil {
		return nil, err
	}

	var known PageSet
	if !opts.Force {
		stored, err := service.store.StoredIndices(ctx, chapterID)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter", "read stored pages")
		}
		known = stored
	}

	return service.FetchChapter(ctx, chapterID, known, opts)
}

// # Read Access

// Chapter returns the record of a chapter together with its stored indices.
func (service *Service) Chapter(ctx context.Context, chapterID string) (*ChapterStatus, error) {
	chapterID = strings.TrimSpace(chapterID)
	record, err := service.store.FindChapter(ctx, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "find chapter")
	}

	stored, err := service.store.StoredIndices(ctx, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "read stored pages")
	}

	return &ChapterStatus{
		ChapterRecord: *record,
		Complete:      record.Complete(),
		StoredIndices: stored.Sorted(),
	}, nil
}

// ListChapters returns chapter records for the given window and the total count.
func (service *Service) ListChapters(ctx context.Context, limit, offset int) ([]*ChapterRecord, int, error) {
	records, total, err := service.store.ListChapters(ctx, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Chapter", "list chapters")
	}
	return records, total, nil
}

// Page returns the stored bytes of one page.
func (service *Service) Page(ctx context.Context, chapterID string, index int) ([]byte, error) {
	chapterID = strings.TrimSpace(chapterID)
	validator := &validate.Validator{}
	validator.Required(FieldChapterID, chapterID)
	validator.Custom(FieldPage, index < 1, "Page index starts at 1")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	data, err := service.store.PageData(ctx, chapterID, index)
	if err != nil {
		return nil, dberr.Wrap(err, "Page", "read page")
	}
	return data, nil
}

// # Internal Helpers

func validateFetch(chapterID string, opts FetchOptions) error {
	validator := &validate.Validator{}
	validator.Required(FieldChapterID, chapterID)
	validator.MaxLen(FieldChapterID, chapterID, maxIdentifierLength)
	validator.MaxLen(FieldMangaID, opts.MangaID, maxIdentifierLength)
	return validator.Err()
}

// checkCooldown rejects the fetch while the policy remembers an exhausted budget.
func (service *Service) checkCooldown(ctx context.Context, logger *slog.Logger) error {
	checker, ok := service.policy.(CooldownChecker)
	if !ok {
		return nil
	}

	remaining, err := checker.Cooldown(ctx)
	if err != nil {
		// A broken cooldown store must not stop fetching; the gate still runs.
		logger.Warn("cooldown_check_failed", slog.Any("error", err))
		return nil
	}

	if remaining > 0 {
		logger.Info("chapter_fetch_cooling_down", slog.Duration("retry_after", remaining))
		return rateLimited(remaining)
	}
	return nil
}

// resolveError classifies a resolver failure.
func (service *Service) resolveError(ctx context.Context, logger *slog.Logger, err error) error {
	var limited *mangadex.RateLimitError
	if errors.As(err, &limited) {
		// Let the policy observe the exhausted budget (e.g. start a cooldown).
		_ = Admit(ctx, limited.Signal, service.policy)
		logger.Info("chapter_resolve_rate_limited", slog.Duration("retry_after", limited.Signal.RetryAfter))
		return rateLimited(limited.Signal.RetryAfter)
	}

	logger.Warn("chapter_resolve_failed", slog.Any("error", err))
	return apperr.MetadataUnavailable(fmt.Errorf("%w: %w", ErrMetadataUnavailable, err))
}

// rateLimited builds the RATE_LIMITED error with a whole-second Retry-After.
func rateLimited(retryAfter time.Duration) error {
	seconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
	return apperr.RateLimited(seconds).WithCause(ErrRateLimited)
}
