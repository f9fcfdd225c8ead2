// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
	"github.com/taibuivan/yomira-crawler/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-crawler/internal/platform/dberr"
	"github.com/taibuivan/yomira-crawler/internal/platform/validate"
	"github.com/taibuivan/yomira-crawler/pkg/pointer"
	"github.com/taibuivan/yomira-crawler/pkg/query"
	"github.com/taibuivan/yomira-crawler/pkg/slug"
)

const (
	FieldMangaID  = "manga_id"
	FieldTitle    = "title"
	FieldIncluded = "included"
	FieldExcluded = "excluded"
	FieldLanguage = "lang"

	maxIdentifierLength = 36
	maxTitleLength      = 256
	maxTagFilters       = 20
	maxLanguageLength   = 8
)

// Upstream is the subset of the MangaDex client the library needs.
type Upstream interface {
	Search(ctx context.Context, query mangadex.SearchQuery) ([]mangadex.MangaSummary, error)
	GetManga(ctx context.Context, mangaID string) (*mangadex.Manga, error)
	FetchCover(ctx context.Context, mangaID, fileName string) ([]byte, error)
	ListChapters(ctx context.Context, mangaID, language string) ([]mangadex.Chapter, error)
}

// # Service Layer

// Service searches, imports and serves manga metadata.
type Service struct {
	upstream Upstream
	repo     Repository
	cache    SearchCache
	logger   *slog.Logger
}

// NewService constructs a [Service]. cache may be nil.
func NewService(upstream Upstream, repo Repository, cache SearchCache, logger *slog.Logger) *Service {
	return &Service{
		upstream: upstream,
		repo:     repo,
		cache:    cache,
		logger:   logger,
	}
}

/*
Search looks titles up upstream, serving repeated queries from the cache.

Description: A cache that fails to read or write is logged and bypassed.

Parameters:
  - ctx: context.Context
  - search: mangadex.SearchQuery (title and/or included tags required)

Returns:
  - []mangadex.MangaSummary: Hits, never nil
  - error: VALIDATION_ERROR or UPSTREAM_ERROR
*/
func (service *Service) Search(ctx context.Context, search mangadex.SearchQuery) ([]mangadex.MangaSummary, error) {
	search.Title = strings.TrimSpace(search.Title)
	search.IncludedTags = query.StringSlice(search.IncludedTags...)
	search.ExcludedTags = query.StringSlice(search.ExcludedTags...)

	validator := &validate.Validator{}
	validator.Custom(FieldTitle, search.Title == "" && len(search.IncludedTags) == 0, "A title or an included tag is required")
	validator.MaxLen(FieldTitle, search.Title, maxTitleLength)
	validator.MaxItems(FieldIncluded, search.IncludedTags, maxTagFilters)
	validator.MaxItems(FieldExcluded, search.ExcludedTags, maxTagFilters)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	logger := ctxutil.LoggerOr(ctx, service.logger)

	if service.cache != nil {
		cached, ok, err := service.cache.Get(ctx, search)
		switch {
		case err != nil:
			logger.Warn("search_cache_read_failed", slog.Any("error", err))
		case ok:
			return cached, nil
		}
	}

	results, err := service.upstream.Search(ctx, search)
	if err != nil {
		return nil, upstreamError(err)
	}
	if results == nil {
		results = []mangadex.MangaSummary{}
	}

	if service.cache != nil {
		if err := service.cache.Set(ctx, search, results); err != nil {
			logger.Warn("search_cache_write_failed", slog.Any("error", err))
		}
	}

	return results, nil
}

/*
Import fetches a title, its cover and a thumbnail, and upserts them.

Description: Cover art is optional. A missing, unreachable or undecodable cover
is logged and the title is stored without it (or without the thumbnail).

Returns:
  - *MangaInfo: The stored title, including cover bytes
  - error: NOT_FOUND, UPSTREAM_ERROR, VALIDATION_ERROR or INTERNAL_ERROR
*/
func (service *Service) Import(ctx context.Context, mangaID string) (*MangaInfo, error) {
	if err := validateID(mangaID); err != nil {
		return nil, err
	}

	logger := ctxutil.LoggerOr(ctx, service.logger).With(slog.String(FieldMangaID, mangaID))

	// 1. Upstream attributes
	manga, err := service.upstream.GetManga(ctx, mangaID)
	if err != nil {
		return nil, upstreamError(err)
	}

	info := &MangaInfo{
		ID:            mangaID,
		Slug:          truncate(slug.FromOr(manga.Title, mangaID), maxNameLength),
		Name:          truncate(manga.Title, maxNameLength),
		Description:   pointer.NonZero(truncate(manga.Description, maxDescriptionLength)),
		Format:        pointer.NonZero(truncate(strings.Join(manga.Formats, tagSeparator), maxFormatLength)),
		Genre:         pointer.NonZero(truncate(strings.Join(manga.Genres, tagSeparator), maxGenreLength)),
		ContentRating: pointer.NonZero(manga.ContentRating),
	}

	// 2. Cover art and thumbnail
	if manga.CoverFileName != "" {
		cover, err := service.upstream.FetchCover(ctx, mangaID, manga.CoverFileName)
		if err != nil {
			logger.Warn("cover_fetch_failed", slog.String("file", manga.CoverFileName), slog.Any("error", err))
		} else {
			info.Cover = cover
			info.HasCover = true

			small, err := Thumbnail(cover, constants.ThumbnailWidth, constants.ThumbnailHeight)
			if err != nil {
				logger.Warn("thumbnail_failed", slog.Any("error", err))
			} else {
				info.SmallCover = small
			}
		}
	}

	// 3. Persist
	updatedAt, err := service.repo.Upsert(ctx, info)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga", "import manga")
	}
	info.UpdatedAt = updatedAt

	logger.Info("manga_imported",
		slog.String("slug", info.Slug),
		slog.Bool("has_cover", info.HasCover),
		slog.Int("cover_bytes", len(info.Cover)),
	)

	return info, nil
}

// Get returns a stored title.
func (service *Service) Get(ctx context.Context, mangaID string) (*MangaInfo, error) {
	if err := validateID(mangaID); err != nil {
		return nil, err
	}

	info, err := service.repo.FindByID(ctx, mangaID)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga", "get manga")
	}
	return info, nil
}

// Cover returns the stored cover, or its thumbnail when small is set.
func (service *Service) Cover(ctx context.Context, mangaID string, small bool) ([]byte, error) {
	if err := validateID(mangaID); err != nil {
		return nil, err
	}

	data, err := service.repo.CoverData(ctx, mangaID, small)
	if err != nil {
		return nil, dberr.Wrap(err, "Cover", "read cover")
	}
	return data, nil
}

// Chapters lists the readable chapters of a title upstream. An empty language means English.
func (service *Service) Chapters(ctx context.Context, mangaID, language string) ([]mangadex.Chapter, error) {
	validator := &validate.Validator{}
	validator.Required(FieldMangaID, mangaID)
	validator.MaxLen(FieldMangaID, mangaID, maxIdentifierLength)
	validator.MaxLen(FieldLanguage, language, maxLanguageLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapters, err := service.upstream.ListChapters(ctx, mangaID, language)
	if err != nil {
		return nil, upstreamError(err)
	}
	if chapters == nil {
		chapters = []mangadex.Chapter{}
	}
	return chapters, nil
}

// # Internal Helpers

func validateID(mangaID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldMangaID, mangaID)
	validator.MaxLen(FieldMangaID, mangaID, maxIdentifierLength)
	return validator.Err()
}

// upstreamError maps MangaDex client errors to API errors.
func upstreamError(err error) error {
	if errors.Is(err, mangadex.ErrNotFound) {
		return apperr.NotFound("Manga").WithCause(err)
	}
	return apperr.BadGateway("MangaDex request failed", err)
}
