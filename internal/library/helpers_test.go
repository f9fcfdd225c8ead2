// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/library"
	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// # Upstream Fake

type fakeUpstream struct {
	mu          sync.Mutex
	searches    int
	results     []mangadex.MangaSummary
	searchErr   error
	manga       map[string]*mangadex.Manga
	covers      map[string][]byte
	coverErr    error
	chapters    []mangadex.Chapter
	lastLang    string
	chaptersErr error
}

func (fake *fakeUpstream) Search(context.Context, mangadex.SearchQuery) ([]mangadex.MangaSummary, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.searches++
	return fake.results, fake.searchErr
}

func (fake *fakeUpstream) GetManga(_ context.Context, mangaID string) (*mangadex.Manga, error) {
	manga, ok := fake.manga[mangaID]
	if !ok {
		return nil, mangadex.ErrNotFound
	}
	return manga, nil
}

func (fake *fakeUpstream) FetchCover(_ context.Context, _ string, fileName string) ([]byte, error) {
	if fake.coverErr != nil {
		return nil, fake.coverErr
	}
	data, ok := fake.covers[fileName]
	if !ok {
		return nil, errors.New("no such cover")
	}
	return data, nil
}

func (fake *fakeUpstream) ListChapters(_ context.Context, _ string, language string) ([]mangadex.Chapter, error) {
	fake.lastLang = language
	return fake.chapters, fake.chaptersErr
}

// # Repository Fake

type memRepository struct {
	mu    sync.Mutex
	items map[string]library.MangaInfo
}

func newMemRepository() *memRepository {
	return &memRepository{items: map[string]library.MangaInfo{}}
}

func (repo *memRepository) Upsert(_ context.Context, info *library.MangaInfo) (time.Time, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored := *info
	if previous, ok := repo.items[info.ID]; ok {
		if stored.Cover == nil {
			stored.Cover = previous.Cover
		}
		if stored.SmallCover == nil {
			stored.SmallCover = previous.SmallCover
		}
	}
	stored.UpdatedAt = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	repo.items[info.ID] = stored
	return stored.UpdatedAt, nil
}

func (repo *memRepository) FindByID(_ context.Context, id string) (*library.MangaInfo, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	info, ok := repo.items[id]
	if !ok {
		return nil, apperr.NotFound("Manga")
	}
	info.HasCover = info.Cover != nil
	info.Cover, info.SmallCover = nil, nil
	return &info, nil
}

func (repo *memRepository) CoverData(_ context.Context, id string, small bool) ([]byte, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	info, ok := repo.items[id]
	if !ok {
		return nil, apperr.NotFound("Manga")
	}
	data := info.Cover
	if small {
		data = info.SmallCover
	}
	if len(data) == 0 {
		return nil, apperr.NotFound("Cover")
	}
	return data, nil
}

// # Cache Fake

type memCache struct {
	entries map[string][]mangadex.MangaSummary
	broken  bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]mangadex.MangaSummary{}}
}

func (cache *memCache) Get(_ context.Context, query mangadex.SearchQuery) ([]mangadex.MangaSummary, bool, error) {
	if cache.broken {
		return nil, false, errors.New("cache down")
	}
	results, ok := cache.entries[library.SearchKey(query)]
	return results, ok, nil
}

func (cache *memCache) Set(_ context.Context, query mangadex.SearchQuery, results []mangadex.MangaSummary) error {
	if cache.broken {
		return errors.New("cache down")
	}
	cache.entries[library.SearchKey(query)] = results
	return nil
}
