// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/crawler"
	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # In-memory Page Store

type memStore struct {
	mu         sync.Mutex
	sizes      map[string]int
	pages      map[string]map[int][]byte
	owners     map[string]string
	persistErr error
	persisted  [][]crawler.Page
}

func newMemStore() *memStore {
	return &memStore{
		sizes:  make(map[string]int),
		pages:  make(map[string]map[int][]byte),
		owners: make(map[string]string),
	}
}

func (store *memStore) seed(chapterID string, index int, data string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.pages[chapterID] == nil {
		store.pages[chapterID] = make(map[int][]byte)
	}
	store.pages[chapterID][index] = []byte(data)
}

func (store *memStore) StoredIndices(_ context.Context, chapterID string) (crawler.PageSet, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	set := crawler.NewPageSet()
	for index := range store.pages[chapterID] {
		set[index] = struct{}{}
	}
	return set, nil
}

func (store *memStore) RecordChapterSize(_ context.Context, chapterID string, count int) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sizes[chapterID] = max(store.sizes[chapterID], count)
	return nil
}

func (store *memStore) PersistPages(_ context.Context, chapterID, mangaID string, pages []crawler.Page) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.persistErr != nil {
		return store.persistErr
	}
	if store.pages[chapterID] == nil {
		store.pages[chapterID] = make(map[int][]byte)
	}
	for _, page := range pages {
		store.pages[chapterID][page.Index] = page.Data
	}
	if mangaID != "" {
		store.owners[chapterID] = mangaID
	}
	store.persisted = append(store.persisted, slices.Clone(pages))
	return nil
}

func (store *memStore) FindChapter(_ context.Context, chapterID string) (*crawler.ChapterRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	size, ok := store.sizes[chapterID]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	return &crawler.ChapterRecord{ChapterID: chapterID, Pages: size, Stored: len(store.pages[chapterID])}, nil
}

func (store *memStore) ListChapters(_ context.Context, limit, offset int) ([]*crawler.ChapterRecord, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var ids []string
	for id := range store.sizes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var records []*crawler.ChapterRecord
	for i, id := range ids {
		if i < offset || len(records) >= limit {
			continue
		}
		records = append(records, &crawler.ChapterRecord{ChapterID: id, Pages: store.sizes[id], Stored: len(store.pages[id])})
	}
	return records, len(ids), nil
}

func (store *memStore) PageData(_ context.Context, chapterID string, index int) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	data, ok := store.pages[chapterID][index]
	if !ok {
		return nil, apperr.NotFound("Page")
	}
	return data, nil
}

func (store *memStore) indices(chapterID string) []int {
	set, _ := store.StoredIndices(context.Background(), chapterID)
	return set.Sorted()
}

// # Fake Upstream

// upstream serves /at-home/server/{id} and /data/{hash}/{digest} for one chapter.
type upstream struct {
	server     *httptest.Server
	digests    []string
	headers    map[string]string
	metaStatus int
	metaBody   string
	failing    map[string]bool
	jitter     bool

	metaRequests atomic.Int32
	pageRequests atomic.Int32
	mu           sync.Mutex
	requested    []string
}

func newUpstream(t *testing.T, digests ...string) *upstream {
	t.Helper()

	fake := &upstream{digests: digests, failing: map[string]bool{}, metaStatus: http.StatusOK}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.server.Close)
	return fake
}

func (fake *upstream) serve(writer http.ResponseWriter, request *http.Request) {
	switch {
	case strings.HasPrefix(request.URL.Path, "/at-home/server/"):
		fake.metaRequests.Add(1)
		for key, value := range fake.headers {
			writer.Header().Set(key, value)
		}
		writer.WriteHeader(fake.metaStatus)
		if fake.metaBody != "" {
			_, _ = io.WriteString(writer, fake.metaBody)
			return
		}
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"result":  "ok",
			"baseUrl": fake.server.URL,
			"chapter": map[string]any{"hash": "h", "data": fake.digests},
		})

	case strings.HasPrefix(request.URL.Path, "/data/h/"):
		fake.pageRequests.Add(1)
		digest := strings.TrimPrefix(request.URL.Path, "/data/h/")
		fake.mu.Lock()
		fake.requested = append(fake.requested, digest)
		fake.mu.Unlock()

		if fake.jitter {
			time.Sleep(time.Duration(rand.IntN(15)) * time.Millisecond)
		}
		if fake.failing[digest] {
			http.Error(writer, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(writer, "bytes-"+digest)

	default:
		http.NotFound(writer, request)
	}
}

func (fake *upstream) requestedDigests() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	sorted := slices.Clone(fake.requested)
	slices.Sort(sorted)
	return sorted
}

func (fake *upstream) client() *mangadex.Client {
	return mangadex.NewClient(fake.server.Client(), mangadex.Options{APIURL: fake.server.URL, Timeout: 5 * time.Second})
}

// # Fakes for Lock and Cooldown

type fakeLock struct {
	held     bool
	key      string
	released atomic.Bool
}

func (lock *fakeLock) TryAcquire(_ context.Context, chapterID string) (func(context.Context) error, bool, error) {
	lock.key = chapterID
	if lock.held {
		return nil, false, nil
	}
	return func(context.Context) error { lock.released.Store(true); return nil }, true, nil
}

type brokenLock struct{}

func (brokenLock) TryAcquire(context.Context, string) (func(context.Context) error, bool, error) {
	return nil, false, errors.New("redis down")
}

type coolingPolicy struct {
	remaining time.Duration
	reached   atomic.Int32
}

func (policy *coolingPolicy) OnLimitReached(context.Context, time.Duration) crawler.Decision {
	policy.reached.Add(1)
	return crawler.DecisionAbort
}

func (policy *coolingPolicy) Cooldown(context.Context) (time.Duration, error) {
	return policy.remaining, nil
}
