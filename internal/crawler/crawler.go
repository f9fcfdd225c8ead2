// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package crawler implements the concurrent chapter-page downloader.

A chapter fetch runs as a strict sequence:

	resolve metadata -> record chapter size -> rate gate -> fetch missing pages -> assemble -> persist

Only pages whose index is absent from the stored set are downloaded. Downloads run in
one bounded pool; a failing page is logged and omitted without affecting its siblings.
The surviving pages are sorted by index and committed in a single transaction.

Errors that escape a fetch wrap one of [ErrMetadataUnavailable], [ErrRateLimited] or
[ErrPersistenceFailed] inside an [apperr.AppError].
*/
package crawler

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/taibuivan/yomira-crawler/pkg/slice"
)

// # Errors

var (
	// ErrMetadataUnavailable means the at-home response lacked the base URL, hash or pages.
	ErrMetadataUnavailable = errors.New("crawler: chapter metadata unavailable")

	// ErrRateLimited means the rate gate declined to proceed.
	ErrRateLimited = errors.New("crawler: upstream rate limit reached")

	// ErrPersistenceFailed means the page batch was rolled back.
	ErrPersistenceFailed = errors.New("crawler: page batch not persisted")
)

// # Domain Types

// PageSet is the set of 1-based page indices stored for a chapter.
type PageSet map[int]struct{}

// NewPageSet builds a [PageSet] from indices.
func NewPageSet(indices ...int) PageSet {
	set := make(PageSet, len(indices))
	for _, index := range indices {
		set[index] = struct{}{}
	}
	return set
}

// Has reports whether index is in the set. A nil set is empty.
func (set PageSet) Has(index int) bool {
	_, ok := set[index]
	return ok
}

// Sorted returns the indices in ascending order.
func (set PageSet) Sorted() []int {
	indices := slice.Keys(set)
	slices.Sort(indices)
	return indices
}

// Page is one downloaded page.
type Page struct {
	Index int
	Data  []byte
}

// MarshalJSON exposes the index and byte size; page bytes are served separately.
func (page Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int `json:"index"`
		Size  int `json:"size"`
	}{page.Index, len(page.Data)})
}

// PageFailure records a page that could not be downloaded in this call.
type PageFailure struct {
	Index  int
	Digest string
	Err    error
}

// MarshalJSON renders the error as text.
func (failure PageFailure) MarshalJSON() ([]byte, error) {
	message := ""
	if failure.Err != nil {
		message = failure.Err.Error()
	}
	return json.Marshal(struct {
		Index  int    `json:"index"`
		Digest string `json:"digest"`
		Error  string `json:"error"`
	}{failure.Index, failure.Digest, message})
}

// FetchResult is the outcome of one chapter fetch.
type FetchResult struct {
	ChapterID string `json:"chapter_id"`
	// DeclaredPages is the page count reported by the metadata endpoint.
	DeclaredPages int `json:"declared_pages"`
	// Scheduled is the number of page downloads started.
	Scheduled int `json:"scheduled"`
	// Pages are the downloaded pages, ascending by index.
	Pages  []Page        `json:"pages"`
	Failed []PageFailure `json:"failed,omitempty"`
}

// ChapterRecord is the stored size and progress of a chapter.
type ChapterRecord struct {
	ChapterID string    `json:"chapter_id"`
	Pages     int       `json:"pages"`
	Stored    int       `json:"stored"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether every declared page is stored.
func (record ChapterRecord) Complete() bool {
	return record.Pages > 0 && record.Stored >= record.Pages
}

// ChapterStatus is a [ChapterRecord] with its stored indices.
type ChapterStatus struct {
	ChapterRecord
	Complete      bool  `json:"complete"`
	StoredIndices []int `json:"stored_indices"`
}

// FetchOptions tunes a single chapter fetch.
type FetchOptions struct {
	// MangaID is stored on each page row. Optional.
	MangaID string `json:"manga_id,omitempty"`
	// Force re-downloads every page, ignoring the stored set.
	Force bool `json:"force,omitempty"`
}
