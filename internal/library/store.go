// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
)

// Repository persists imported titles.
type Repository interface {
	// Upsert inserts or replaces a title and returns its update time.
	// A nil cover keeps the stored one.
	Upsert(context context.Context, info *MangaInfo) (time.Time, error)

	// FindByID returns a title without its cover bytes.
	FindByID(context context.Context, id string) (*MangaInfo, error)

	// CoverData returns the original or the small cover.
	CoverData(context context.Context, id string, small bool) ([]byte, error)
}

// SearchCache keeps recent search results.
type SearchCache interface {
	Get(context context.Context, query mangadex.SearchQuery) ([]mangadex.MangaSummary, bool, error)
	Set(context context.Context, query mangadex.SearchQuery, results []mangadex.MangaSummary) error
}
