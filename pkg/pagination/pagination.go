// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination windows the chapter-record listing.
//
// A request names a 1-based page and a page size. The store reads the window
// through LIMIT/OFFSET and the response carries a [Meta] block so a client can
// walk every recorded chapter.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of chapter records per page.
	DefaultLimit = 20
	// MaxLimit caps a page. Larger requests are clamped down to it.
	MaxLimit = 100
	// DefaultPage is the first page.
	DefaultPage = 1
)

// Params is the requested window.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of records before the window.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the window that was served.
func (p Params) Meta(total int) Meta {
	return NewMeta(p.Page, p.Limit, total)
}

// Meta is the "meta" block of a paginated envelope.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewMeta builds the metadata for one window of total records.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// FromRequest reads "page" and "limit" from the query string.
//
// Missing, malformed or non-positive values fall back to the defaults. A limit
// above [MaxLimit] is clamped to it.
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page := positiveOr(query.Get("page"), DefaultPage)
	limit := min(positiveOr(query.Get("limit"), DefaultLimit), MaxLimit)

	return Params{Page: page, Limit: limit}
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
