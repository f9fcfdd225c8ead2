// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library manages manga metadata: upstream search, importing title info and
cover art into PostgreSQL, and listing the chapters a title offers upstream.

Imported titles are what chapter pages are attributed to when a fetch carries a
manga ID, so the reader can group stored pages by title.
*/
package library

import (
	"time"
	"unicode/utf8"
)

// Column widths of crawler.mangainfo.
const (
	maxNameLength        = 256
	maxDescriptionLength = 2048
	maxFormatLength      = 32
	maxGenreLength       = 256

	// tagSeparator joins format and genre names into one column.
	tagSeparator = "|"
)

// MangaInfo is an imported title.
type MangaInfo struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Cover         []byte    `json:"-"`
	SmallCover    []byte    `json:"-"`
	Format        *string   `json:"format,omitempty"`
	Genre         *string   `json:"genre,omitempty"`
	ContentRating *string   `json:"content_rating,omitempty"`
	HasCover      bool      `json:"has_cover"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// truncate cuts s to at most limit characters, matching varchar(n) semantics.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
