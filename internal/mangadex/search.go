// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

// contentRatings is the rating filter applied to every search and chapter listing.
var contentRatings = []string{"safe", "suggestive", "erotica"}

// SearchQuery filters a title search.
type SearchQuery struct {
	Title        string   `json:"title"`
	IncludedTags []string `json:"included_tags,omitempty"`
	ExcludedTags []string `json:"excluded_tags,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// MangaSummary is one search hit.
type MangaSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ContentRating string `json:"content_rating,omitempty"`
	CoverFileName string `json:"cover_file_name,omitempty"`
}

// Search queries /manga by title and tag filters.
func (client *Client) Search(ctx context.Context, query SearchQuery) ([]MangaSummary, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = constants.SearchLimit
	}

	values := url.Values{}
	if title := strings.TrimSpace(query.Title); title != "" {
		values.Set("title", title)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Add("includes[]", "cover_art")
	for _, rating := range contentRatings {
		values.Add("contentRating[]", rating)
	}
	for _, tagID := range query.IncludedTags {
		values.Add("includedTags[]", tagID)
	}
	for _, tagID := range query.ExcludedTags {
		values.Add("excludedTags[]", tagID)
	}

	var payload mangaListResponse
	if err := client.getJSON(ctx, "/manga", values, &payload); err != nil {
		return nil, err
	}

	results := make([]MangaSummary, 0, len(payload.Data))
	for _, entry := range payload.Data {
		title := pickTitle(entry.Attributes.Title)
		if title == "" {
			continue
		}

		results = append(results, MangaSummary{
			ID:            entry.ID,
			Title:         title,
			ContentRating: entry.Attributes.ContentRating,
			CoverFileName: pickCoverFileName(entry.Relationships),
		})
	}

	return results, nil
}
