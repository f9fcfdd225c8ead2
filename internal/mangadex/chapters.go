// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

// Chapter is one readable chapter of a manga.
type Chapter struct {
	ID       string  `json:"id"`
	Volume   string  `json:"volume,omitempty"`
	Number   string  `json:"number,omitempty"`
	Title    string  `json:"title,omitempty"`
	Language string  `json:"language"`
	Pages    int     `json:"pages"`
	Numeric  float64 `json:"-"`
}

// maxChapterPages guards against an upstream that keeps reporting a larger total.
const maxChapterPages = 100

/*
ListChapters walks /chapter for a manga in one translated language.

The offset loop stops when offset reaches the reported total or a short page arrives.
Chapters hosted externally or without pages are skipped. The result is sorted by
numeric chapter number, then volume.
*/
func (client *Client) ListChapters(ctx context.Context, mangaID, language string) ([]Chapter, error) {
	mangaID = strings.TrimSpace(mangaID)
	if mangaID == "" {
		return nil, errors.New("mangadex: manga id is required")
	}
	if language == "" {
		language = "en"
	}

	var chapters []Chapter
	seen := make(map[string]struct{})
	limit := constants.ChapterListPageSize

	for offset, requests := 0, 0; requests < maxChapterPages; requests++ {
		values := url.Values{}
		values.Set("manga", mangaID)
		values.Set("limit", strconv.Itoa(limit))
		values.Set("offset", strconv.Itoa(offset))
		values.Add("translatedLanguage[]", language)
		values.Set("order[volume]", "asc")
		values.Set("order[chapter]", "asc")
		for _, rating := range contentRatings {
			values.Add("contentRating[]", rating)
		}

		var payload chapterListResponse
		if err := client.getJSON(ctx, "/chapter", values, &payload); err != nil {
			return nil, err
		}

		for _, entry := range payload.Data {
			if _, ok := seen[entry.ID]; ok {
				continue
			}
			if entry.Attributes.ExternalURL != "" || entry.Attributes.Pages == 0 {
				continue
			}
			seen[entry.ID] = struct{}{}

			numeric, _ := strconv.ParseFloat(entry.Attributes.Chapter, 64)
			chapters = append(chapters, Chapter{
				ID:       entry.ID,
				Volume:   entry.Attributes.Volume,
				Number:   entry.Attributes.Chapter,
				Title:    entry.Attributes.Title,
				Language: entry.Attributes.TranslatedLanguage,
				Pages:    entry.Attributes.Pages,
				Numeric:  numeric,
			})
		}

		offset += len(payload.Data)
		if len(payload.Data) < limit || offset >= payload.Total {
			break
		}
	}

	slices.SortStableFunc(chapters, func(a, b Chapter) int {
		if a.Numeric != b.Numeric {
			if a.Numeric < b.Numeric {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Volume, b.Volume)
	})

	return chapters, nil
}
