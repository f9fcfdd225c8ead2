// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Manga holds the attributes the library stores for a title.
type Manga struct {
	ID            string
	Title         string
	Description   string
	ContentRating string
	// Formats and Genres are English tag names grouped by the tag "group" attribute.
	Formats       []string
	Genres        []string
	CoverFileName string
}

// maxCoverBytes is the default cap on a cover download.
const maxCoverBytes = 20 << 20

// GetManga reads /manga/{id} including its cover_art relationship.
func (client *Client) GetManga(ctx context.Context, mangaID string) (*Manga, error) {
	mangaID = strings.TrimSpace(mangaID)
	if mangaID == "" {
		return nil, errors.New("mangadex: manga id is required")
	}

	values := url.Values{}
	values.Add("includes[]", "cover_art")

	var payload mangaResponse
	if err := client.getJSON(ctx, "/manga/"+url.PathEscape(mangaID), values, &payload); err != nil {
		return nil, err
	}

	if payload.Data == nil {
		return nil, fmt.Errorf("%w: manga %s has no data", ErrUpstream, mangaID)
	}

	attributes := payload.Data.Attributes
	manga := &Manga{
		ID:            payload.Data.ID,
		Title:         pickTitle(attributes.Title),
		Description:   attributes.Description["en"],
		ContentRating: attributes.ContentRating,
		CoverFileName: pickCoverFileName(payload.Data.Relationships),
	}

	for _, entry := range attributes.Tags {
		name := entry.Attributes.Name["en"]
		if name == "" {
			continue
		}

		switch entry.Attributes.Group {
		case "format":
			manga.Formats = append(manga.Formats, name)
		case "genre":
			manga.Genres = append(manga.Genres, name)
		}
	}

	return manga, nil
}

// FetchCover downloads {uploads}/covers/{mangaID}/{fileName}.
func (client *Client) FetchCover(ctx context.Context, mangaID, fileName string) ([]byte, error) {
	if mangaID == "" || fileName == "" {
		return nil, errors.New("mangadex: cover requires manga id and file name")
	}

	ctx, cancel := client.withTimeout(ctx)
	defer cancel()

	endpoint := fmt.Sprintf("%s/covers/%s/%s", client.uploadsURL, url.PathEscape(mangaID), url.PathEscape(fileName))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mangadex: build cover request: %w", err)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("mangadex: fetch cover: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cover %s returned %s", ErrUpstream, fileName, response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, client.maxCover+1))
	if err != nil {
		return nil, fmt.Errorf("mangadex: read cover: %w", err)
	}
	if int64(len(body)) > client.maxCover {
		return nil, fmt.Errorf("%w: cover %s", ErrCoverTooLarge, fileName)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: cover %s is empty", ErrUpstream, fileName)
	}

	return body, nil
}
