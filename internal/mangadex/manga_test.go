// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
)

const mangaBody = `{
  "result": "ok",
  "data": {
    "id": "m1",
    "attributes": {
      "title": {"ja-ro": "Yotsuba to!"},
      "description": {"en": "Everyday adventures."},
      "contentRating": "safe",
      "tags": [
        {"id": "t1", "attributes": {"name": {"en": "Comedy"}, "group": "genre"}},
        {"id": "t2", "attributes": {"name": {"en": "Slice of Life"}, "group": "genre"}},
        {"id": "t3", "attributes": {"name": {"en": "Long Strip"}, "group": "format"}},
        {"id": "t4", "attributes": {"name": {"en": "Kids"}, "group": "theme"}}
      ]
    },
    "relationships": [
      {"id": "a1", "type": "author"},
      {"id": "c1", "type": "cover_art", "attributes": {"fileName": "cover.jpg"}}
    ]
  }
}`

/*
TestGetManga verifies title fallback, tag grouping and cover resolution.
*/
func TestGetManga(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/manga/m1", request.URL.Path)
		assert.Equal(t, []string{"cover_art"}, request.URL.Query()["includes[]"])
		_, _ = writer.Write([]byte(mangaBody))
	}))

	manga, err := client.GetManga(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, "Yotsuba to!", manga.Title)
	assert.Equal(t, "Everyday adventures.", manga.Description)
	assert.Equal(t, "safe", manga.ContentRating)
	assert.Equal(t, []string{"Long Strip"}, manga.Formats)
	assert.Equal(t, []string{"Comedy", "Slice of Life"}, manga.Genres)
	assert.Equal(t, "cover.jpg", manga.CoverFileName)
}

/*
TestGetManga_NotFound maps a 404 to ErrNotFound.
*/
func TestGetManga_NotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.GetManga(context.Background(), "missing")
	assert.ErrorIs(t, err, mangadex.ErrNotFound)
}

/*
TestSearch checks the query shaping and result mapping.
*/
func TestSearch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "/manga", request.URL.Path)
		assert.Equal(t, "yotsuba", query.Get("title"))
		assert.Equal(t, []string{"safe", "suggestive", "erotica"}, query["contentRating[]"])
		assert.Equal(t, []string{"inc"}, query["includedTags[]"])
		assert.Equal(t, []string{"exc"}, query["excludedTags[]"])

		_, _ = writer.Write([]byte(`{"data":[
			{"id":"m1","attributes":{"title":{"en":"Yotsuba&!"},"contentRating":"safe"},"relationships":[{"type":"cover_art","attributes":{"fileName":"a.jpg"}}]},
			{"id":"m2","attributes":{"title":{}}}
		],"total":2}`))
	}))

	results, err := client.Search(context.Background(), mangadex.SearchQuery{
		Title:        "yotsuba",
		IncludedTags: []string{"inc"},
		ExcludedTags: []string{"exc"},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, mangadex.MangaSummary{ID: "m1", Title: "Yotsuba&!", ContentRating: "safe", CoverFileName: "a.jpg"}, results[0])
}

/*
TestFetchCover reads cover bytes from the uploads host.
*/
func TestFetchCover(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/uploads/covers/m1/cover.jpg", request.URL.Path)
		_, _ = writer.Write([]byte("jpeg-bytes"))
	}))

	data, err := client.FetchCover(context.Background(), "m1", "cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

/*
TestFetchCover_TooLarge fails instead of returning a truncated cover.
*/
func TestFetchCover_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(strings.Repeat("x", 33)))
	}))
	t.Cleanup(server.Close)

	client := mangadex.NewClient(server.Client(), mangadex.Options{
		APIURL:        server.URL,
		UploadsURL:    server.URL + "/uploads",
		Timeout:       5 * time.Second,
		MaxCoverBytes: 32,
	})

	data, err := client.FetchCover(context.Background(), "m1", "cover.jpg")
	assert.ErrorIs(t, err, mangadex.ErrCoverTooLarge)
	assert.Nil(t, data)
}

/*
TestListChapters walks two pages and terminates on the reported total.
*/
func TestListChapters(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests++
		offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))
		assert.Equal(t, "100", request.URL.Query().Get("limit"))

		// 100 chapters on the first page, 3 on the second (one external, one empty).
		var entries []string
		if offset == 0 {
			for i := 100; i >= 1; i-- {
				entries = append(entries, fmt.Sprintf(`{"id":"c%d","attributes":{"chapter":"%d","pages":10,"translatedLanguage":"en"}}`, i, i))
			}
		} else {
			entries = append(entries,
				`{"id":"c101","attributes":{"chapter":"101","pages":12,"translatedLanguage":"en"}}`,
				`{"id":"ext","attributes":{"chapter":"102","pages":0,"externalUrl":"https://elsewhere"}}`,
				`{"id":"empty","attributes":{"chapter":"103","pages":0}}`,
			)
		}

		body := `{"data":[`
		for i, entry := range entries {
			if i > 0 {
				body += ","
			}
			body += entry
		}
		body += fmt.Sprintf(`],"limit":100,"offset":%d,"total":103}`, offset)
		_, _ = writer.Write([]byte(body))
	}))

	chapters, err := client.ListChapters(context.Background(), "m1", "en")
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	require.Len(t, chapters, 101)
	assert.Equal(t, "c1", chapters[0].ID)
	assert.Equal(t, "c101", chapters[100].ID)
	assert.Equal(t, 12, chapters[100].Pages)
}

/*
TestListChapters_EmptyFirstPage stops immediately when nothing is returned.
*/
func TestListChapters_EmptyFirstPage(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = writer.Write([]byte(`{"data":[],"limit":100,"offset":0,"total":0}`))
	}))

	chapters, err := client.ListChapters(context.Background(), "m1", "")
	require.NoError(t, err)
	assert.Empty(t, chapters)
	assert.Equal(t, 1, requests)
}
