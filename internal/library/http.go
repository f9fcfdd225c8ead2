// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-crawler/internal/platform/request"
	"github.com/taibuivan/yomira-crawler/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes manga search, import and covers over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new manga [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /api/v1/manga.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Import downloads cover art on top of the metadata call.
	router.With(chimw.Timeout(constants.FetchRequestTimeout)).Post("/{mangaID}/import", handler.Import)

	router.Group(func(read chi.Router) {
		read.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		read.Get("/", handler.Search)
		read.Get("/{mangaID}", handler.Get)
		read.Get("/{mangaID}/cover", handler.Cover)
		read.Get("/{mangaID}/chapters", handler.Chapters)
	})

	return router
}

/*
GET /api/v1/manga.

Request:
  - title: string
  - included: []string (tag IDs, repeated or comma separated)
  - excluded: []string

Response:
  - 200: []MangaSummary
  - 400: VALIDATION_ERROR: Neither title nor included tags
  - 502: UPSTREAM_ERROR
*/
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	search := mangadex.SearchQuery{
		Title:        request.URL.Query().Get(FieldTitle),
		IncludedTags: requestutil.QueryList(request, FieldIncluded),
		ExcludedTags: requestutil.QueryList(request, FieldExcluded),
	}

	results, err := handler.service.Search(request.Context(), search)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, results)
}

/*
POST /api/v1/manga/{mangaID}/import.

Response:
  - 200: MangaInfo
  - 404: NOT_FOUND: Unknown upstream
  - 502: UPSTREAM_ERROR
*/
func (handler *Handler) Import(writer http.ResponseWriter, request *http.Request) {
	info, err := handler.service.Import(request.Context(), requestutil.ID(request, "mangaID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}

// Get handles GET /api/v1/manga/{mangaID}.
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	info, err := handler.service.Get(request.Context(), requestutil.ID(request, "mangaID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}

// Cover handles GET /api/v1/manga/{mangaID}/cover?size=small.
func (handler *Handler) Cover(writer http.ResponseWriter, request *http.Request) {
	small := request.URL.Query().Get("size") == "small"

	data, err := handler.service.Cover(request.Context(), requestutil.ID(request, "mangaID"), small)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Blob(writer, "", data)
}

// Chapters handles GET /api/v1/manga/{mangaID}/chapters?lang=en.
func (handler *Handler) Chapters(writer http.ResponseWriter, request *http.Request) {
	language := request.URL.Query().Get(FieldLanguage)

	chapters, err := handler.service.Chapters(request.Context(), requestutil.ID(request, "mangaID"), language)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}
