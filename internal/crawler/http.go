// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-crawler/internal/platform/request"
	"github.com/taibuivan/yomira-crawler/internal/platform/respond"
	"github.com/taibuivan/yomira-crawler/pkg/pagination"
)

// # Handler Implementation

// Handler exposes chapter fetching and stored pages over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /api/v1/chapters.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// A fetch downloads a whole chapter; it gets its own, longer deadline.
	router.With(chimw.Timeout(constants.FetchRequestTimeout)).Post("/{chapterID}/fetch", handler.FetchChapter)

	router.Group(func(read chi.Router) {
		read.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		read.Get("/", handler.ListChapters)
		read.Get("/{chapterID}", handler.GetChapter)
		read.Get("/{chapterID}/pages/{page}", handler.GetPage)
	})

	return router
}

/*
POST /api/v1/chapters/{chapterID}/fetch.

Description: Downloads the pages of the chapter that are not stored yet.

Request:
  - chapterID: string (MangaDex chapter ID)
  - body: FetchOptions (optional; manga_id, force)

Response:
  - 200: FetchResult: Ordered pages and failures
  - 409: CONFLICT: Another fetch of this chapter is running
  - 429: RATE_LIMITED: Upstream budget exhausted (Retry-After set)
  - 502: METADATA_UNAVAILABLE: At-home metadata unusable
  - 500: PERSISTENCE_FAILED: Batch rolled back
*/
func (handler *Handler) FetchChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "chapterID")

	var options FetchOptions
	if err := requestutil.DecodeOptionalJSON(request, &options); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.SyncChapter(request.Context(), chapterID, options)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/chapters.

Description: Lists recorded chapters, most recently updated first.

Request:
  - page: int
  - limit: int

Response:
  - 200: []ChapterRecord: Paginated list
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	records, total, err := handler.service.ListChapters(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if records == nil {
		records = []*ChapterRecord{}
	}

	respond.Paginated(writer, records, params.Meta(total))
}

/*
GET /api/v1/chapters/{chapterID}.

Response:
  - 200: ChapterStatus: Declared size and stored indices
  - 404: NOT_FOUND: Chapter never resolved
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	status, err := handler.service.Chapter(request.Context(), requestutil.ID(request, "chapterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}

/*
GET /api/v1/chapters/{chapterID}/pages/{page}.

Response:
  - 200: image bytes (content type sniffed)
  - 404: NOT_FOUND: Page not stored
*/
func (handler *Handler) GetPage(writer http.ResponseWriter, request *http.Request) {
	index, err := requestutil.IntParam(request, "page")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	data, err := handler.service.Page(request.Context(), requestutil.ID(request, "chapterID"), index)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Blob(writer, "", data)
}
