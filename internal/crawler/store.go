// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import "context"

// # Page Store

// PageStore is the durable record of downloaded pages and declared chapter sizes.
type PageStore interface {

	/*
		StoredIndices returns the page indices already persisted for a chapter.

		Parameters:
		  - context: context.Context
		  - chapterID: string

		Returns:
		  - PageSet: Stored indices (empty for an unknown chapter)
		  - error: Storage failures
	*/
	StoredIndices(context context.Context, chapterID string) (PageSet, error)

	/*
		RecordChapterSize upserts the declared page count. A smaller count never
		replaces a larger one.

		Parameters:
		  - context: context.Context
		  - chapterID: string
		  - count: int (length of the resolved digest list)

		Returns:
		  - error: Storage failures
	*/
	RecordChapterSize(context context.Context, chapterID string, count int) error

	/*
		PersistPages writes a batch of pages in one transaction. Either every page
		becomes part of the stored set or none does.

		Parameters:
		  - context: context.Context
		  - chapterID: string
		  - mangaID: string (optional owner, stored per row)
		  - pages: []Page (ordered by index)

		Returns:
		  - error: Any failure; the batch is rolled back
	*/
	PersistPages(context context.Context, chapterID, mangaID string, pages []Page) error

	// FindChapter returns the record of one chapter, or NOT_FOUND.
	FindChapter(context context.Context, chapterID string) (*ChapterRecord, error)

	// ListChapters returns recorded chapters, most recently updated first, and the total.
	ListChapters(context context.Context, limit, offset int) ([]*ChapterRecord, int, error)

	// PageData returns the bytes of one stored page, or NOT_FOUND.
	PageData(context context.Context, chapterID string, index int) ([]byte, error)
}
