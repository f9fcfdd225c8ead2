// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-crawler/internal/platform/database/schema"
	"github.com/taibuivan/yomira-crawler/internal/platform/dberr"
	"github.com/taibuivan/yomira-crawler/pkg/pointer"
)

// # PostgreSQL Repository

// pageRepository implements [PageStore] using pgx.
type pageRepository struct {
	pool *pgxpool.Pool
}

// NewPageRepository constructs a PostgreSQL backed page store.
func NewPageRepository(pool *pgxpool.Pool) PageStore {
	return &pageRepository{pool: pool}
}

/*
StoredIndices reads the page numbers of a chapter through the (chapterid, pagenumber) index.
*/
func (repository *pageRepository) StoredIndices(context context.Context, chapterID string) (PageSet, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CrawlerPage.PageNumber, schema.CrawlerPage.Table, schema.CrawlerPage.ChapterID)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list stored pages: %w", err)
	}

	indices, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan stored pages: %w", err)
	}

	return NewPageSet(indices...), nil
}

/*
RecordChapterSize upserts the declared size with GREATEST so it is never decremented.
*/
func (repository *pageRepository) RecordChapterSize(context context.Context, chapterID string, count int) error {
	table := schema.CrawlerChapterRecord
	query := fmt.Sprintf(`
		INSERT INTO %s AS r (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO UPDATE
		SET %s = GREATEST(r.%s, EXCLUDED.%s), %s = NOW()
	`,
		table.Table, table.ChapterID, table.Pages,
		table.ChapterID,
		table.Pages, table.Pages, table.Pages, table.UpdatedAt,
	)

	if _, err := repository.pool.Exec(context, query, chapterID, count); err != nil {
		return fmt.Errorf("postgres: failed to record chapter size: %w", err)
	}

	return nil
}

/*
PersistPages writes every page in a single transaction using a pipelined batch.

Description: Rows are upserted on (chapterid, pagenumber) so a forced re-fetch
replaces the stored bytes. Any failed statement rolls back the whole batch.
*/
func (repository *pageRepository) PersistPages(context context.Context, chapterID, mangaID string, pages []Page) error {
	if len(pages) == 0 {
		return nil
	}

	table := schema.CrawlerPage
	insert := fmt.Sprintf(`
		INSERT INTO %s AS p (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = COALESCE(EXCLUDED.%s, p.%s), %s = NOW()
	`,
		table.Table, table.ChapterID, table.PageNumber, table.Data, table.MangaID,
		table.ChapterID, table.PageNumber,
		table.Data, table.Data, table.MangaID, table.MangaID, table.MangaID, table.CreatedAt,
	)

	tx, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin page transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer func() { _ = tx.Rollback(context) }()

	owner := pointer.NonZero(mangaID)
	batch := &pgx.Batch{}
	for _, page := range pages {
		batch.Queue(insert, chapterID, page.Index, page.Data, owner)
	}

	results := tx.SendBatch(context, batch)
	for _, page := range pages {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres: failed to insert page %d: %w", page.Index, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("postgres: failed to close page batch: %w", err)
	}

	touch := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.CrawlerChapterRecord.Table, schema.CrawlerChapterRecord.UpdatedAt, schema.CrawlerChapterRecord.ChapterID)
	if _, err := tx.Exec(context, touch, chapterID); err != nil {
		return fmt.Errorf("postgres: failed to touch chapter record: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit pages: %w", err)
	}

	return nil
}

// recordSelect selects a chapter record with its stored page count.
func recordSelect() string {
	record := schema.CrawlerChapterRecord
	page := schema.CrawlerPage
	return fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s,
			(SELECT COUNT(*) FROM %s p WHERE p.%s = r.%s) AS stored
		FROM %s r
	`,
		record.ChapterID, record.Pages, record.UpdatedAt,
		page.Table, page.ChapterID, record.ChapterID,
		record.Table,
	)
}

/*
FindChapter returns the declared size and stored count of one chapter.
*/
func (repository *pageRepository) FindChapter(context context.Context, chapterID string) (*ChapterRecord, error) {
	query := recordSelect() + fmt.Sprintf(` WHERE r.%s = $1`, schema.CrawlerChapterRecord.ChapterID)

	var record ChapterRecord
	err := repository.pool.QueryRow(context, query, chapterID).Scan(
		&record.ChapterID, &record.Pages, &record.UpdatedAt, &record.Stored,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "find chapter record")
	}

	return &record, nil
}

/*
ListChapters pages through chapter records using a window count.
*/
func (repository *pageRepository) ListChapters(context context.Context, limit, offset int) ([]*ChapterRecord, int, error) {
	record := schema.CrawlerChapterRecord
	page := schema.CrawlerPage
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s,
			(SELECT COUNT(*) FROM %s p WHERE p.%s = r.%s) AS stored,
			COUNT(*) OVER() AS total_count
		FROM %s r
		ORDER BY r.%s DESC, r.%s ASC
		LIMIT $1 OFFSET $2
	`,
		record.ChapterID, record.Pages, record.UpdatedAt,
		page.Table, page.ChapterID, record.ChapterID,
		record.Table,
		record.UpdatedAt, record.ChapterID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapter records: %w", err)
	}
	defer rows.Close()

	var records []*ChapterRecord
	var total int
	for rows.Next() {
		var record ChapterRecord
		if err := rows.Scan(&record.ChapterID, &record.Pages, &record.UpdatedAt, &record.Stored, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate chapter records: %w", err)
	}

	return records, total, nil
}

/*
PageData returns the raw bytes of a stored page.
*/
func (repository *pageRepository) PageData(context context.Context, chapterID string, index int) ([]byte, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CrawlerPage.Data, schema.CrawlerPage.Table, schema.CrawlerPage.ChapterID, schema.CrawlerPage.PageNumber)

	var data []byte
	if err := repository.pool.QueryRow(context, query, chapterID, index).Scan(&data); err != nil {
		return nil, dberr.Wrap(err, "Page", "read page data")
	}

	return data, nil
}
