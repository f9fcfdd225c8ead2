// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
	"github.com/taibuivan/yomira-crawler/internal/platform/database/schema"
	"github.com/taibuivan/yomira-crawler/internal/platform/dberr"
)

// # PostgreSQL Repository

// mangaRepository implements [Repository] using pgx.
type mangaRepository struct {
	pool *pgxpool.Pool
}

// NewMangaRepository constructs a PostgreSQL backed title store.
func NewMangaRepository(pool *pgxpool.Pool) Repository {
	return &mangaRepository{pool: pool}
}

/*
Upsert writes a title keyed by its MangaDex ID.

Description: Every attribute is replaced on conflict except the covers, which
are only replaced when the new import brought one.

Returns:
  - time.Time: The stored updatedat
  - error: Database execution errors
*/
func (repository *mangaRepository) Upsert(context context.Context, info *MangaInfo) (time.Time, error) {
	table := schema.CrawlerMangaInfo
	query := fmt.Sprintf(`
		INSERT INTO %s AS m (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, m.%s),
			%s = COALESCE(EXCLUDED.%s, m.%s),
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s
	`,
		table.Table,
		table.ID, table.Slug, table.Name, table.Description, table.Cover, table.SmallCover,
		table.MangaFormat, table.MangaGenre, table.ContentRating,
		table.ID,
		table.Slug, table.Slug,
		table.Name, table.Name,
		table.Description, table.Description,
		table.Cover, table.Cover, table.Cover,
		table.SmallCover, table.SmallCover, table.SmallCover,
		table.MangaFormat, table.MangaFormat,
		table.MangaGenre, table.MangaGenre,
		table.ContentRating, table.ContentRating,
		table.UpdatedAt,
		table.UpdatedAt,
	)

	var updatedAt time.Time
	err := repository.pool.QueryRow(context, query,
		info.ID, info.Slug, info.Name, info.Description, info.Cover, info.SmallCover,
		info.Format, info.Genre, info.ContentRating,
	).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, dberr.Wrap(err, "Manga", "upsert manga info")
	}

	return updatedAt, nil
}

// FindByID implements [Repository].
func (repository *mangaRepository) FindByID(context context.Context, id string) (*MangaInfo, error) {
	table := schema.CrawlerMangaInfo
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s IS NOT NULL, %s
		FROM %s WHERE %s = $1
	`,
		table.ID, table.Slug, table.Name, table.Description,
		table.MangaFormat, table.MangaGenre, table.ContentRating,
		table.Cover, table.UpdatedAt,
		table.Table, table.ID,
	)

	var info MangaInfo
	err := repository.pool.QueryRow(context, query, id).Scan(
		&info.ID, &info.Slug, &info.Name, &info.Description,
		&info.Format, &info.Genre, &info.ContentRating,
		&info.HasCover, &info.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga", "find manga info")
	}

	return &info, nil
}

// CoverData implements [Repository]. A title imported without cover art is NOT_FOUND.
func (repository *mangaRepository) CoverData(context context.Context, id string, small bool) ([]byte, error) {
	table := schema.CrawlerMangaInfo
	column := table.Cover
	if small {
		column = table.SmallCover
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, column, table.Table, table.ID)

	var data []byte
	if err := repository.pool.QueryRow(context, query, id).Scan(&data); err != nil {
		return nil, dberr.Wrap(err, "Manga", "read cover")
	}
	if len(data) == 0 {
		return nil, apperr.NotFound("Cover")
	}

	return data, nil
}
