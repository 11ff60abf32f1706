// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package chapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/internal/platform/dberr"
)

// contentRepository implements [ContentRepository] using pgx.
type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository constructs a PostgreSQL backed content store.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

func (repository *contentRepository) FindContent(context context.Context, chapterID string) (*Content, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 AND %s <> $2`,
		schema.CoreChapter.Content,
		schema.CoreChapter.Words,
		schema.CoreChapter.EditedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID,
		schema.CoreChapter.Status,
	)

	var content Content
	err := repository.pool.QueryRow(context, query, chapterID, resource.StatusDeleted).
		Scan(&content.Content, &content.Words, &content.EditedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Chapter")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find chapter content")
	}

	return &content, nil
}

func (repository *contentRepository) SaveContent(context context.Context, chapterID string, content Content) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $4 WHERE %s = $1 AND %s <> $5`,
		schema.CoreChapter.Table,
		schema.CoreChapter.Content,
		schema.CoreChapter.Words,
		schema.CoreChapter.EditedAt,
		schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID,
		schema.CoreChapter.Status,
	)

	tag, err := repository.pool.Exec(context, query, chapterID, content.Content, content.Words, content.EditedAt, resource.StatusDeleted)
	if err != nil {
		return dberr.Wrap(err, "save chapter content")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}
