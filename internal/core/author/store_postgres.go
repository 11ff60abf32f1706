// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package author

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed author store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) FindByUserID(context context.Context, userID string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s::text, %s::text, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CoreAuthor.ID,
		schema.CoreAuthor.UserID,
		schema.CoreAuthor.Slug,
		schema.CoreAuthor.Name,
		schema.CoreAuthor.Bio,
		schema.CoreAuthor.Website,
		schema.CoreAuthor.CreatedAt,
		schema.CoreAuthor.UpdatedAt,
		schema.CoreAuthor.Table,
		schema.CoreAuthor.UserID,
	)

	author := &Author{}
	err := repository.db.QueryRow(context, query, userID).Scan(
		&author.ID, &author.UserID, &author.Slug, &author.Name,
		&author.Bio, &author.Website, &author.CreatedAt, &author.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Author")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find author by user")
	}

	return author, nil
}

func (repository *PostgresRepository) SlugTaken(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreAuthor.Table, schema.CoreAuthor.Slug)

	var taken bool
	if err := repository.db.QueryRow(context, query, slug).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "check author slug")
	}
	return taken, nil
}

func (repository *PostgresRepository) Insert(context context.Context, author *Author) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.CoreAuthor.Table,
		schema.CoreAuthor.ID,
		schema.CoreAuthor.UserID,
		schema.CoreAuthor.Slug,
		schema.CoreAuthor.Name,
		schema.CoreAuthor.Bio,
		schema.CoreAuthor.Website,
		schema.CoreAuthor.CreatedAt,
		schema.CoreAuthor.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		author.ID, author.UserID, author.Slug, author.Name,
		author.Bio, author.Website, author.CreatedAt, author.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "insert author")
	}
	return nil
}
