// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/internal/platform/dberr"
	"github.com/encre-app/encre/internal/platform/postgres"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is the pgx implementation of [Store].
type PostgresRepository struct {
	postgresQueries
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a store backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{postgresQueries: postgresQueries{db: pool}, pool: pool}
}

// InTx implements [Store].
func (repository *PostgresRepository) InTx(context context.Context, fn func(q Queries) error) error {
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		return fn(&postgresQueries{db: tx})
	})
	return dberr.Wrap(err, "run resource transaction")
}

// postgresQueries implements [Queries] on a pool or a transaction.
type postgresQueries struct {
	db dbtx
}

// # Column Mapping

var columns = schema.CoreSerie.ResourceColumns

// selectList returns the SELECT expressions matching scanResource. Columns a
// kind does not have are selected as empty strings.
func selectList(kind *Kind, alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	serieID, bookID, visibility := "''", "''", "''"
	switch kind {
	case Book:
		serieID = prefix + schema.CoreBook.SerieID + "::text"
	case Chapter:
		serieID = prefix + schema.CoreChapter.SerieID + "::text"
		bookID = prefix + schema.CoreChapter.BookID + "::text"
	case Serie:
		visibility = prefix + schema.CoreSerie.Visibility
	}

	return strings.Join([]string{
		prefix + columns.ID + "::text",
		prefix + columns.AuthorID + "::text",
		serieID,
		bookID,
		prefix + columns.Slug,
		prefix + columns.Title,
		prefix + columns.Description,
		prefix + columns.Status,
		visibility,
		prefix + columns.Order,
		prefix + columns.DeletedAt,
		"COALESCE(" + prefix + columns.DeletionReason + ", '')",
		prefix + columns.CreatedAt,
		prefix + columns.UpdatedAt,
	}, ", ")
}

func scanResource(row pgx.Row) (*Resource, error) {
	r := &Resource{}
	var status, visibility string
	err := row.Scan(
		&r.ID, &r.AuthorID, &r.SerieID, &r.BookID, &r.Slug, &r.Title, &r.Description,
		&status, &visibility, &r.Order, &r.DeletedAt, &r.DeletionReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	r.Visibility = Visibility(visibility)
	return r, nil
}

// findOne runs a single-row query and maps "no rows" to (nil, nil).
func (queries *postgresQueries) findOne(context context.Context, action, query string, args ...any) (*Resource, error) {
	r, err := scanResource(queries.db.QueryRow(context, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return r, nil
}

// # Reads

func (queries *postgresQueries) FindLive(context context.Context, kind *Kind, authorID, slug string, forUpdate bool) (*Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s <> $3`,
		selectList(kind, ""), kind.Table, columns.Slug, columns.AuthorID, columns.Status)
	if forUpdate {
		query += " FOR UPDATE"
	}
	return queries.findOne(context, "find live "+kind.Name, query, slug, authorID, StatusDeleted)
}

func (queries *postgresQueries) FindByID(context context.Context, kind *Kind, id string) (*Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectList(kind, ""), kind.Table, columns.ID)
	return queries.findOne(context, "find "+kind.Name+" by id", query, id)
}

func (queries *postgresQueries) FindBySlug(context context.Context, kind *Kind, slug string) (*Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectList(kind, ""), kind.Table, columns.Slug)
	return queries.findOne(context, "find "+kind.Name+" by slug", query, slug)
}

// LockScope takes a row lock on the sibling list owner. Series lock their
// author row, which has no status.
func (queries *postgresQueries) LockScope(context context.Context, kind *Kind, scopeID string) error {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1`, kind.ScopeTable, columns.ID)
	args := []any{scopeID}
	if kind.Parent != nil {
		query += fmt.Sprintf(` AND %s <> $2`, columns.Status)
		args = append(args, StatusDeleted)
	}
	query += " FOR UPDATE"

	var locked int
	err := queries.db.QueryRow(context, query, args...).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		if kind.Parent != nil {
			return errNotFound(kind.Parent)
		}
		return apperr.NotFound("Author")
	}
	if err != nil {
		return dberr.Wrap(err, "lock "+kind.Name+" scope")
	}
	return nil
}

func (queries *postgresQueries) CountLive(context context.Context, kind *Kind, scopeID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s <> $2`,
		kind.Table, kind.ScopeColumn, columns.Status)

	var count int
	if err := queries.db.QueryRow(context, query, scopeID, StatusDeleted).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count live "+kind.Plural)
	}
	return count, nil
}

func (queries *postgresQueries) CountPublished(context context.Context, kind *Kind, column, id string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s = $2`, kind.Table, column, columns.Status)

	var count int
	if err := queries.db.QueryRow(context, query, id, StatusPublished).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count published "+kind.Plural)
	}
	return count, nil
}

func (queries *postgresQueries) HasContent(context context.Context, kind *Kind, id string) (bool, error) {
	if kind.ContentColumn == "" {
		return false, nil
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2 AND btrim(%s) <> '')`,
		kind.Table, columns.ID, columns.Status, kind.ContentColumn)

	var exists bool
	if err := queries.db.QueryRow(context, query, id, StatusDeleted).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check "+kind.Name+" content")
	}
	return exists, nil
}

func (queries *postgresQueries) TitleTaken(context context.Context, kind *Kind, scopeID, title string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s <> $3)`,
		kind.Table, kind.ScopeColumn, columns.Title, columns.Status)

	var exists bool
	if err := queries.db.QueryRow(context, query, scopeID, title, StatusDeleted).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check "+kind.Name+" title")
	}
	return exists, nil
}

func (queries *postgresQueries) LastDeleted(context context.Context, kind *Kind, scopeID string) (*Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s DESC NULLS LAST, %s ASC LIMIT 1`,
		selectList(kind, ""), kind.Table, kind.ScopeColumn, columns.Status, columns.DeletedAt, columns.Order)
	return queries.findOne(context, "find last deleted "+kind.Name, query, scopeID, StatusDeleted)
}

// # Writes

func (queries *postgresQueries) Insert(context context.Context, kind *Kind, r *Resource) error {
	names := []string{
		columns.ID, columns.AuthorID, columns.Slug, columns.Title, columns.Description,
		columns.Status, columns.Order, columns.CreatedAt, columns.UpdatedAt,
	}
	values := []any{r.ID, r.AuthorID, r.Slug, r.Title, r.Description, r.Status, r.Order, r.CreatedAt, r.UpdatedAt}

	switch kind {
	case Serie:
		names = append(names, schema.CoreSerie.Visibility)
		values = append(values, r.Visibility)
	case Book:
		names = append(names, schema.CoreBook.SerieID)
		values = append(values, r.SerieID)
	case Chapter:
		names = append(names, schema.CoreChapter.SerieID, schema.CoreChapter.BookID)
		values = append(values, r.SerieID, r.BookID)
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		kind.Table, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	if _, err := queries.db.Exec(context, query, values...); err != nil {
		return dberr.Wrap(err, "insert "+kind.Name)
	}
	return nil
}

func (queries *postgresQueries) Save(context context.Context, kind *Kind, r *Resource) error {
	assignments := fmt.Sprintf(`%s = $2, %s = $3, %s = $4, %s = $5, %s = $6`,
		columns.Title, columns.Description, columns.Slug, columns.Status, columns.UpdatedAt)
	args := []any{r.ID, r.Title, r.Description, r.Slug, r.Status, r.UpdatedAt, StatusDeleted}

	if kind.HasVisibility {
		assignments += fmt.Sprintf(`, %s = $8`, schema.CoreSerie.Visibility)
		args = append(args, r.Visibility)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 AND %s <> $7`,
		kind.Table, assignments, columns.ID, columns.Status)

	tag, err := queries.db.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "save "+kind.Name)
	}
	if tag.RowsAffected() == 0 {
		return errNotFound(kind)
	}
	return nil
}

func (queries *postgresQueries) SetSlug(context context.Context, kind *Kind, id, slug string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`, kind.Table, columns.Slug, columns.ID)
	if _, err := queries.db.Exec(context, query, id, slug); err != nil {
		return dberr.Wrap(err, "set "+kind.Name+" slug")
	}
	return nil
}

func (queries *postgresQueries) SetOrder(context context.Context, kind *Kind, id string, order int) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`, kind.Table, columns.Order, columns.ID)
	if _, err := queries.db.Exec(context, query, id, order); err != nil {
		return dberr.Wrap(err, "set "+kind.Name+" order")
	}
	return nil
}

func (queries *postgresQueries) MarkDeleted(context context.Context, kind *Kind, id string, tombstone Tombstone) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $3 WHERE %s = $1`,
		kind.Table, columns.Status, columns.DeletedAt, columns.DeletionReason, columns.Order, columns.UpdatedAt, columns.ID)
	if _, err := queries.db.Exec(context, query, id, StatusDeleted, tombstone.At, tombstone.Reason, tombstone.Order); err != nil {
		return dberr.Wrap(err, "mark "+kind.Name+" deleted")
	}
	return nil
}

func (queries *postgresQueries) CascadeDelete(context context.Context, target Cascade, parentID string, tombstone Tombstone) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1 AND %s <> $2`,
		target.Table, columns.Status, columns.DeletedAt, columns.DeletionReason, target.Column, columns.Status)
	tag, err := queries.db.Exec(context, query, parentID, StatusDeleted, tombstone.At, tombstone.Reason)
	if err != nil {
		return 0, dberr.Wrap(err, "cascade delete "+target.Table)
	}
	return tag.RowsAffected(), nil
}

// CloseGap renumbers through the negative range so the live (scope, order)
// unique index, which Postgres checks row by row, never sees a duplicate.
// Live orders are positive outside a swap, so the negative range is free.
func (queries *postgresQueries) CloseGap(context context.Context, kind *Kind, scopeID string, after int) (int64, error) {
	park := fmt.Sprintf(`UPDATE %s SET %s = -(%s - 1) WHERE %s = $1 AND %s <> $2 AND %s > $3`,
		kind.Table, columns.Order, columns.Order, kind.ScopeColumn, columns.Status, columns.Order)
	tag, err := queries.db.Exec(context, park, scopeID, StatusDeleted, after)
	if err != nil {
		return 0, dberr.Wrap(err, "park "+kind.Name+" orders")
	}
	if tag.RowsAffected() == 0 {
		return 0, nil
	}

	restore := fmt.Sprintf(`UPDATE %s SET %s = -%s WHERE %s = $1 AND %s <> $2 AND %s < 0`,
		kind.Table, columns.Order, columns.Order, kind.ScopeColumn, columns.Status, columns.Order)
	if _, err := queries.db.Exec(context, restore, scopeID, StatusDeleted); err != nil {
		return 0, dberr.Wrap(err, "close "+kind.Name+" order gap")
	}
	return tag.RowsAffected(), nil
}

// # Listing

// sortColumns maps API sort fields to columns.
var sortColumns = map[SortField]string{
	SortByOrder:     columns.Order,
	SortByCreatedAt: columns.CreatedAt,
	SortByTitle:     columns.Title,
}

// List implements [Store].
func (queries *postgresQueries) List(context context.Context, kind *Kind, authorID string, filter ListFilter) ([]*Resource, int, error) {
	var (
		conditions []string
		args       []any
	)
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions = append(conditions, fmt.Sprintf("r.%s <> %s", columns.Status, next(StatusDeleted)))
	if authorID != "" {
		conditions = append(conditions, fmt.Sprintf("r.%s = %s", columns.AuthorID, next(authorID)))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		conditions = append(conditions, fmt.Sprintf("r.%s = ANY(%s)", columns.Status, next(statuses)))
	}

	if kind.HasVisibility && len(filter.Visibilities) > 0 {
		visibilities := make([]string, len(filter.Visibilities))
		for i, visibility := range filter.Visibilities {
			visibilities[i] = string(visibility)
		}
		conditions = append(conditions, fmt.Sprintf("r.%s = ANY(%s)", schema.CoreSerie.Visibility, next(visibilities)))
	}

	if kind.Parent != nil && len(filter.ParentSlugs) > 0 {
		conditions = append(conditions, fmt.Sprintf("r.%s IN (SELECT %s FROM %s WHERE %s = ANY(%s))",
			kind.ScopeColumn, columns.ID, kind.Parent.Table, columns.Slug, next(filter.ParentSlugs)))
	}

	if filter.Query != "" {
		operator := "LIKE"
		if filter.CaseInsensitive {
			operator = "ILIKE"
		}
		placeholder := next("%" + escapeLike(filter.Query) + "%")
		conditions = append(conditions, fmt.Sprintf("(r.%s %s %s OR r.%s %s %s OR r.%s %s %s)",
			columns.Title, operator, placeholder,
			columns.Slug, operator, placeholder,
			columns.Description, operator, placeholder))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s r WHERE %s`, kind.Table, where)
	if err := queries.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count "+kind.Plural)
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	sortColumn, ok := sortColumns[filter.SortField]
	if !ok {
		sortColumn = columns.Order
	}

	query := fmt.Sprintf(`SELECT %s FROM %s r WHERE %s ORDER BY r.%s %s, r.%s ASC`,
		selectList(kind, "r"), kind.Table, where, sortColumn, direction, columns.ID)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", next(filter.Limit), next(filter.Offset))
	}

	rows, err := queries.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list "+kind.Plural)
	}
	defer rows.Close()

	resources := make([]*Resource, 0)
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan "+kind.Name)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate "+kind.Plural)
	}

	return resources, total, nil
}

// escapeLike escapes the LIKE wildcards in user input.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
