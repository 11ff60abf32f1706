// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package character

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/internal/platform/dberr"
	"github.com/encre-app/encre/internal/platform/postgres"
	"github.com/encre-app/encre/pkg/slice"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed character store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool, pool: pool}
}

func (repository *PostgresRepository) InTx(context context.Context, fn func(q Queries) error) error {
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		return fn(&postgresQueries{db: tx})
	})
	return dberr.Wrap(err, "run character transaction")
}

var (
	ch = schema.CoreCharacter
	se = schema.CoreSerie
)

// selectList returns the SELECT expressions matching scanCharacter over
// "c" joined with its serie "s".
func selectList() string {
	return strings.Join([]string{
		"c." + ch.ID + "::text",
		"c." + ch.SerieID + "::text",
		"s." + se.Slug,
		"s." + se.Title,
		"c." + ch.Slug,
		"c." + ch.Name,
		"c." + ch.FirstName,
		"c." + ch.MiddleName,
		"c." + ch.LastName,
		"c." + ch.Aliases,
		"c." + ch.Description,
		"c." + ch.Status,
		"c." + ch.CreatedAt,
		"c." + ch.UpdatedAt,
	}, ", ")
}

func scanCharacter(row pgx.Row) (*Character, error) {
	c := &Character{}
	var status string
	err := row.Scan(
		&c.ID, &c.SerieID, &c.SerieSlug, &c.SerieTitle, &c.Slug, &c.Name,
		&c.FirstName, &c.MiddleName, &c.LastName, &c.Aliases, &c.Description,
		&status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = resource.Status(status)
	return c, nil
}

// conditions collects WHERE clauses with their positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (where *conditions) next(value any) string {
	where.args = append(where.args, value)
	return fmt.Sprintf("$%d", len(where.args))
}

func (where *conditions) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, value := range values {
		placeholders[i] = where.next(value)
	}
	where.clauses = append(where.clauses, fmt.Sprintf(format, placeholders...))
}

func (where *conditions) String() string {
	return strings.Join(where.clauses, " AND ")
}

// liveFor restricts to live characters of live series audience may see.
// allowUnlisted admits unlisted series for direct lookups.
func liveFor(audience resource.Audience, allowUnlisted bool) *conditions {
	where := &conditions{}
	where.add("c."+ch.Status+" <> %s", string(resource.StatusDeleted))
	where.add("s."+se.Status+" <> %s", string(resource.StatusDeleted))

	if len(audience.Statuses) > 0 {
		where.add("s."+se.Status+" = ANY(%s)", slice.Map(audience.Statuses, func(s resource.Status) string { return string(s) }))
	}
	if len(audience.Visibilities) > 0 {
		visibilities := slice.Map(audience.Visibilities, func(v resource.Visibility) string { return string(v) })
		if allowUnlisted {
			visibilities = append(visibilities, string(resource.VisibilityUnlisted))
		}
		where.add("s."+se.Visibility+" = ANY(%s)", visibilities)
	}
	return where
}

const fromJoin = `%s c JOIN %s s ON s.%s = c.%s`

func from() string {
	return fmt.Sprintf(fromJoin, ch.Table, se.Table, se.ID, ch.SerieID)
}

// # Reads

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string, audience resource.Audience) (*Character, error) {
	where := liveFor(audience, true)
	where.add("c."+ch.Slug+" = %s", slug)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, selectList(), from(), where)
	found, err := scanCharacter(repository.db.QueryRow(context, query, where.args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find character by slug")
	}
	return found, nil
}

func (repository *PostgresRepository) List(context context.Context, audience resource.Audience, filter Filter) ([]*Character, int, error) {
	where := liveFor(audience, false)

	if len(filter.SerieSlugs) > 0 {
		where.add("s."+se.Slug+" = ANY(%s)", filter.SerieSlugs)
	}

	if filter.Query != "" {
		operator := "LIKE"
		if filter.CaseInsensitive {
			operator = "ILIKE"
		}
		pattern := where.next("%" + escapeLike(filter.Query) + "%")
		exact := where.next(filter.Query)
		matches := make([]string, 0, 6)
		for _, column := range []string{ch.Name, ch.FirstName, ch.LastName, ch.Description, ch.Slug} {
			matches = append(matches, fmt.Sprintf("c.%s %s %s", column, operator, pattern))
		}
		matches = append(matches, fmt.Sprintf("%s = ANY(c.%s)", exact, ch.Aliases))
		where.clauses = append(where.clauses, "("+strings.Join(matches, " OR ")+")")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, from(), where)
	if err := repository.db.QueryRow(context, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count characters")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY c.%s ASC, c.%s ASC`,
		selectList(), from(), where, ch.Name, ch.ID)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", where.next(filter.Limit), where.next(filter.Offset))
	}

	rows, err := repository.db.Query(context, query, where.args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list characters")
	}
	defer rows.Close()

	characters := make([]*Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan character")
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate characters")
	}

	return characters, total, nil
}

// # Transaction Queries

type postgresQueries struct {
	db dbtx
}

func (queries *postgresQueries) LockSerie(context context.Context, serieID string) error {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2 FOR UPDATE`, se.Table, se.ID, se.Status)

	var one int
	err := queries.db.QueryRow(context, query, serieID, resource.StatusDeleted).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Serie")
	}
	if err != nil {
		return dberr.Wrap(err, "lock serie")
	}
	return nil
}

func (queries *postgresQueries) CountUnnamed(context context.Context, serieID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s <> $2 AND %s LIKE $3`,
		ch.Table, ch.SerieID, ch.Status, ch.Name)

	var count int
	err := queries.db.QueryRow(context, query, serieID, resource.StatusDeleted, unnamedPrefix+"%").Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count unnamed characters")
	}
	return count, nil
}

func (queries *postgresQueries) SlugTaken(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`, ch.Table, ch.Slug, ch.Status)

	var taken bool
	if err := queries.db.QueryRow(context, query, slug, resource.StatusDeleted).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "check character slug")
	}
	return taken, nil
}

func (queries *postgresQueries) Insert(context context.Context, c *Character) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		ch.Table, strings.Join([]string{
			ch.ID, ch.SerieID, ch.Slug, ch.Name, ch.FirstName, ch.MiddleName,
			ch.LastName, ch.Aliases, ch.Description, ch.Status, ch.CreatedAt, ch.UpdatedAt,
		}, ", "))

	_, err := queries.db.Exec(context, query,
		c.ID, c.SerieID, c.Slug, c.Name, c.FirstName, c.MiddleName,
		c.LastName, c.Aliases, c.Description, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "insert character")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
