// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package resourcetest provides an in-memory [resource.Store] for tests.
//
// It enforces the same unique indexes as the SQL schema (slug per table,
// order per live scope) after every write, rolls transactions back on error
// and can inject failures into named operations.
package resourcetest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/internal/platform/dberr"
)

// Store is a mutex-guarded, transactional in-memory store.
type Store struct {
	mu      sync.Mutex
	tables  map[string]map[string]*resource.Resource
	content map[string]string

	// FailOn makes the named operation ("CloseGap", "CascadeDelete", ...) return the error.
	FailOn map[string]error

	// Writes records every write operation with its arguments, in order.
	Writes []string

	// Locks records every scope lock as "table id", rollbacks included.
	Locks []string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tables:  make(map[string]map[string]*resource.Resource),
		content: make(map[string]string),
		FailOn:  make(map[string]error),
	}
}

// # Seeding and Inspection

// Put inserts or replaces a row without constraint checks.
func (store *Store) Put(kind *resource.Kind, r *resource.Resource) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.table(kind.Table)[r.ID] = clone(r)
}

// PutCharacter seeds a live character of a serie so the serie cascade can reach it.
func (store *Store) PutCharacter(id, serieID string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.table(schema.CoreCharacter.Table)[id] = &resource.Resource{ID: id, SerieID: serieID, Slug: id, Status: resource.StatusDraft}
}

// Character returns a character row.
func (store *Store) Character(id string) *resource.Resource {
	store.mu.Lock()
	defer store.mu.Unlock()
	return clone(store.table(schema.CoreCharacter.Table)[id])
}

// SetContent stores chapter content.
func (store *Store) SetContent(id, content string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.content[id] = content
}

// Row returns a copy of the row with id, or nil.
func (store *Store) Row(kind *resource.Kind, id string) *resource.Resource {
	store.mu.Lock()
	defer store.mu.Unlock()
	return clone(store.table(kind.Table)[id])
}

// BySlug returns a copy of the row holding slug, or nil.
func (store *Store) BySlug(kind *resource.Kind, slug string) *resource.Resource {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, r := range store.table(kind.Table) {
		if r.Slug == slug {
			return clone(r)
		}
	}
	return nil
}

// LiveOrders returns the sorted orders of live rows in scopeID.
func (store *Store) LiveOrders(kind *resource.Kind, scopeID string) []int {
	store.mu.Lock()
	defer store.mu.Unlock()
	orders := make([]int, 0)
	for _, r := range store.table(kind.Table) {
		if r.Live() && kind.ScopeOf(r) == scopeID {
			orders = append(orders, r.Order)
		}
	}
	sort.Ints(orders)
	return orders
}

// Rows returns copies of every row of kind, sorted by order.
func (store *Store) Rows(kind *resource.Kind) []*resource.Resource {
	store.mu.Lock()
	defer store.mu.Unlock()
	var rows []*resource.Resource
	for _, r := range store.table(kind.Table) {
		rows = append(rows, clone(r))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	return rows
}

// ResetWrites clears the write log.
func (store *Store) ResetWrites() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.Writes = nil
}

// # Store

// InTx runs fn under the store lock and restores a snapshot when fn fails.
func (store *Store) InTx(ctx context.Context, fn func(q resource.Queries) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	tablesSnapshot := store.snapshot()
	writesSnapshot := len(store.Writes)

	if err := fn(&queries{store: store}); err != nil {
		store.tables = tablesSnapshot
		store.Writes = store.Writes[:writesSnapshot]
		return dberr.Wrap(err, "run resource transaction")
	}
	return nil
}

// List implements [resource.Store].
func (store *Store) List(ctx context.Context, kind *resource.Kind, authorID string, filter resource.ListFilter) ([]*resource.Resource, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var parentIDs []string
	if kind.Parent != nil && len(filter.ParentSlugs) > 0 {
		for _, parent := range store.table(kind.Parent.Table) {
			if slices.Contains(filter.ParentSlugs, parent.Slug) {
				parentIDs = append(parentIDs, parent.ID)
			}
		}
	}

	matches := make([]*resource.Resource, 0)
	for _, r := range store.table(kind.Table) {
		if (authorID != "" && r.AuthorID != authorID) || !r.Live() {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status) {
			continue
		}
		if kind.HasVisibility && len(filter.Visibilities) > 0 && !slices.Contains(filter.Visibilities, r.Visibility) {
			continue
		}
		if len(filter.ParentSlugs) > 0 && kind.Parent != nil && !slices.Contains(parentIDs, kind.ScopeOf(r)) {
			continue
		}
		if filter.Query != "" && !matchesQuery(r, filter.Query, filter.CaseInsensitive) {
			continue
		}
		matches = append(matches, clone(r))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		less := compare(matches[i], matches[j], filter.SortField)
		if filter.Descending {
			return compare(matches[j], matches[i], filter.SortField)
		}
		return less
	})

	total := len(matches)
	if filter.Limit > 0 {
		start := min(filter.Offset, total)
		end := min(start+filter.Limit, total)
		matches = matches[start:end]
	}
	return matches, total, nil
}

func matchesQuery(r *resource.Resource, query string, insensitive bool) bool {
	fields := []string{r.Title, r.Slug, r.Description}
	for _, field := range fields {
		if insensitive {
			if strings.Contains(strings.ToLower(field), strings.ToLower(query)) {
				return true
			}
		} else if strings.Contains(field, query) {
			return true
		}
	}
	return false
}

func compare(a, b *resource.Resource, field resource.SortField) bool {
	switch field {
	case resource.SortByTitle:
		return a.Title < b.Title
	case resource.SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.Order < b.Order
	}
}

// Outside a transaction each statement locks the store on its own.
func (store *Store) FindLive(ctx context.Context, kind *resource.Kind, authorID, slug string, forUpdate bool) (*resource.Resource, error) {
	return withLock(store, func(q *queries) (*resource.Resource, error) {
		return q.FindLive(ctx, kind, authorID, slug, forUpdate)
	})
}

func (store *Store) FindByID(ctx context.Context, kind *resource.Kind, id string) (*resource.Resource, error) {
	return withLock(store, func(q *queries) (*resource.Resource, error) { return q.FindByID(ctx, kind, id) })
}

func (store *Store) FindBySlug(ctx context.Context, kind *resource.Kind, slug string) (*resource.Resource, error) {
	return withLock(store, func(q *queries) (*resource.Resource, error) { return q.FindBySlug(ctx, kind, slug) })
}

func (store *Store) LockScope(ctx context.Context, kind *resource.Kind, scopeID string) error {
	_, err := withLock(store, func(q *queries) (struct{}, error) { return struct{}{}, q.LockScope(ctx, kind, scopeID) })
	return err
}

func (store *Store) CountLive(ctx context.Context, kind *resource.Kind, scopeID string) (int, error) {
	return withLock(store, func(q *queries) (int, error) { return q.CountLive(ctx, kind, scopeID) })
}

func (store *Store) CountPublished(ctx context.Context, kind *resource.Kind, column, id string) (int, error) {
	return withLock(store, func(q *queries) (int, error) { return q.CountPublished(ctx, kind, column, id) })
}

func (store *Store) HasContent(ctx context.Context, kind *resource.Kind, id string) (bool, error) {
	return withLock(store, func(q *queries) (bool, error) { return q.HasContent(ctx, kind, id) })
}

func (store *Store) TitleTaken(ctx context.Context, kind *resource.Kind, scopeID, title string) (bool, error) {
	return withLock(store, func(q *queries) (bool, error) { return q.TitleTaken(ctx, kind, scopeID, title) })
}

func (store *Store) LastDeleted(ctx context.Context, kind *resource.Kind, scopeID string) (*resource.Resource, error) {
	return withLock(store, func(q *queries) (*resource.Resource, error) { return q.LastDeleted(ctx, kind, scopeID) })
}

func (store *Store) Insert(ctx context.Context, kind *resource.Kind, r *resource.Resource) error {
	return store.InTx(ctx, func(q resource.Queries) error { return q.Insert(ctx, kind, r) })
}

func (store *Store) Save(ctx context.Context, kind *resource.Kind, r *resource.Resource) error {
	return store.InTx(ctx, func(q resource.Queries) error { return q.Save(ctx, kind, r) })
}

func (store *Store) SetSlug(ctx context.Context, kind *resource.Kind, id, slug string) error {
	return store.InTx(ctx, func(q resource.Queries) error { return q.SetSlug(ctx, kind, id, slug) })
}

func (store *Store) SetOrder(ctx context.Context, kind *resource.Kind, id string, order int) error {
	return store.InTx(ctx, func(q resource.Queries) error { return q.SetOrder(ctx, kind, id, order) })
}

func (store *Store) MarkDeleted(ctx context.Context, kind *resource.Kind, id string, tombstone resource.Tombstone) error {
	return store.InTx(ctx, func(q resource.Queries) error { return q.MarkDeleted(ctx, kind, id, tombstone) })
}

func (store *Store) CascadeDelete(ctx context.Context, target resource.Cascade, parentID string, tombstone resource.Tombstone) (int64, error) {
	var affected int64
	err := store.InTx(ctx, func(q resource.Queries) error {
		var err error
		affected, err = q.CascadeDelete(ctx, target, parentID, tombstone)
		return err
	})
	return affected, err
}

func (store *Store) CloseGap(ctx context.Context, kind *resource.Kind, scopeID string, after int) (int64, error) {
	var affected int64
	err := store.InTx(ctx, func(q resource.Queries) error {
		var err error
		affected, err = q.CloseGap(ctx, kind, scopeID, after)
		return err
	})
	return affected, err
}

func withLock[T any](store *Store, fn func(q *queries) (T, error)) (T, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(&queries{store: store})
}

// # Internals

func (store *Store) table(name string) map[string]*resource.Resource {
	rows, ok := store.tables[name]
	if !ok {
		rows = make(map[string]*resource.Resource)
		store.tables[name] = rows
	}
	return rows
}

func (store *Store) snapshot() map[string]map[string]*resource.Resource {
	copied := make(map[string]map[string]*resource.Resource, len(store.tables))
	for name, rows := range store.tables {
		copiedRows := make(map[string]*resource.Resource, len(rows))
		for id, r := range rows {
			copiedRows[id] = clone(r)
		}
		copied[name] = copiedRows
	}
	return copied
}

func clone(r *resource.Resource) *resource.Resource {
	if r == nil {
		return nil
	}
	copied := *r
	if r.DeletedAt != nil {
		deletedAt := *r.DeletedAt
		copied.DeletedAt = &deletedAt
	}
	return &copied
}

// uniqueViolation mimics the error pgx returns for SQLSTATE 23505.
func uniqueViolation(index string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: index}
}

// checkConstraints enforces the slug and live order unique indexes of kind.
func (store *Store) checkConstraints(kind *resource.Kind) error {
	slugs := make(map[string]bool)
	orders := make(map[string]bool)

	for _, r := range store.table(kind.Table) {
		if slugs[r.Slug] {
			return uniqueViolation(kind.Name + "_slug_key")
		}
		slugs[r.Slug] = true

		if !r.Live() {
			continue
		}
		key := fmt.Sprintf("%s/%d", kind.ScopeOf(r), r.Order)
		if orders[key] {
			return uniqueViolation(kind.Name + "_live_order_key")
		}
		orders[key] = true
	}
	return nil
}

// columnValue resolves a scope or reference column of a row.
func columnValue(r *resource.Resource, column string) string {
	switch column {
	case schema.CoreSerie.AuthorID:
		return r.AuthorID
	case schema.CoreBook.SerieID:
		return r.SerieID
	case schema.CoreChapter.BookID:
		return r.BookID
	}
	return ""
}
