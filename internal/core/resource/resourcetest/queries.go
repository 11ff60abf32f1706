// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resourcetest

import (
	"context"
	"fmt"
	"strings"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/platform/apperr"
)

// queries runs statements against the store. The caller holds the lock.
type queries struct {
	store *Store
}

func (q *queries) fail(op string) error {
	return q.store.FailOn[op]
}

func (q *queries) record(op string, args ...any) {
	q.store.Writes = append(q.store.Writes, strings.TrimSpace(fmt.Sprintln(append([]any{op}, args...)...)))
}

// # Reads

func (q *queries) FindLive(ctx context.Context, kind *resource.Kind, authorID, slug string, forUpdate bool) (*resource.Resource, error) {
	if err := q.fail("FindLive"); err != nil {
		return nil, err
	}
	for _, r := range q.store.table(kind.Table) {
		if r.Slug == slug && r.AuthorID == authorID && r.Live() {
			return clone(r), nil
		}
	}
	return nil, nil
}

func (q *queries) FindByID(ctx context.Context, kind *resource.Kind, id string) (*resource.Resource, error) {
	if err := q.fail("FindByID"); err != nil {
		return nil, err
	}
	return clone(q.store.table(kind.Table)[id]), nil
}

func (q *queries) FindBySlug(ctx context.Context, kind *resource.Kind, slug string) (*resource.Resource, error) {
	if err := q.fail("FindBySlug"); err != nil {
		return nil, err
	}
	for _, r := range q.store.table(kind.Table) {
		if r.Slug == slug {
			return clone(r), nil
		}
	}
	return nil, nil
}

// LockScope only checks that a parent scope is still live. The store lock
// already serializes transactions.
func (q *queries) LockScope(ctx context.Context, kind *resource.Kind, scopeID string) error {
	if err := q.fail("LockScope"); err != nil {
		return err
	}
	q.store.Locks = append(q.store.Locks, kind.ScopeTable+" "+scopeID)
	if kind.Parent == nil {
		return nil
	}
	if parent := q.store.table(kind.Parent.Table)[scopeID]; parent == nil || !parent.Live() {
		return apperr.NotFound(kind.Parent.Label)
	}
	return nil
}

func (q *queries) CountLive(ctx context.Context, kind *resource.Kind, scopeID string) (int, error) {
	if err := q.fail("CountLive"); err != nil {
		return 0, err
	}
	count := 0
	for _, r := range q.store.table(kind.Table) {
		if r.Live() && kind.ScopeOf(r) == scopeID {
			count++
		}
	}
	return count, nil
}

func (q *queries) CountPublished(ctx context.Context, kind *resource.Kind, column, id string) (int, error) {
	if err := q.fail("CountPublished"); err != nil {
		return 0, err
	}
	count := 0
	for _, r := range q.store.table(kind.Table) {
		if r.Status == resource.StatusPublished && columnValue(r, column) == id {
			count++
		}
	}
	return count, nil
}

func (q *queries) HasContent(ctx context.Context, kind *resource.Kind, id string) (bool, error) {
	if err := q.fail("HasContent"); err != nil {
		return false, err
	}
	if kind.ContentColumn == "" {
		return false, nil
	}
	r := q.store.table(kind.Table)[id]
	if r == nil || !r.Live() {
		return false, nil
	}
	return strings.TrimSpace(q.store.content[id]) != "", nil
}

func (q *queries) TitleTaken(ctx context.Context, kind *resource.Kind, scopeID, title string) (bool, error) {
	if err := q.fail("TitleTaken"); err != nil {
		return false, err
	}
	for _, r := range q.store.table(kind.Table) {
		if r.Live() && kind.ScopeOf(r) == scopeID && r.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// LastDeleted picks the latest deletedAt, breaking ties on the lowest order.
func (q *queries) LastDeleted(ctx context.Context, kind *resource.Kind, scopeID string) (*resource.Resource, error) {
	if err := q.fail("LastDeleted"); err != nil {
		return nil, err
	}
	var last *resource.Resource
	for _, r := range q.store.table(kind.Table) {
		if r.Live() || kind.ScopeOf(r) != scopeID {
			continue
		}
		switch {
		case last == nil:
			last = r
		case r.DeletedAt != nil && (last.DeletedAt == nil || r.DeletedAt.After(*last.DeletedAt)):
			last = r
		case sameTime(r, last) && r.Order < last.Order:
			last = r
		}
	}
	return clone(last), nil
}

func sameTime(a, b *resource.Resource) bool {
	if a.DeletedAt == nil || b.DeletedAt == nil {
		return a.DeletedAt == b.DeletedAt
	}
	return a.DeletedAt.Equal(*b.DeletedAt)
}

// # Writes

func (q *queries) Insert(ctx context.Context, kind *resource.Kind, r *resource.Resource) error {
	if err := q.fail("Insert"); err != nil {
		return err
	}
	q.record("Insert", kind.Name, r.Slug, r.Order)
	q.store.table(kind.Table)[r.ID] = clone(r)
	return q.store.checkConstraints(kind)
}

func (q *queries) Save(ctx context.Context, kind *resource.Kind, r *resource.Resource) error {
	if err := q.fail("Save"); err != nil {
		return err
	}
	current := q.store.table(kind.Table)[r.ID]
	if current == nil || !current.Live() {
		return apperr.NotFound(kind.Label)
	}
	q.record("Save", kind.Name, r.Slug, r.Status)
	current.Title = r.Title
	current.Description = r.Description
	current.Slug = r.Slug
	current.Status = r.Status
	current.UpdatedAt = r.UpdatedAt
	if kind.HasVisibility {
		current.Visibility = r.Visibility
	}
	return q.store.checkConstraints(kind)
}

func (q *queries) SetSlug(ctx context.Context, kind *resource.Kind, id, slug string) error {
	if err := q.fail("SetSlug"); err != nil {
		return err
	}
	q.record("SetSlug", kind.Name, slug)
	if r := q.store.table(kind.Table)[id]; r != nil {
		r.Slug = slug
	}
	return q.store.checkConstraints(kind)
}

func (q *queries) SetOrder(ctx context.Context, kind *resource.Kind, id string, order int) error {
	if err := q.fail("SetOrder"); err != nil {
		return err
	}
	q.record("SetOrder", kind.Name, id, order)
	if r := q.store.table(kind.Table)[id]; r != nil {
		r.Order = order
	}
	return q.store.checkConstraints(kind)
}

func (q *queries) MarkDeleted(ctx context.Context, kind *resource.Kind, id string, tombstone resource.Tombstone) error {
	if err := q.fail("MarkDeleted"); err != nil {
		return err
	}
	q.record("MarkDeleted", kind.Name, id, tombstone.Order)
	if r := q.store.table(kind.Table)[id]; r != nil {
		at := tombstone.At
		r.Status = resource.StatusDeleted
		r.DeletedAt = &at
		r.DeletionReason = tombstone.Reason
		r.Order = tombstone.Order
		r.UpdatedAt = tombstone.At
	}
	return q.store.checkConstraints(kind)
}

func (q *queries) CascadeDelete(ctx context.Context, target resource.Cascade, parentID string, tombstone resource.Tombstone) (int64, error) {
	if err := q.fail("CascadeDelete"); err != nil {
		return 0, err
	}
	q.record("CascadeDelete", target.Table, parentID)
	var affected int64
	for _, r := range q.store.table(target.Table) {
		if r.Live() && columnValue(r, target.Column) == parentID {
			at := tombstone.At
			r.Status = resource.StatusDeleted
			r.DeletedAt = &at
			r.DeletionReason = tombstone.Reason
			affected++
		}
	}
	return affected, nil
}

func (q *queries) CloseGap(ctx context.Context, kind *resource.Kind, scopeID string, after int) (int64, error) {
	if err := q.fail("CloseGap"); err != nil {
		return 0, err
	}
	q.record("CloseGap", kind.Name, after)
	var affected int64
	for _, r := range q.store.table(kind.Table) {
		if r.Live() && kind.ScopeOf(r) == scopeID && r.Order > after {
			r.Order--
			affected++
		}
	}
	return affected, q.store.checkConstraints(kind)
}
