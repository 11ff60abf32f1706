// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"context"
)

// Queries is the statement set issued by the engine. Inside [Store.InTx]
// every call runs in the same transaction.
//
// Finders return (nil, nil) when no row matches.
type Queries interface {
	// FindLive returns the non-deleted row with slug owned by authorID.
	// forUpdate locks the row until the transaction ends.
	FindLive(ctx context.Context, kind *Kind, authorID, slug string, forUpdate bool) (*Resource, error)

	// FindByID returns the row with id in any status.
	FindByID(ctx context.Context, kind *Kind, id string) (*Resource, error)

	// FindBySlug returns the row holding slug in any status and for any author.
	FindBySlug(ctx context.Context, kind *Kind, slug string) (*Resource, error)

	// LockScope locks the row owning kind's sibling list (the author, serie or
	// book) until the transaction ends. A deleted parent is reported as not found.
	LockScope(ctx context.Context, kind *Kind, scopeID string) error

	// CountLive counts non-deleted siblings in scopeID.
	CountLive(ctx context.Context, kind *Kind, scopeID string) (int, error)

	// CountPublished counts rows of kind where column = id and status is published.
	CountPublished(ctx context.Context, kind *Kind, column, id string) (int, error)

	// HasContent reports whether the row's content column holds non-blank text.
	HasContent(ctx context.Context, kind *Kind, id string) (bool, error)

	// TitleTaken reports whether a live sibling in scopeID already uses title.
	TitleTaken(ctx context.Context, kind *Kind, scopeID, title string) (bool, error)

	// LastDeleted returns the most recently deleted sibling in scopeID.
	LastDeleted(ctx context.Context, kind *Kind, scopeID string) (*Resource, error)

	// Insert writes a new row.
	Insert(ctx context.Context, kind *Kind, r *Resource) error

	// Save writes title, description, slug, status, visibility and updatedAt.
	Save(ctx context.Context, kind *Kind, r *Resource) error

	// SetSlug rewrites the slug of a single row.
	SetSlug(ctx context.Context, kind *Kind, id, slug string) error

	// SetOrder rewrites the order of a single row.
	SetOrder(ctx context.Context, kind *Kind, id string, order int) error

	// MarkDeleted writes the tombstone, including its order, on one row.
	MarkDeleted(ctx context.Context, kind *Kind, id string, tombstone Tombstone) error

	// CascadeDelete marks every live row of target whose column equals parentID.
	// The tombstone order is not applied to cascaded rows.
	CascadeDelete(ctx context.Context, target Cascade, parentID string, tombstone Tombstone) (int64, error)

	// CloseGap decrements the order of live siblings in scopeID above after.
	CloseGap(ctx context.Context, kind *Kind, scopeID string, after int) (int64, error)
}

// Store is the persistence port of the engine.
type Store interface {
	Queries

	// InTx runs fn in one transaction. Any error rolls every write back.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// List returns one page of the author's live rows and the total match
	// count. An empty authorID lists every author.
	List(ctx context.Context, kind *Kind, authorID string, filter ListFilter) ([]*Resource, int, error)
}
