// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package character

import (
	"context"

	"github.com/encre-app/encre/internal/core/resource"
)

// Repository persists characters.
//
// Reads take a [resource.Audience] that bounds the visibility and status of
// the owning serie.
type Repository interface {
	// InTx runs fn inside one transaction.
	InTx(context context.Context, fn func(q Queries) error) error

	// FindBySlug returns the live character with slug, or nil when the
	// audience may not see its serie. Unlisted series are allowed.
	FindBySlug(context context.Context, slug string, audience resource.Audience) (*Character, error)

	// List returns one page of live characters and the total match count.
	List(context context.Context, audience resource.Audience, filter Filter) ([]*Character, int, error)
}

// Queries are the statements Create runs inside its transaction.
type Queries interface {
	// LockSerie locks the live serie row for the rest of the transaction.
	LockSerie(context context.Context, serieID string) error

	// CountUnnamed counts live characters of the serie named after the placeholder.
	CountUnnamed(context context.Context, serieID string) (int, error)

	// SlugTaken reports whether a live character already uses slug.
	SlugTaken(context context.Context, slug string) (bool, error)

	Insert(context context.Context, character *Character) error
}
