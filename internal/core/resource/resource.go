// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package resource implements the ordering and soft-deletion engine shared by
series, books and chapters.

Every kind is an ordered, soft-deletable row owned by an author and grouped
under a parent (the author for series, the serie for books, the book for
chapters). Live siblings always carry the orders 1..N with no gap.

Architecture:

  - Kind: a descriptor naming the table, the sibling scope, the parent kind,
    the cascade targets and the publish precondition.
  - Engine: the only writer. It validates everything up front, then applies
    each mutation inside one transaction.
  - Store: the persistence port. The pgx implementation lives next to it and
    an in-memory one in resourcetest.
*/
package resource

import (
	"slices"
	"time"
)

// # Domain Enums

// Status is the lifecycle state of a resource.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusComingSoon Status = "coming_soon"
	StatusPublished  Status = "published"
	StatusArchived   Status = "archived"
	StatusCancelled  Status = "cancelled"

	// StatusDeleted is terminal and only reached through [Engine.Delete].
	StatusDeleted Status = "deleted"
)

// Statuses lists every status a client may filter on.
var Statuses = []Status{StatusDraft, StatusComingSoon, StatusPublished, StatusArchived, StatusCancelled}

// Visibility controls who can read a serie.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityUnlisted  Visibility = "unlisted"
	VisibilityFollowers Visibility = "followers"
	VisibilityMembers   Visibility = "members"
)

// Visibilities lists the accepted visibility values.
var Visibilities = []Visibility{
	VisibilityPublic, VisibilityPrivate, VisibilityUnlisted, VisibilityFollowers, VisibilityMembers,
}

// # Entities

// Resource is one row of core.serie, core.book or core.chapter.
//
// SerieID is empty for series. BookID is only set for chapters.
type Resource struct {
	ID             string
	AuthorID       string
	SerieID        string
	BookID         string
	Slug           string
	Title          string
	Description    string
	Status         Status
	Visibility     Visibility
	Order          int
	DeletedAt      *time.Time
	DeletionReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Live reports whether the resource still participates in ordering.
func (r *Resource) Live() bool {
	return r.Status != StatusDeleted
}

// Tombstone is the deleted state written by a delete and its cascade.
type Tombstone struct {
	At     time.Time
	Reason string
	Order  int
}

// # Inputs

// CreateInput is the payload of [Engine.Create].
type CreateInput struct {
	AuthorID    string
	ParentSlug  string
	Title       string
	Description string
}

// UpdateInput is the payload of [Engine.Update]. Nil fields are left untouched.
type UpdateInput struct {
	AuthorID    string
	Slug        string
	Title       *string
	Description *string
	Status      *Status
	Visibility  *Visibility
}

// DeleteInput is the payload of [Engine.Delete].
type DeleteInput struct {
	AuthorID     string
	Slug         string
	ConfirmTitle string
}

// SwapInput is the payload of [Engine.Swap].
type SwapInput struct {
	AuthorID string
	A        string
	B        string
}

// SwapResult echoes the two slugs of a swap. Slugs never change on swap.
type SwapResult struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Limits are the per-scope ceilings checked before Create.
type Limits struct {
	SeriesPerAuthor int
	BooksPerSerie   int
	ChaptersPerBook int
}

// # Listing

// SortField names an allowed ORDER BY target for listings.
type SortField string

const (
	SortByOrder     SortField = "order"
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
)

// ListFilter narrows a listing. Deleted rows are never listed.
type ListFilter struct {
	// ParentSlugs restricts books to these series or chapters to these books.
	ParentSlugs []string
	Statuses    []Status
	// Visibilities only applies to series.
	Visibilities []Visibility
	// Query matches title, slug or description as a substring.
	Query           string
	CaseInsensitive bool
	SortField       SortField
	Descending      bool
	Limit           int
	Offset          int
}

// # Audiences

// PublicStatuses are the statuses shown outside the owning author. Drafts stay private.
var PublicStatuses = []Status{StatusComingSoon, StatusPublished, StatusArchived, StatusCancelled}

// Audience bounds what a reader outside the author scope may see. Nil
// slices place no bound.
type Audience struct {
	Visibilities []Visibility
	Statuses     []Status
}

// Staff is the audience of moderators and admins: every live row.
var Staff = Audience{}

// Readers returns the audience of the public pages. Signed-in readers also
// see members-only series.
func Readers(authenticated bool) Audience {
	visibilities := []Visibility{VisibilityPublic}
	if authenticated {
		visibilities = append(visibilities, VisibilityMembers)
	}
	return Audience{Visibilities: visibilities, Statuses: PublicStatuses}
}

// narrow keeps the requested values that allowed contains. An empty request
// stands for all of allowed and an empty allowed set places no bound. ok is
// false when nothing survives.
func narrow[T comparable](requested, allowed []T) (narrowed []T, ok bool) {
	if len(allowed) == 0 {
		return requested, true
	}
	if len(requested) == 0 {
		return allowed, true
	}
	for _, value := range requested {
		if slices.Contains(allowed, value) {
			narrowed = append(narrowed, value)
		}
	}
	return narrowed, len(narrowed) > 0
}
