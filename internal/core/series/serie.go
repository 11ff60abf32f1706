// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package series exposes series over HTTP: the author's own series, the
public catalog and the moderation view.

A serie is the top of the Serie → Book → Chapter tree. Its siblings are all
series of the same author. Ordering, lifecycle and deletion rules live in
the shared [resource.Engine].
*/
package series

import (
	"time"

	"github.com/encre-app/encre/internal/core/resource"
)

// # Domain Entities

// Serie is the representation of a serie. AuthorID is only filled for staff.
type Serie struct {
	ID          string              `json:"id"`
	AuthorID    string              `json:"authorId,omitempty"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      resource.Status     `json:"status"`
	Visibility  resource.Visibility `json:"visibility"`
	Order       int                 `json:"order"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// fromResource maps an engine row to the response shape.
func fromResource(r *resource.Resource) *Serie {
	return &Serie{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Visibility:  r.Visibility,
		Order:       r.Order,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// withAuthor maps a row for moderators, who browse across authors.
func withAuthor(r *resource.Resource) *Serie {
	serie := fromResource(r)
	serie.AuthorID = r.AuthorID
	return serie
}
