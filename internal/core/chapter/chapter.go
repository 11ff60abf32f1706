// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package chapter exposes the author's chapters and their content over HTTP.

Chapters are ordered within their book. Besides the shared ordering and
lifecycle rules, a chapter carries its text, which must be non-blank before
the chapter can be published.
*/
package chapter

import (
	"time"

	"github.com/encre-app/encre/internal/core/resource"
)

// # Domain Entities

// Chapter is the author-facing representation of a chapter.
type Chapter struct {
	ID          string          `json:"id"`
	SerieID     string          `json:"serieId"`
	BookID      string          `json:"bookId"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      resource.Status `json:"status"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Content is the text of a chapter. EditedAt is nil until the first save.
type Content struct {
	Content  string     `json:"content"`
	Words    int        `json:"words"`
	EditedAt *time.Time `json:"editedAt"`
}

func fromResource(r *resource.Resource) *Chapter {
	return &Chapter{
		ID:          r.ID,
		SerieID:     r.SerieID,
		BookID:      r.BookID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Order:       r.Order,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
