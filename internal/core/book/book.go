// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package book exposes the author's books over HTTP. Books are ordered within
// their serie and can be reordered by swapping two siblings.
package book

import (
	"time"

	"github.com/encre-app/encre/internal/core/resource"
)

// Book is the author-facing representation of a book.
type Book struct {
	ID          string          `json:"id"`
	SerieID     string          `json:"serieId"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      resource.Status `json:"status"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func fromResource(r *resource.Resource) *Book {
	return &Book{
		ID:          r.ID,
		SerieID:     r.SerieID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Order:       r.Order,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
