// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package character manages the cast of a serie.

Characters are not ordered. They hang off a serie, cannot be added to a
cancelled one, and are soft-deleted by the serie delete cascade. Readers see
the characters of the series they may browse.
*/
package character

import (
	"time"

	"github.com/encre-app/encre/internal/core/resource"
)

// Field limits.
const (
	NameMaxLen        = 100
	DescriptionMaxLen = 5000
	MaxAliases        = 20
)

// unnamedPrefix names characters created without any name part.
const unnamedPrefix = "Unnamed Character"

// Character is one row of core.character with the slug and title of its serie.
type Character struct {
	ID          string          `json:"id"`
	SerieID     string          `json:"-"`
	SerieSlug   string          `json:"serie"`
	SerieTitle  string          `json:"serieTitle"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	FirstName   string          `json:"firstName"`
	MiddleName  string          `json:"middleName"`
	LastName    string          `json:"lastName"`
	Aliases     []string        `json:"aliases"`
	Description string          `json:"description"`
	Status      resource.Status `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateInput is the payload of [Service.Create].
type CreateInput struct {
	AuthorID    string
	Serie       string
	Name        string
	FirstName   string
	MiddleName  string
	LastName    string
	Aliases     []string
	Description string
}

// Filter narrows a character listing. Deleted characters and characters of
// deleted series are never listed.
type Filter struct {
	SerieSlugs      []string
	Query           string
	CaseInsensitive bool
	Limit           int
	Offset          int
}
