// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package schema names the tables and columns used by the pgx stores.
//
// SQL is assembled with fmt.Sprintf from these values so a column rename only
// touches one file.
package schema

// ResourceColumns are shared by every ordered, soft-deletable table
// (core.serie, core.book, core.chapter).
type ResourceColumns struct {
	ID             string
	AuthorID       string
	Slug           string
	Title          string
	Description    string
	Status         string
	Order          string
	DeletedAt      string
	DeletionReason string
	CreatedAt      string
	UpdatedAt      string
}

// resourceColumns holds the column names common to all ordered tables.
var resourceColumns = ResourceColumns{
	ID:             "id",
	AuthorID:       "authorid",
	Slug:           "slug",
	Title:          "title",
	Description:    "description",
	Status:         "status",
	Order:          `"order"`,
	DeletedAt:      "deletedat",
	DeletionReason: "deletionreason",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}
