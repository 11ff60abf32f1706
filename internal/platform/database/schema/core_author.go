// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package schema

// CoreAuthorTable represents the 'core.author' table
type CoreAuthorTable struct {
	Table     string
	ID        string
	UserID    string
	Slug      string
	Name      string
	Bio       string
	Website   string
	CreatedAt string
	UpdatedAt string
}

// CoreAuthor is the schema definition for core.author
var CoreAuthor = CoreAuthorTable{
	Table:     "core.author",
	ID:        "id",
	UserID:    "userid",
	Slug:      "slug",
	Name:      "name",
	Bio:       "bio",
	Website:   "website",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}
