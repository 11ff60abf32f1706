// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package author resolves the author profile behind an authenticated user.

A signed-in user becomes an author once, by creating a profile. Every author
route is then scoped by the resolved author ID. The user → author mapping
never changes once created, so it is cached in Redis and read through to
PostgreSQL on a miss.
*/
package author

import "time"

// Profile limits.
const (
	NameMaxLen = 50
	BioMaxLen  = 1000
)

// Author is the writing profile owned by exactly one user.
type Author struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput is the payload of [Service.Create]. Empty optional fields fall
// back to the account's username.
type CreateInput struct {
	UserID   string
	Username string
	Slug     string
	Name     string
	Bio      string
	Website  string
}
