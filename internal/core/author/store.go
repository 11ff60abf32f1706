// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package author

import (
	"context"
	"time"
)

// Repository reads and creates author profiles in the relational store.
type Repository interface {

	/*
		FindByUserID returns the author profile owned by userID.

		Returns:
		  - *Author: The profile
		  - error: apperr.NotFound if the user has no profile
	*/
	FindByUserID(context context.Context, userID string) (*Author, error)

	// SlugTaken reports whether any profile uses slug.
	SlugTaken(context context.Context, slug string) (bool, error)

	// Insert writes a new profile. A second profile for the same user is a conflict.
	Insert(context context.Context, author *Author) error
}

// Cache stores the user → author ID mapping.
type Cache interface {

	// Get returns the cached author ID, or "" on a miss.
	Get(context context.Context, userID string) (string, error)

	// Set caches authorID for userID for ttl.
	Set(context context.Context, userID, authorID string, ttl time.Duration) error
}
