// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package author

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/constants"
	"github.com/encre-app/encre/internal/platform/validate"
	"github.com/encre-app/encre/pkg/slug"
	"github.com/encre-app/encre/pkg/uuid"
)

// slugAttempts bounds how many "-n" suffixes are tried for a taken slug.
const slugAttempts = 9

// Service resolves and reads author profiles.
type Service struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewService constructs a new [Service]. A nil cache disables caching.
func NewService(repo Repository, cache Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

/*
ResolveAuthorID maps a user to their author profile ID.

Description: Reads through the cache. Cache failures are logged and the
lookup falls back to PostgreSQL, so Redis is never on the critical path.

Returns:
  - string: Author ID
  - error: apperr.Forbidden if the user has no author profile
*/
func (service *Service) ResolveAuthorID(context context.Context, userID string) (string, error) {
	if service.cache != nil {
		cached, err := service.cache.Get(context, userID)
		switch {
		case err != nil:
			service.logger.WarnContext(context, "author_cache_read_failed", slog.String(constants.FieldError, err.Error()))
		case cached != "":
			return cached, nil
		}
	}

	author, err := service.GetByUser(context, userID)
	if err != nil {
		return "", err
	}

	if service.cache != nil {
		if err := service.cache.Set(context, userID, author.ID, service.ttl); err != nil {
			service.logger.WarnContext(context, "author_cache_write_failed", slog.String(constants.FieldError, err.Error()))
		}
	}

	return author.ID, nil
}

// GetByUser returns the author profile of userID, or Forbidden when there is none.
func (service *Service) GetByUser(context context.Context, userID string) (*Author, error) {
	author, err := service.repo.FindByUserID(context, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Forbidden("An author profile is required")
		}
		return nil, err
	}
	return author, nil
}

/*
Create opens an author profile for a signed-in user.

Description: Name and slug fall back to the account username. A taken slug
is retried with the suffixes -1 to -9. The new mapping is written to the
cache so the first author request does not miss.

Returns:
  - string: Slug of the created profile
  - error: BadRequest if the user already has a profile or no slug is free
*/
func (service *Service) Create(context context.Context, input CreateInput) (string, error) {
	existing, err := service.repo.FindByUserID(context, input.UserID)
	switch {
	case err == nil && existing != nil:
		return "", apperr.BadRequest("You already have an author profile")
	case err != nil && !apperr.HasCode(err, apperr.CodeNotFound):
		return "", err
	}

	name := strings.TrimSpace(cmp.Or(strings.TrimSpace(input.Name), input.Username))
	if name == "" {
		return "", validate.RequiredError("name", "Name is required")
	}

	website := strings.TrimSpace(input.Website)
	bio := strings.TrimSpace(input.Bio)

	v := &validate.Validator{}
	v.MaxLen("name", name, NameMaxLen).
		MaxLen("bio", bio, BioMaxLen).
		Custom("website", website != "" && !validURL(website), "Must be a valid URL")
	if input.Slug != "" {
		v.Slug("slug", input.Slug)
	}
	if err := v.Err(); err != nil {
		return "", err
	}

	base := slug.From(cmp.Or(input.Slug, input.Username, name))
	if base == "" {
		return "", validate.RequiredError("slug", "Slug is required")
	}

	free, err := service.freeSlug(context, base)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	author := &Author{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Slug:      free,
		Name:      name,
		Bio:       bio,
		Website:   website,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.repo.Insert(context, author); err != nil {
		return "", err
	}

	if service.cache != nil {
		if err := service.cache.Set(context, input.UserID, author.ID, service.ttl); err != nil {
			service.logger.WarnContext(context, "author_cache_write_failed", slog.String(constants.FieldError, err.Error()))
		}
	}

	service.logger.InfoContext(context, "author_created",
		slog.String("author_id", author.ID),
		slog.String("slug", author.Slug),
	)

	return author.Slug, nil
}

// freeSlug returns base or the first free "base-n".
func (service *Service) freeSlug(context context.Context, base string) (string, error) {
	for n := 0; n <= slugAttempts; n++ {
		candidate := base
		if n > 0 {
			candidate = slug.WithSuffix(base, n)
		}
		taken, err := service.repo.SlugTaken(context, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.BadRequestAt("slug", "This slug is already taken")
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
