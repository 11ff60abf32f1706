// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package character

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/validate"
	"github.com/encre-app/encre/pkg/slice"
	"github.com/encre-app/encre/pkg/slug"
	"github.com/encre-app/encre/pkg/uuid"
)

// slugAttempts bounds how many "-n" suffixes are tried for a taken slug.
const slugAttempts = 9

// # Service Layer

// Service creates and reads characters. The owning serie is resolved
// through the resource engine so the cancelled lock matches books and chapters.
type Service struct {
	engine *resource.Engine
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(engine *resource.Engine, repo Repository, logger *slog.Logger) *Service {
	return &Service{engine: engine, repo: repo, logger: logger}
}

/*
Create adds a character to one of the author's series.

Description: The name is taken from input.Name, else from the joined name
parts, else it becomes "Unnamed Character N" counted within the serie. The
slug derives from the name and is retried with -1 to -9 when taken.

Returns:
  - string: Slug of the new character
  - error: NotFound for an unknown serie, BadRequest for a cancelled one
*/
func (service *Service) Create(context context.Context, input CreateInput) (string, error) {
	if strings.TrimSpace(input.Serie) == "" {
		return "", validate.RequiredError("serie", "Serie is required")
	}

	aliases := compactAliases(input.Aliases)
	input.Description = strings.TrimSpace(input.Description)

	v := &validate.Validator{}
	v.MaxLen("name", input.Name, NameMaxLen).
		MaxLen("description", input.Description, DescriptionMaxLen).
		Custom("aliases", len(aliases) > MaxAliases, fmt.Sprintf("Maximum %d aliases", MaxAliases))
	if err := v.Err(); err != nil {
		return "", err
	}

	serie, err := service.engine.Attachable(context, resource.Serie, input.AuthorID, input.Serie, "character")
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	created := &Character{
		ID:          uuid.New(),
		SerieID:     serie.ID,
		FirstName:   strings.TrimSpace(input.FirstName),
		MiddleName:  strings.TrimSpace(input.MiddleName),
		LastName:    strings.TrimSpace(input.LastName),
		Aliases:     aliases,
		Description: input.Description,
		Status:      resource.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = service.repo.InTx(context, func(q Queries) error {
		if err := q.LockSerie(context, serie.ID); err != nil {
			return err
		}

		name, err := displayName(context, q, serie.ID, input.Name, created)
		if err != nil {
			return err
		}
		created.Name = name

		created.Slug, err = freeSlug(context, q, name)
		if err != nil {
			return err
		}

		return q.Insert(context, created)
	})
	if err != nil {
		return "", err
	}

	service.logger.InfoContext(context, "character_created",
		slog.String("character_id", created.ID),
		slog.String("serie_id", serie.ID),
		slog.String("slug", created.Slug),
	)

	return created.Slug, nil
}

// GetCharacter returns a character whose serie audience may see.
func (service *Service) GetCharacter(context context.Context, audience resource.Audience, slug string) (*Character, error) {
	found, err := service.repo.FindBySlug(context, slug, audience)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, apperr.NotFound("Character")
	}
	return found, nil
}

// ListCharacters returns one page of the characters audience may see.
func (service *Service) ListCharacters(context context.Context, audience resource.Audience, filter Filter) ([]*Character, int, error) {
	filter.SerieSlugs = slice.Filter(filter.SerieSlugs, func(s string) bool { return s != "" })
	return service.repo.List(context, audience, filter)
}

// # Naming

func displayName(context context.Context, q Queries, serieID, name string, parts *Character) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}

	joined := strings.Join(slice.Filter([]string{parts.FirstName, parts.MiddleName, parts.LastName}, func(s string) bool { return s != "" }), " ")
	if joined != "" {
		return joined, nil
	}

	count, err := q.CountUnnamed(context, serieID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d", unnamedPrefix, count+1), nil
}

func freeSlug(context context.Context, q Queries, name string) (string, error) {
	base := slug.From(name)
	if base == "" {
		return "", apperr.BadRequestAt("name", "Name must contain at least one letter or digit")
	}

	for n := 0; n <= slugAttempts; n++ {
		candidate := base
		if n > 0 {
			candidate = slug.WithSuffix(base, n)
		}
		taken, err := q.SlugTaken(context, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.BadRequestAt("name", "A character with this name already exists")
}

// compactAliases trims aliases and drops empty and repeated ones.
func compactAliases(aliases []string) []string {
	seen := make(map[string]bool, len(aliases))
	compact := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		compact = append(compact, alias)
	}
	return compact
}
