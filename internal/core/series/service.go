// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package series

import (
	"context"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/pkg/slice"
)

// # Service Layer

// Service binds the resource engine to the serie kind.
type Service struct {
	engine *resource.Engine
}

// NewService constructs a new [Service].
func NewService(engine *resource.Engine) *Service {
	return &Service{engine: engine}
}

// ListSeries returns one page of the author's live series.
func (service *Service) ListSeries(context context.Context, authorID string, filter resource.ListFilter) ([]*Serie, int, error) {
	rows, total, err := service.engine.List(context, resource.Serie, authorID, filter)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(rows, fromResource), total, nil
}

// GetSerie returns the author's live serie with slug.
func (service *Service) GetSerie(context context.Context, authorID, slug string) (*Serie, error) {
	row, err := service.engine.Get(context, resource.Serie, authorID, slug)
	if err != nil {
		return nil, err
	}
	return fromResource(row), nil
}

// CreateSerie appends a new draft serie and returns its slug.
func (service *Service) CreateSerie(context context.Context, input resource.CreateInput) (string, error) {
	return service.engine.Create(context, resource.Serie, input)
}

// UpdateSerie applies a partial update and returns the possibly new slug.
func (service *Service) UpdateSerie(context context.Context, input resource.UpdateInput) (string, error) {
	return service.engine.Update(context, resource.Serie, input)
}

// DeleteSerie soft-deletes a serie with its books, chapters and characters.
func (service *Service) DeleteSerie(context context.Context, input resource.DeleteInput) (string, error) {
	return service.engine.Delete(context, resource.Serie, input)
}

// # Reader & Staff Reads

// ListPublicSeries returns one page of the series any reader may browse.
func (service *Service) ListPublicSeries(context context.Context, authenticated bool, filter resource.ListFilter) ([]*Serie, int, error) {
	rows, total, err := service.engine.Browse(context, resource.Serie, resource.Readers(authenticated), filter)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(rows, fromResource), total, nil
}

// GetPublicSerie returns a serie visible to readers. Unlisted series resolve by slug.
func (service *Service) GetPublicSerie(context context.Context, authenticated bool, slug string) (*Serie, error) {
	row, err := service.engine.Lookup(context, resource.Serie, resource.Readers(authenticated), slug)
	if err != nil {
		return nil, err
	}
	return fromResource(row), nil
}

// AdminListSeries returns one page of every live serie across authors.
func (service *Service) AdminListSeries(context context.Context, filter resource.ListFilter) ([]*Serie, int, error) {
	rows, total, err := service.engine.Browse(context, resource.Serie, resource.Staff, filter)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(rows, withAuthor), total, nil
}

// AdminGetSerie returns any live serie, drafts and private ones included.
func (service *Service) AdminGetSerie(context context.Context, slug string) (*Serie, error) {
	row, err := service.engine.Lookup(context, resource.Serie, resource.Staff, slug)
	if err != nil {
		return nil, err
	}
	return withAuthor(row), nil
}
