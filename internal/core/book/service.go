// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package book

import (
	"context"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/pkg/slice"
)

// Service binds the resource engine to the book kind.
type Service struct {
	engine *resource.Engine
}

// NewService constructs a new [Service].
func NewService(engine *resource.Engine) *Service {
	return &Service{engine: engine}
}

// ListBooks returns one page of the author's live books, optionally narrowed to some series.
func (service *Service) ListBooks(context context.Context, authorID string, filter resource.ListFilter) ([]*Book, int, error) {
	rows, total, err := service.engine.List(context, resource.Book, authorID, filter)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(rows, fromResource), total, nil
}

// GetBook returns the author's live book with slug.
func (service *Service) GetBook(context context.Context, authorID, slug string) (*Book, error) {
	row, err := service.engine.Get(context, resource.Book, authorID, slug)
	if err != nil {
		return nil, err
	}
	return fromResource(row), nil
}

// CreateBook appends a draft book to the serie named by input.ParentSlug.
func (service *Service) CreateBook(context context.Context, input resource.CreateInput) (string, error) {
	return service.engine.Create(context, resource.Book, input)
}

// UpdateBook applies a partial update and returns the possibly new slug.
func (service *Service) UpdateBook(context context.Context, input resource.UpdateInput) (string, error) {
	return service.engine.Update(context, resource.Book, input)
}

// DeleteBook soft-deletes a book and its chapters.
func (service *Service) DeleteBook(context context.Context, input resource.DeleteInput) (string, error) {
	return service.engine.Delete(context, resource.Book, input)
}

// SwapBookOrder exchanges the orders of two books of the same serie.
func (service *Service) SwapBookOrder(context context.Context, input resource.SwapInput) (resource.SwapResult, error) {
	return service.engine.Swap(context, resource.Book, input)
}
