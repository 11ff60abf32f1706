// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package chapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/pkg/slice"
)

// # Service Layer

// Service binds the resource engine to the chapter kind and manages chapter text.
type Service struct {
	engine   *resource.Engine
	contents ContentRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a new [Service].
func NewService(engine *resource.Engine, contents ContentRepository, logger *slog.Logger) *Service {
	return &Service{
		engine:   engine,
		contents: contents,
		logger:   logger,
		now:      time.Now,
	}
}

// # Chapter Operations

// ListChapters returns one page of the author's live chapters, optionally narrowed to some books.
func (service *Service) ListChapters(context context.Context, authorID string, filter resource.ListFilter) ([]*Chapter, int, error) {
	rows, total, err := service.engine.List(context, resource.Chapter, authorID, filter)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(rows, fromResource), total, nil
}

// GetChapter returns the author's live chapter with slug.
func (service *Service) GetChapter(context context.Context, authorID, slug string) (*Chapter, error) {
	row, err := service.engine.Get(context, resource.Chapter, authorID, slug)
	if err != nil {
		return nil, err
	}
	return fromResource(row), nil
}

// CreateChapter appends a draft chapter to the book named by input.ParentSlug.
func (service *Service) CreateChapter(context context.Context, input resource.CreateInput) (string, error) {
	return service.engine.Create(context, resource.Chapter, input)
}

// UpdateChapter applies a partial update and returns the possibly new slug.
func (service *Service) UpdateChapter(context context.Context, input resource.UpdateInput) (string, error) {
	return service.engine.Update(context, resource.Chapter, input)
}

// DeleteChapter soft-deletes a chapter. Chapters have no descendants.
func (service *Service) DeleteChapter(context context.Context, input resource.DeleteInput) (string, error) {
	return service.engine.Delete(context, resource.Chapter, input)
}

// SwapChapterOrder exchanges the orders of two chapters of the same book.
func (service *Service) SwapChapterOrder(context context.Context, input resource.SwapInput) (resource.SwapResult, error) {
	return service.engine.Swap(context, resource.Chapter, input)
}

// # Content Operations

/*
GetContent returns the text of the author's chapter.

Parameters:
  - context: context.Context
  - authorID: string (Owner)
  - slug: string

Returns:
  - *Content: Text, word count and last edit time
  - error: ErrNotFound if the chapter is missing, foreign or deleted
*/
func (service *Service) GetContent(context context.Context, authorID, slug string) (*Content, error) {
	row, err := service.engine.Get(context, resource.Chapter, authorID, slug)
	if err != nil {
		return nil, err
	}
	return service.contents.FindContent(context, row.ID)
}

/*
SaveContent replaces the text of the author's chapter and recounts its words.

The same cancellation lock as an update applies: a cancelled chapter, or a
chapter under a cancelled book or serie, cannot be edited.

Returns:
  - string: The chapter slug
  - error: ErrNotFound, or BAD_REQUEST when locked by cancellation
*/
func (service *Service) SaveContent(context context.Context, authorID, slug, text string) (string, error) {
	row, err := service.engine.Writable(context, resource.Chapter, authorID, slug)
	if err != nil {
		return "", err
	}

	editedAt := service.now()
	content := Content{
		Content:  text,
		Words:    CountWords(text),
		EditedAt: &editedAt,
	}

	if err := service.contents.SaveContent(context, row.ID, content); err != nil {
		return "", err
	}

	service.logger.InfoContext(context, "chapter_content_saved",
		slog.String("slug", row.Slug),
		slog.Int("words", content.Words),
	)

	return row.Slug, nil
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
