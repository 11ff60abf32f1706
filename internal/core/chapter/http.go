// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encre-app/encre/internal/core/resource"
	requestutil "github.com/encre-app/encre/internal/platform/request"
	"github.com/encre-app/encre/internal/platform/respond"
	"github.com/encre-app/encre/internal/platform/validate"
	"github.com/encre-app/encre/pkg/pagination"
	"github.com/encre-app/encre/pkg/pointer"
)

const (
	// ParamSlug is the URL parameter naming a chapter.
	ParamSlug = "slug"
	// ParamBook filters listings by comma-separated book slugs.
	ParamBook = "book"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapters and their content.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the author router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/chapters", func(chapters chi.Router) {
		chapters.Get("/", handler.ListChapters)
		chapters.Post("/", handler.CreateChapter)
		chapters.Post("/swap", handler.SwapChapterOrder)
		chapters.Get("/{slug}", handler.GetChapter)
		chapters.Patch("/{slug}", handler.UpdateChapter)
		chapters.Delete("/{slug}", handler.DeleteChapter)
		chapters.Get("/{slug}/content", handler.GetContent)
		chapters.Put("/{slug}/content", handler.SaveContent)
	})
}

// # Chapter Retrieval

/*
GET /api/v1/author/chapters.

Request:
  - book: string (comma-separated book slugs)
  - status, q, sort, dir, page, limit

Response:
  - 200: []Chapter
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, page := resource.FilterFromRequest(request, ParamBook)

	items, total, err := handler.service.ListChapters(request.Context(), authorID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

// GetChapter serves GET /api/v1/author/chapters/{slug}.
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.GetChapter(request.Context(), authorID, requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Chapter Mutations

type createChapterRequest struct {
	Book        string `json:"book"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

/*
POST /api/v1/author/chapters.

Description: Appends a new draft chapter to the end of the book.

Response:
  - 201: {slug}
  - 400: ErrBadRequest: Limit reached, blocked or duplicate title, cancelled book or serie
  - 404: ErrNotFound: Book not found
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createChapterRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(ParamBook, body.Book).Slug(ParamBook, body.Book)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.CreateChapter(request.Context(), resource.CreateInput{
		AuthorID:    authorID,
		ParentSlug:  body.Book,
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource.SlugResponse{Slug: slug})
}

type updateChapterRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Visibility  *string `json:"visibility"`
}

// UpdateChapter serves PATCH /api/v1/author/chapters/{slug}.
func (handler *Handler) UpdateChapter(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateChapterRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.UpdateChapter(request.Context(), resource.UpdateInput{
		AuthorID:    authorID,
		Slug:        requestutil.Param(request, ParamSlug),
		Title:       body.Title,
		Description: body.Description,
		Status:      pointer.Convert[string, resource.Status](body.Status),
		Visibility:  pointer.Convert[string, resource.Visibility](body.Visibility),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resource.SlugResponse{Slug: slug})
}

type deleteChapterRequest struct {
	Title string `json:"title"`
}

// DeleteChapter serves DELETE /api/v1/author/chapters/{slug}.
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body deleteChapterRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.DeleteChapter(request.Context(), resource.DeleteInput{
		AuthorID:     authorID,
		Slug:         requestutil.Param(request, ParamSlug),
		ConfirmTitle: body.Title,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resource.SlugResponse{Slug: slug})
}

type swapChapterRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

/*
POST /api/v1/author/chapters/swap.

Description: Exchanges the positions of two chapters of the same book.

Response:
  - 200: {a, b}
  - 400: ErrBadRequest: Chapters are not in the same book
  - 404: ErrNotFound: One of the chapters (or both) not found
*/
func (handler *Handler) SwapChapterOrder(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body swapChapterRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("a", body.A).Required("b", body.B)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.SwapChapterOrder(request.Context(), resource.SwapInput{AuthorID: authorID, A: body.A, B: body.B})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Chapter Content

/*
GET /api/v1/author/chapters/{slug}/content.

Response:
  - 200: Content
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) GetContent(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.service.GetContent(request.Context(), authorID, requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, content)
}

type saveContentRequest struct {
	Content string `json:"content"`
}

/*
PUT /api/v1/author/chapters/{slug}/content.

Description: Replaces the chapter text. The word count and edit time are
computed server-side.

Response:
  - 200: {slug}
  - 400: ErrBadRequest: Chapter, book or serie is cancelled
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) SaveContent(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body saveContentRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.SaveContent(request.Context(), authorID, requestutil.Param(request, ParamSlug), body.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resource.SlugResponse{Slug: slug})
}
