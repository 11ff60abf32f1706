// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package book

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
	// ParamSlug is the URL parameter naming a book.
	ParamSlug = "slug"
	// ParamSerie filters listings by comma-separated serie slugs.
	ParamSerie = "serie"
)

// Handler implements the HTTP layer for books.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches book endpoints to the author router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/books", func(books chi.Router) {
		books.Get("/", handler.ListBooks)
		books.Post("/", handler.CreateBook)
		books.Post("/swap", handler.SwapBookOrder)
		books.Get("/{slug}", handler.GetBook)
		books.Patch("/{slug}", handler.UpdateBook)
		books.Delete("/{slug}", handler.DeleteBook)
	})
}

// # Book Retrieval

/*
GET /api/v1/author/books.

Request:
  - serie: string (comma-separated serie slugs)
  - status, q, sort, dir, page, limit

Response:
  - 200: []Book
*/
func (handler *Handler) ListBooks(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, page := resource.FilterFromRequest(request, ParamSerie)

	items, total, err := handler.service.ListBooks(request.Context(), authorID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

// GetBook serves GET /api/v1/author/books/{slug}.
func (handler *Handler) GetBook(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), authorID, requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

// # Book Mutations

type createBookRequest struct {
	Serie       string `json:"serie"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

/*
POST /api/v1/author/books.

Description: Appends a new draft book to the end of the serie.

Response:
  - 201: {slug}
  - 400: ErrBadRequest: Limit reached, blocked or duplicate title, cancelled serie
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) CreateBook(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createBookRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(ParamSerie, body.Serie).Slug(ParamSerie, body.Serie)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.CreateBook(request.Context(), resource.CreateInput{
		AuthorID:    authorID,
		ParentSlug:  body.Serie,
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource.SlugResponse{Slug: slug})
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Visibility  *string `json:"visibility"`
}

// UpdateBook serves PATCH /api/v1/author/books/{slug}.
func (handler *Handler) UpdateBook(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateBookRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.UpdateBook(request.Context(), resource.UpdateInput{
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

type deleteBookRequest struct {
	Title string `json:"title"`
}

// DeleteBook serves DELETE /api/v1/author/books/{slug}. Chapters go with it.
func (handler *Handler) DeleteBook(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body deleteBookRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.DeleteBook(request.Context(), resource.DeleteInput{
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

// # Reordering

type swapRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

/*
POST /api/v1/author/books/swap.

Description: Exchanges the positions of two books of the same serie.

Response:
  - 200: {a, b}
  - 400: ErrBadRequest: Books are not in the same serie
  - 404: ErrNotFound: One of the books (or both) not found
*/
func (handler *Handler) SwapBookOrder(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body swapRequest
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

	result, err := handler.service.SwapBookOrder(request.Context(), resource.SwapInput{AuthorID: authorID, A: body.A, B: body.B})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
