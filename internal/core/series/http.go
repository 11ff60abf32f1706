// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package series

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encre-app/encre/internal/core/resource"
	requestutil "github.com/encre-app/encre/internal/platform/request"
	"github.com/encre-app/encre/internal/platform/respond"
	"github.com/encre-app/encre/pkg/pagination"
	"github.com/encre-app/encre/pkg/pointer"
)

// ParamSlug is the URL parameter naming a serie.
const ParamSlug = "slug"

// # Handler Implementation

// Handler implements the HTTP layer for series.
type Handler struct {
	service *Service
}

// NewHandler constructs a new serie [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches serie endpoints to the author router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/series", func(series chi.Router) {
		series.Get("/", handler.ListSeries)
		series.Post("/", handler.CreateSerie)
		series.Get("/{slug}", handler.GetSerie)
		series.Patch("/{slug}", handler.UpdateSerie)
		series.Delete("/{slug}", handler.DeleteSerie)
	})
}

// RegisterPublicRoutes attaches the catalog endpoints. Authentication is optional.
func (handler *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Route("/series", func(series chi.Router) {
		series.Get("/", handler.ListPublicSeries)
		series.Get("/{slug}", handler.GetPublicSerie)
	})
}

// RegisterAdminRoutes attaches the moderation endpoints.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Route("/series", func(series chi.Router) {
		series.Get("/", handler.AdminListSeries)
		series.Get("/{slug}", handler.AdminGetSerie)
	})
}

// # Serie Retrieval

/*
GET /api/v1/author/series.

Description: Returns a paginated list of the author's live series.

Request:
  - status: string (comma-separated)
  - q: string (matches title, slug or description)
  - sort: string (order, createdAt, title)
  - dir: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Serie
  - 400: ErrBadRequest: Invalid status or sort field
*/
func (handler *Handler) ListSeries(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, page := resource.FilterFromRequest(request, "")

	items, total, err := handler.service.ListSeries(request.Context(), authorID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

/*
GET /api/v1/author/series/{slug}.

Response:
  - 200: Serie
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) GetSerie(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	serie, err := handler.service.GetSerie(request.Context(), authorID, requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, serie)
}

// # Catalog

/*
GET /api/v1/series.

Description: Lists live series of every author that are not drafts. Anonymous
readers see public series, signed-in readers members-only ones too.

Request:
  - status, visibility: string (comma-separated)
  - q, sort, dir, page, limit: as on the author listing

Response:
  - 200: []Serie
  - 400: ErrBadRequest: Invalid status, visibility or sort field
*/
func (handler *Handler) ListPublicSeries(writer http.ResponseWriter, request *http.Request) {
	filter, page := resource.FilterFromRequest(request, "")

	items, total, err := handler.service.ListPublicSeries(request.Context(), requestutil.Claims(request) != nil, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

/*
GET /api/v1/series/{slug}.

Response:
  - 200: Serie
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) GetPublicSerie(writer http.ResponseWriter, request *http.Request) {
	serie, err := handler.service.GetPublicSerie(request.Context(), requestutil.Claims(request) != nil, requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, serie)
}

/*
GET /api/v1/admin/series.

Description: Lists every live serie across authors, drafts included.

Response:
  - 200: []Serie (with authorId)
  - 403: ErrForbidden: Moderator role required
*/
func (handler *Handler) AdminListSeries(writer http.ResponseWriter, request *http.Request) {
	filter, page := resource.FilterFromRequest(request, "")

	items, total, err := handler.service.AdminListSeries(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

/*
GET /api/v1/admin/series/{slug}.

Response:
  - 200: Serie (with authorId)
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) AdminGetSerie(writer http.ResponseWriter, request *http.Request) {
	serie, err := handler.service.AdminGetSerie(request.Context(), requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, serie)
}

// # Serie Mutations

type createSerieRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

/*
POST /api/v1/author/series.

Description: Appends a new draft serie at the end of the author's list.

Response:
  - 201: {slug}
  - 400: ErrBadRequest: Limit reached, blocked or duplicate title
*/
func (handler *Handler) CreateSerie(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createSerieRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.CreateSerie(request.Context(), resource.CreateInput{
		AuthorID:    authorID,
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource.SlugResponse{Slug: slug})
}

type updateSerieRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Visibility  *string `json:"visibility"`
}

/*
PATCH /api/v1/author/series/{slug}.

Description: Updates title, description, status or visibility. A new title
yields a new slug, which is returned.

Response:
  - 200: {slug}
  - 400: ErrBadRequest: Cancelled, invalid status, publish precondition, blocked title
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) UpdateSerie(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateSerieRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.UpdateSerie(request.Context(), resource.UpdateInput{
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

type deleteSerieRequest struct {
	Title string `json:"title"`
}

/*
DELETE /api/v1/author/series/{slug}.

Description: Soft-deletes the serie with its books, chapters and characters.
The body must repeat the exact title.

Response:
  - 200: {slug}
  - 400: ErrBadRequest: Serie title does not match
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) DeleteSerie(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body deleteSerieRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.DeleteSerie(request.Context(), resource.DeleteInput{
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
