// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package author

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encre-app/encre/internal/core/resource"
	requestutil "github.com/encre-app/encre/internal/platform/request"
	"github.com/encre-app/encre/internal/platform/respond"
)

// Handler implements the HTTP layer for the author profile.
type Handler struct {
	service *Service
}

// NewHandler constructs a new author [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches author profile endpoints to the author router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/me", handler.GetMe)
}

// RegisterAccountRoutes attaches the endpoints open to any signed-in user.
func (handler *Handler) RegisterAccountRoutes(router chi.Router) {
	router.Post("/", handler.BecomeAuthor)
}

/*
GET /api/v1/author/me.

Description: Returns the author profile of the authenticated user.

Response:
  - 200: Author
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: An author profile is required
*/
func (handler *Handler) GetMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.GetByUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, author)
}

type becomeAuthorRequest struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Bio     string `json:"bio"`
	Website string `json:"website"`
}

/*
POST /api/v1/authors.

Description: Creates the author profile of the authenticated user.

Response:
  - 201: {slug}
  - 400: ErrBadRequest: Profile already exists or slug unavailable
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) BecomeAuthor(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body becomeAuthorRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.Create(request.Context(), CreateInput{
		UserID:   userID,
		Username: requestutil.Claims(request).Username,
		Slug:     body.Slug,
		Name:     body.Name,
		Bio:      body.Bio,
		Website:  body.Website,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource.SlugResponse{Slug: slug})
}
