// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package character

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encre-app/encre/internal/core/resource"
	requestutil "github.com/encre-app/encre/internal/platform/request"
	"github.com/encre-app/encre/internal/platform/respond"
	"github.com/encre-app/encre/pkg/pagination"
	"github.com/encre-app/encre/pkg/query"
)

// URL and query parameters of the character endpoints.
const (
	ParamSlug  = "slug"
	ParamSerie = "serie"
)

// Handler implements the HTTP layer for characters.
type Handler struct {
	service *Service
}

// NewHandler constructs a new character [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the author endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/characters", handler.CreateCharacter)
}

// RegisterPublicRoutes attaches the reader endpoints. Authentication is optional.
func (handler *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Route("/characters", func(characters chi.Router) {
		characters.Get("/", handler.ListCharacters)
		characters.Get("/{slug}", handler.GetCharacter)
	})
}

// audienceOf returns the reader audience of request.
func audienceOf(request *http.Request) resource.Audience {
	return resource.Readers(requestutil.Claims(request) != nil)
}

/*
GET /api/v1/characters.

Description: Lists characters of the series the reader may browse.

Request:
  - serie: string (comma-separated serie slugs)
  - q: string (matches names, description, slug or an exact alias)
  - ci: bool (case-insensitive, default true)
  - page, limit: int

Response:
  - 200: []Character
*/
func (handler *Handler) ListCharacters(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	page := pagination.FromRequest(request)

	items, total, err := handler.service.ListCharacters(request.Context(), audienceOf(request), Filter{
		SerieSlugs:      query.StringSlice(values.Get(ParamSerie)),
		Query:           values.Get(resource.ParamQuery),
		CaseInsensitive: query.Bool(values.Get(resource.ParamCaseInsensitive), true),
		Limit:           page.Limit,
		Offset:          page.Offset(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page, total))
}

/*
GET /api/v1/characters/{slug}.

Response:
  - 200: Character
  - 404: ErrNotFound: Character not found
*/
func (handler *Handler) GetCharacter(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.GetCharacter(request.Context(), audienceOf(request), requestutil.Param(request, ParamSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

type createCharacterRequest struct {
	Serie       string   `json:"serie"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName"`
	MiddleName  string   `json:"middleName"`
	LastName    string   `json:"lastName"`
	Aliases     []string `json:"aliases"`
	Description string   `json:"description"`
}

/*
POST /api/v1/author/characters.

Description: Adds a character to one of the author's series.

Response:
  - 201: {slug}
  - 400: ErrBadRequest: Missing or cancelled serie, invalid fields
  - 404: ErrNotFound: Serie not found
*/
func (handler *Handler) CreateCharacter(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createCharacterRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	slug, err := handler.service.Create(request.Context(), CreateInput{
		AuthorID:    authorID,
		Serie:       body.Serie,
		Name:        body.Name,
		FirstName:   body.FirstName,
		MiddleName:  body.MiddleName,
		LastName:    body.LastName,
		Aliases:     body.Aliases,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource.SlugResponse{Slug: slug})
}
