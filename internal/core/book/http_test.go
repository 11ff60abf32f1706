// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package book_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encre-app/encre/internal/core/book"
	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/core/resource/resourcetest"
	"github.com/encre-app/encre/internal/platform/ctxutil"
)

type harness struct {
	t      *testing.T
	router chi.Router
	store  *resourcetest.Store
	engine *resource.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := resourcetest.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := resource.NewEngine(store, resource.Limits{SeriesPerAuthor: 5, BooksPerSerie: 5, ChaptersPerBook: 5}, nil, logger)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthorID(request.Context(), "author-1")))
		})
	})
	book.NewHandler(book.NewService(engine)).RegisterRoutes(router)

	return &harness{t: t, router: router, store: store, engine: engine}
}

func (h *harness) serie(title string) string {
	h.t.Helper()
	slug, err := h.engine.Create(h.t.Context(), resource.Serie, resource.CreateInput{AuthorID: "author-1", Title: title})
	require.NoError(h.t, err)
	return slug
}

func (h *harness) do(method, target, body string) (int, map[string]any) {
	h.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, httptest.NewRequest(method, target, reader))

	var payload map[string]any
	require.NoError(h.t, json.Unmarshal(recorder.Body.Bytes(), &payload), recorder.Body.String())
	return recorder.Code, payload
}

func data(payload map[string]any) map[string]any {
	return payload["data"].(map[string]any)
}

/*
TestBookHandler_CreateAndSwap creates three books and swaps the outer two.
*/
func TestBookHandler_CreateAndSwap(t *testing.T) {
	h := newHarness(t)
	h.serie("Saga")

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		code, payload := h.do(http.MethodPost, "/books", `{"serie":"saga","title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, code, payload)
	}

	code, payload := h.do(http.MethodPost, "/books/swap", `{"a":"alpha","b":"gamma"}`)
	require.Equal(t, http.StatusOK, code, payload)
	assert.Equal(t, map[string]any{"a": "alpha", "b": "gamma"}, data(payload))

	code, payload = h.do(http.MethodGet, "/books?serie=saga", "")
	require.Equal(t, http.StatusOK, code)
	var slugs []string
	for _, item := range payload["data"].([]any) {
		slugs = append(slugs, item.(map[string]any)["slug"].(string))
	}
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, slugs)

	code, payload = h.do(http.MethodGet, "/books/gamma", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(payload)["order"])
	assert.Equal(t, h.store.BySlug(resource.Serie, "saga").ID, data(payload)["serieId"])
}

/*
TestBookHandler_SwapErrors verifies cross-serie, missing and empty swaps.
*/
func TestBookHandler_SwapErrors(t *testing.T) {
	h := newHarness(t)
	h.serie("Saga")
	h.serie("Other")
	h.do(http.MethodPost, "/books", `{"serie":"saga","title":"Alpha"}`)
	h.do(http.MethodPost, "/books", `{"serie":"other","title":"Beta"}`)

	code, payload := h.do(http.MethodPost, "/books/swap", `{"a":"alpha","b":"beta"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Books are not in the same serie", payload["error"])

	code, payload = h.do(http.MethodPost, "/books/swap", `{"a":"alpha","b":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "One of the books (or both) not found", payload["error"])

	code, _ = h.do(http.MethodPost, "/books/swap", `{"a":"alpha"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

/*
TestBookHandler_CreateErrors verifies parent validation and lookup.
*/
func TestBookHandler_CreateErrors(t *testing.T) {
	h := newHarness(t)

	code, payload := h.do(http.MethodPost, "/books", `{"title":"Orphan"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"serie"}, payload["path"])

	code, payload = h.do(http.MethodPost, "/books", `{"serie":"nowhere","title":"Orphan"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Serie not found", payload["error"])
}

/*
TestBookHandler_PublishAndDelete verifies the publish precondition and delete over HTTP.
*/
func TestBookHandler_PublishAndDelete(t *testing.T) {
	h := newHarness(t)
	h.serie("Saga")
	h.do(http.MethodPost, "/books", `{"serie":"saga","title":"Alpha"}`)

	code, payload := h.do(http.MethodPatch, "/books/alpha", `{"status":"published"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"status"}, payload["path"])

	code, _ = h.do(http.MethodPatch, "/books/alpha", `{"status":"coming_soon","description":"Soon"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, resource.StatusComingSoon, h.store.BySlug(resource.Book, "alpha").Status)

	code, payload = h.do(http.MethodDelete, "/books/alpha", `{"title":"Alpha"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alpha", data(payload)["slug"])
	assert.Equal(t, resource.StatusDeleted, h.store.BySlug(resource.Book, "alpha").Status)
}

/*
TestBookHandler_VisibilityRejected verifies that visibility cannot be patched onto a book.
*/
func TestBookHandler_VisibilityRejected(t *testing.T) {
	h := newHarness(t)
	h.serie("Saga")
	h.do(http.MethodPost, "/books", `{"serie":"saga","title":"Volume"}`)
	h.store.ResetWrites()

	code, payload := h.do(http.MethodPatch, "/books/volume", `{"visibility":"public"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"visibility"}, payload["path"])
	assert.Equal(t, "Visibility can only be set on a serie", payload["error"])

	code, _ = h.do(http.MethodPatch, "/books/volume", `{"title":"Renamed","visibility":"private"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, h.store.Writes)
	assert.Equal(t, "Volume", h.store.BySlug(resource.Book, "volume").Title)
}
