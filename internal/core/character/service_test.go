// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package character_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encre-app/encre/internal/core/character"
	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/core/resource/resourcetest"
	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/ctxutil"
	"github.com/encre-app/encre/internal/platform/sec"
)

const authorID = "author-1"

// memoryRepository keeps characters next to a resourcetest store. Every
// insert is mirrored into the store so the serie delete cascade reaches it,
// and reads take the status back from there.
type memoryRepository struct {
	store      *resourcetest.Store
	characters []*character.Character
	locks      []string
}

func (repository *memoryRepository) InTx(ctx context.Context, fn func(q character.Queries) error) error {
	snapshot := len(repository.characters)
	if err := fn(repository); err != nil {
		repository.characters = repository.characters[:snapshot]
		return err
	}
	for _, c := range repository.characters[snapshot:] {
		repository.store.PutCharacter(c.ID, c.SerieID)
	}
	return nil
}

func (repository *memoryRepository) LockSerie(ctx context.Context, serieID string) error {
	repository.locks = append(repository.locks, serieID)
	if serie := repository.store.Row(resource.Serie, serieID); serie == nil || !serie.Live() {
		return apperr.NotFound("Serie")
	}
	return nil
}

func (repository *memoryRepository) CountUnnamed(ctx context.Context, serieID string) (int, error) {
	count := 0
	for _, c := range repository.live() {
		if c.SerieID == serieID && strings.HasPrefix(c.Name, "Unnamed Character") {
			count++
		}
	}
	return count, nil
}

func (repository *memoryRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return slices.ContainsFunc(repository.live(), func(c *character.Character) bool { return c.Slug == slug }), nil
}

func (repository *memoryRepository) Insert(ctx context.Context, c *character.Character) error {
	copied := *c
	repository.characters = append(repository.characters, &copied)
	return nil
}

func (repository *memoryRepository) FindBySlug(ctx context.Context, slug string, audience resource.Audience) (*character.Character, error) {
	for _, c := range repository.visible(audience, true) {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (repository *memoryRepository) List(ctx context.Context, audience resource.Audience, filter character.Filter) ([]*character.Character, int, error) {
	matches := make([]*character.Character, 0)
	for _, c := range repository.visible(audience, false) {
		if len(filter.SerieSlugs) > 0 && !slices.Contains(filter.SerieSlugs, c.SerieSlug) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Query)) && !slices.Contains(c.Aliases, filter.Query) {
			continue
		}
		matches = append(matches, c)
	}
	return matches, len(matches), nil
}

// live returns the characters whose mirrored row is not deleted.
func (repository *memoryRepository) live() []*character.Character {
	var live []*character.Character
	for _, c := range repository.characters {
		if row := repository.store.Character(c.ID); row == nil || row.Live() {
			live = append(live, c)
		}
	}
	return live
}

func (repository *memoryRepository) visible(audience resource.Audience, allowUnlisted bool) []*character.Character {
	var visible []*character.Character
	for _, c := range repository.live() {
		serie := repository.store.Row(resource.Serie, c.SerieID)
		if serie == nil || !serie.Live() {
			continue
		}
		if len(audience.Statuses) > 0 && !slices.Contains(audience.Statuses, serie.Status) {
			continue
		}
		unlisted := allowUnlisted && serie.Visibility == resource.VisibilityUnlisted
		if len(audience.Visibilities) > 0 && !unlisted && !slices.Contains(audience.Visibilities, serie.Visibility) {
			continue
		}
		found := *c
		found.SerieSlug, found.SerieTitle = serie.Slug, serie.Title
		visible = append(visible, &found)
	}
	return visible
}

type fixture struct {
	t          *testing.T
	store      *resourcetest.Store
	engine     *resource.Engine
	repository *memoryRepository
	service    *character.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := resourcetest.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := resource.NewEngine(store, resource.Limits{SeriesPerAuthor: 5, BooksPerSerie: 5, ChaptersPerBook: 5}, nil, logger)
	repository := &memoryRepository{store: store}

	return &fixture{
		t:          t,
		store:      store,
		engine:     engine,
		repository: repository,
		service:    character.NewService(engine, repository, logger),
	}
}

// serie creates a serie of the author and moves it to visibility and status.
func (f *fixture) serie(title string, visibility resource.Visibility, status resource.Status) string {
	f.t.Helper()
	slug, err := f.engine.Create(f.t.Context(), resource.Serie, resource.CreateInput{AuthorID: authorID, Title: title})
	require.NoError(f.t, err)

	input := resource.UpdateInput{AuthorID: authorID, Slug: slug, Visibility: &visibility}
	if status != resource.StatusDraft {
		input.Status = &status
	}
	_, err = f.engine.Update(f.t.Context(), resource.Serie, input)
	require.NoError(f.t, err)
	return slug
}

func (f *fixture) create(input character.CreateInput) (string, error) {
	input.AuthorID = authorID
	return f.service.Create(f.t.Context(), input)
}

/*
TestCreate_Naming covers the explicit name, the joined parts and the numbered placeholder.
*/
func TestCreate_Naming(t *testing.T) {
	f := newFixture(t)
	saga := f.serie("Dragon Saga", resource.VisibilityPublic, resource.StatusComingSoon)

	cases := []struct {
		name  string
		input character.CreateInput
		slug  string
		title string
	}{
		{"explicit name", character.CreateInput{Name: "  Ember Vale ", FirstName: "Ignored"}, "ember-vale", "Ember Vale"},
		{"joined parts", character.CreateInput{FirstName: "Ada", LastName: "Lovelace"}, "ada-lovelace", "Ada Lovelace"},
		{"first placeholder", character.CreateInput{}, "unnamed-character-1", "Unnamed Character 1"},
		{"second placeholder", character.CreateInput{}, "unnamed-character-2", "Unnamed Character 2"},
		{"taken slug", character.CreateInput{Name: "Ember Vale"}, "ember-vale-1", "Ember Vale"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.Serie = saga
			slug, err := f.create(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.slug, slug)

			created, err := f.service.GetCharacter(t.Context(), resource.Staff, slug)
			require.NoError(t, err)
			assert.Equal(t, tc.title, created.Name)
			assert.Equal(t, saga, created.SerieSlug)
		})
	}

	serieID := f.store.BySlug(resource.Serie, saga).ID
	assert.Equal(t, slices.Repeat([]string{serieID}, len(cases)), f.repository.locks)
}

/*
TestCreate_PlaceholderPerSerie verifies that unnamed numbering restarts in each serie.
*/
func TestCreate_PlaceholderPerSerie(t *testing.T) {
	f := newFixture(t)
	first := f.serie("First Saga", resource.VisibilityPublic, resource.StatusDraft)
	second := f.serie("Second Saga", resource.VisibilityPublic, resource.StatusDraft)

	_, err := f.create(character.CreateInput{Serie: first})
	require.NoError(t, err)

	slug, err := f.create(character.CreateInput{Serie: second})
	require.NoError(t, err)
	assert.Equal(t, "unnamed-character-1-1", slug)

	found, err := f.service.GetCharacter(t.Context(), resource.Staff, slug)
	require.NoError(t, err)
	assert.Equal(t, "Unnamed Character 1", found.Name)
}

/*
TestCreate_Rejected covers missing, unknown and cancelled series and field bounds.
*/
func TestCreate_Rejected(t *testing.T) {
	f := newFixture(t)
	open := f.serie("Open Saga", resource.VisibilityPublic, resource.StatusDraft)
	cancelled := f.serie("Lost Saga", resource.VisibilityPublic, resource.StatusCancelled)

	aliases := make([]string, character.MaxAliases+1)
	for i := range aliases {
		aliases[i] = strings.Repeat("a", i+1)
	}

	cases := []struct {
		name    string
		input   character.CreateInput
		code    string
		message string
		field   string
	}{
		{"missing serie", character.CreateInput{Name: "Ada"}, apperr.CodeValidation, "Serie is required", "serie"},
		{"unknown serie", character.CreateInput{Serie: "nope", Name: "Ada"}, apperr.CodeNotFound, "Serie not found", ""},
		{"cancelled serie", character.CreateInput{Serie: cancelled, Name: "Ada"}, apperr.CodeBadRequest,
			"Serie is cancelled. You cannot add a character to a cancelled serie.", ""},
		{"long name", character.CreateInput{Serie: open, Name: strings.Repeat("n", character.NameMaxLen+1)}, apperr.CodeValidation, "", "name"},
		{"too many aliases", character.CreateInput{Serie: open, Name: "Ada", Aliases: aliases}, apperr.CodeValidation, "", "aliases"},
		{"no usable letter", character.CreateInput{Serie: open, Name: "!!!"}, apperr.CodeBadRequest, "", "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create(tc.input)
			require.Error(t, err)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tc.code, appErr.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, appErr.Message)
			}
			if tc.field != "" {
				assert.Equal(t, []string{tc.field}, appErr.Path())
			}
		})
	}

	assert.Empty(t, f.repository.characters)
}

/*
TestCreate_AliasesCompacted verifies that blank and repeated aliases are dropped.
*/
func TestCreate_AliasesCompacted(t *testing.T) {
	f := newFixture(t)
	saga := f.serie("Dragon Saga", resource.VisibilityPublic, resource.StatusDraft)

	slug, err := f.create(character.CreateInput{Serie: saga, Name: "Ember", Aliases: []string{" Red ", "", "Red", "Flame"}})
	require.NoError(t, err)

	found, err := f.service.GetCharacter(t.Context(), resource.Staff, slug)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red", "Flame"}, found.Aliases)
}

/*
TestSerieDelete_CascadesToCharacters verifies that deleting a serie hides its cast.
*/
func TestSerieDelete_CascadesToCharacters(t *testing.T) {
	f := newFixture(t)
	saga := f.serie("Dragon Saga", resource.VisibilityPublic, resource.StatusComingSoon)
	other := f.serie("Other Saga", resource.VisibilityPublic, resource.StatusComingSoon)

	doomed, err := f.create(character.CreateInput{Serie: saga, Name: "Ember"})
	require.NoError(t, err)
	kept, err := f.create(character.CreateInput{Serie: other, Name: "Ash"})
	require.NoError(t, err)

	_, err = f.engine.Delete(t.Context(), resource.Serie, resource.DeleteInput{AuthorID: authorID, Slug: saga, ConfirmTitle: "Dragon Saga"})
	require.NoError(t, err)

	doomedID := f.repository.characters[0].ID
	assert.Equal(t, resource.StatusDeleted, f.store.Character(doomedID).Status)
	assert.NotNil(t, f.store.Character(doomedID).DeletedAt)

	_, err = f.service.GetCharacter(t.Context(), resource.Staff, doomed)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.GetCharacter(t.Context(), resource.Staff, kept)
	assert.NoError(t, err)

	// The freed slug can be reused.
	slug, err := f.create(character.CreateInput{Serie: other, Name: "Ember"})
	require.NoError(t, err)
	assert.Equal(t, "ember", slug)
}

// # HTTP

func newRouter(f *fixture) http.Handler {
	handler := character.NewHandler(f.service)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithAuthorID(request.Context(), authorID)
			if request.Header.Get("signed-in") != "" {
				ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-9", Role: string(sec.RoleMember)})
			}
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	})
	router.Route("/author", handler.RegisterRoutes)
	router.Route("/public", handler.RegisterPublicRoutes)
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string, signedIn bool) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if signedIn {
		request.Header.Set("signed-in", "yes")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload), recorder.Body.String())
	return recorder.Code, payload
}

func slugsIn(payload map[string]any) []string {
	slugs := []string{}
	for _, item := range payload["data"].([]any) {
		slugs = append(slugs, item.(map[string]any)["slug"].(string))
	}
	return slugs
}

/*
TestCharacterHandler_Reader verifies create and the reader audience on list and get.
*/
func TestCharacterHandler_Reader(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	f.serie("Open Saga", resource.VisibilityPublic, resource.StatusComingSoon)
	f.serie("Members Saga", resource.VisibilityMembers, resource.StatusComingSoon)
	f.serie("Hidden Saga", resource.VisibilityUnlisted, resource.StatusComingSoon)
	f.serie("Draft Saga", resource.VisibilityPublic, resource.StatusDraft)

	for _, c := range []struct{ serie, name string }{
		{"open-saga", "Ember"},
		{"members-saga", "Ash"},
		{"hidden-saga", "Shade"},
		{"draft-saga", "Spark"},
	} {
		code, payload := do(t, router, http.MethodPost, "/author/characters", `{"serie":"`+c.serie+`","name":"`+c.name+`","aliases":["`+c.name+`ling"]}`, false)
		require.Equal(t, http.StatusCreated, code, payload)
	}

	code, payload := do(t, router, http.MethodGet, "/public/characters", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"ember"}, slugsIn(payload))

	code, payload = do(t, router, http.MethodGet, "/public/characters", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, []string{"ember", "ash"}, slugsIn(payload))
	assert.EqualValues(t, 2, payload["meta"].(map[string]any)["total"])

	code, payload = do(t, router, http.MethodGet, "/public/characters?serie=members-saga", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"ash"}, slugsIn(payload))

	code, payload = do(t, router, http.MethodGet, "/public/characters?q=Emberling", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"ember"}, slugsIn(payload))

	code, payload = do(t, router, http.MethodGet, "/public/characters/ember", "", false)
	require.Equal(t, http.StatusOK, code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "open-saga", data["serie"])
	assert.Equal(t, "Open Saga", data["serieTitle"])

	code, _ = do(t, router, http.MethodGet, "/public/characters/shade", "", false)
	assert.Equal(t, http.StatusOK, code)

	code, payload = do(t, router, http.MethodGet, "/public/characters/spark", "", true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Character not found", payload["error"])

	code, _ = do(t, router, http.MethodGet, "/public/characters/ash", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, payload = do(t, router, http.MethodPost, "/author/characters", `{"name":"Orphan"}`, false)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"serie"}, payload["path"])
}
