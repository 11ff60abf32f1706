// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/core/resource/resourcetest"
	"github.com/encre-app/encre/internal/platform/apperr"
)

const author = "author-1"

var defaultLimits = resource.Limits{SeriesPerAuthor: 50, BooksPerSerie: 50, ChaptersPerBook: 50}

// # Fixtures

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *resourcetest.Store
	engine *resource.Engine
}

// newFixture builds an engine over an empty store with a ticking clock and a fixed slug suffix.
func newFixture(t *testing.T, limits resource.Limits) *fixture {
	t.Helper()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	store := resourcetest.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := resource.NewEngine(store, limits, resource.NewBlocklist(), logger,
		resource.WithClock(tick),
		resource.WithSuffix(func() string { return "ab12" }),
	)

	return &fixture{t: t, ctx: context.Background(), store: store, engine: engine}
}

func (f *fixture) create(kind *resource.Kind, parentSlug, title string) string {
	f.t.Helper()
	slug, err := f.engine.Create(f.ctx, kind, resource.CreateInput{AuthorID: author, ParentSlug: parentSlug, Title: title})
	require.NoError(f.t, err)
	return slug
}

func (f *fixture) update(kind *resource.Kind, slug string, input resource.UpdateInput) (string, error) {
	input.AuthorID = author
	input.Slug = slug
	return f.engine.Update(f.ctx, kind, input)
}

func (f *fixture) setStatus(kind *resource.Kind, slug string, status resource.Status) error {
	_, err := f.update(kind, slug, resource.UpdateInput{Status: &status})
	return err
}

func (f *fixture) delete(kind *resource.Kind, slug, confirm string) error {
	_, err := f.engine.Delete(f.ctx, kind, resource.DeleteInput{AuthorID: author, Slug: slug, ConfirmTitle: confirm})
	return err
}

func (f *fixture) swap(kind *resource.Kind, a, b string) error {
	_, err := f.engine.Swap(f.ctx, kind, resource.SwapInput{AuthorID: author, A: a, B: b})
	return err
}

func (f *fixture) get(kind *resource.Kind, slug string) *resource.Resource {
	f.t.Helper()
	row := f.store.BySlug(kind, slug)
	require.NotNil(f.t, row, "no %s with slug %s", kind.Name, slug)
	return row
}

// publishedChapter creates serie/book/chapter and publishes the chapter.
func (f *fixture) publishedChapter(serieTitle, bookTitle, chapterTitle string) (serie, book, chapter string) {
	f.t.Helper()
	serie = f.create(resource.Serie, "", serieTitle)
	book = f.create(resource.Book, serie, bookTitle)
	chapter = f.create(resource.Chapter, book, chapterTitle)
	f.store.SetContent(f.get(resource.Chapter, chapter).ID, "Once upon a time.")
	require.NoError(f.t, f.setStatus(resource.Chapter, chapter, resource.StatusPublished))
	return serie, book, chapter
}

func requireCode(t *testing.T, err error, code string) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func orderSequence(n int) []int {
	orders := make([]int, n)
	for i := range orders {
		orders[i] = i + 1
	}
	return orders
}

// # Create

/*
TestCreate_AppendsAtEnd verifies that new siblings take the next order and start as drafts.
*/
func TestCreate_AppendsAtEnd(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Dragon Saga")
	first := f.create(resource.Book, serie, "First Flight")
	second := f.create(resource.Book, serie, "Second Wind")

	assert.Equal(t, "dragon-saga", serie)
	assert.Equal(t, 1, f.get(resource.Book, first).Order)
	assert.Equal(t, 2, f.get(resource.Book, second).Order)
	assert.Equal(t, resource.StatusDraft, f.get(resource.Book, first).Status)
	assert.Equal(t, resource.VisibilityPrivate, f.get(resource.Serie, serie).Visibility)

	chapter := f.create(resource.Chapter, second, "Prologue")
	row := f.get(resource.Chapter, chapter)
	assert.Equal(t, f.get(resource.Book, second).ID, row.BookID)
	assert.Equal(t, f.get(resource.Serie, serie).ID, row.SerieID)
	assert.Equal(t, 1, row.Order)
}

/*
TestCreate_ParentNotFound verifies that a missing or foreign parent is NOT_FOUND.
*/
func TestCreate_ParentNotFound(t *testing.T) {
	f := newFixture(t, defaultLimits)

	_, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: "nope", Title: "Lost"})
	appErr := requireCode(t, err, apperr.CodeNotFound)
	assert.Equal(t, "Serie not found", appErr.Message)

	serie := f.create(resource.Serie, "", "Mine")
	_, err = f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: "someone-else", ParentSlug: serie, Title: "Theirs"})
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestCreate_Ceiling verifies that the per-scope ceiling rejects at the limit.
*/
func TestCreate_Ceiling(t *testing.T) {
	f := newFixture(t, resource.Limits{SeriesPerAuthor: 5, BooksPerSerie: 2, ChaptersPerBook: 5})

	serieA := f.create(resource.Serie, "", "Serie A")
	serieB := f.create(resource.Serie, "", "Serie B")
	f.create(resource.Book, serieA, "Book One")
	f.create(resource.Book, serieA, "Book Two")

	_, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serieA, Title: "Book Three"})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "You have reached the maximum number of books (2 per serie). You cannot add more books.", appErr.Message)

	// Other series have their own allowance.
	f.create(resource.Book, serieB, "Book Three")

	// Deleted siblings free a slot.
	require.NoError(t, f.delete(resource.Book, "book-one", "Book One"))
	f.create(resource.Book, serieA, "Book Four")
}

/*
TestCreate_DuplicateTitle verifies title uniqueness among live siblings only.
*/
func TestCreate_DuplicateTitle(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	f.create(resource.Book, serie, "Volume")

	_, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serie, Title: "Volume"})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, []string{"title"}, appErr.Path())
	assert.Equal(t, "Book with the same title already exists in this serie.", appErr.Message)

	_, err = f.engine.Create(f.ctx, resource.Serie, resource.CreateInput{AuthorID: author, Title: "Saga"})
	appErr = requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "You already have a serie with the same title", appErr.Message)
}

/*
TestCreate_InvalidTitle verifies shape and blocklist checks before any write.
*/
func TestCreate_InvalidTitle(t *testing.T) {
	f := newFixture(t, defaultLimits)

	cases := map[string]string{
		"too_short":    "A",
		"padded_short": " a ",
		"too_long":     strings.Repeat("x", resource.TitleMaxLen+1),
		"blocked":      "  Admin ",
	}
	for name, title := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.engine.Create(f.ctx, resource.Serie, resource.CreateInput{AuthorID: author, Title: title})
			require.Error(t, err)
			assert.Equal(t, []string{"title"}, apperr.As(err).Path())
		})
	}
	assert.Empty(t, f.store.Writes)
}

/*
TestCreate_TrimsTitle verifies that surrounding whitespace is never stored.
*/
func TestCreate_TrimsTitle(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "  Dragon Saga  ")
	assert.Equal(t, "dragon-saga", serie)
	assert.Equal(t, "Dragon Saga", f.get(resource.Serie, serie).Title)

	_, err := f.engine.Create(f.ctx, resource.Serie, resource.CreateInput{AuthorID: author, Title: "Dragon Saga "})
	requireCode(t, err, apperr.CodeBadRequest)

	f.store.ResetWrites()
	padded := " Dragon Saga\t"
	slug, err := f.update(resource.Serie, serie, resource.UpdateInput{Title: &padded})
	require.NoError(t, err)
	assert.Equal(t, serie, slug)
	assert.Empty(t, f.store.Writes)

	renamed := "  Ember Saga "
	slug, err = f.update(resource.Serie, serie, resource.UpdateInput{Title: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "ember-saga", slug)
	assert.Equal(t, "Ember Saga", f.get(resource.Serie, slug).Title)
}

/*
TestCreate_LocksScope verifies that create and delete lock the sibling list owner before counting.
*/
func TestCreate_LocksScope(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	serieID := f.get(resource.Serie, serie).ID
	assert.Equal(t, []string{"core.author " + author}, f.store.Locks)

	f.store.Locks = nil
	book := f.create(resource.Book, serie, "Volume")
	assert.Equal(t, []string{"core.serie " + serieID}, f.store.Locks)

	f.store.Locks = nil
	require.NoError(t, f.delete(resource.Book, book, "Volume"))
	assert.Equal(t, []string{"core.serie " + serieID}, f.store.Locks)

	f.store.ResetWrites()
	f.store.FailOn["LockScope"] = errors.New("lock timeout")
	_, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serie, Title: "Second"})
	require.Error(t, err)
	assert.Empty(t, f.store.Writes)
	assert.Equal(t, []int{}, f.store.LiveOrders(resource.Book, serieID))
}

// # Cancellation Lock

/*
TestCancellationLock verifies that cancelled ancestors block create and update of descendants.
*/
func TestCancellationLock(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	book := f.create(resource.Book, serie, "Volume")
	chapter := f.create(resource.Chapter, book, "Opening")

	require.NoError(t, f.setStatus(resource.Book, book, resource.StatusCancelled))

	_, err := f.engine.Create(f.ctx, resource.Chapter, resource.CreateInput{AuthorID: author, ParentSlug: book, Title: "Second"})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Book is cancelled. You cannot add a chapter to a cancelled book.", appErr.Message)

	title := "Renamed"
	_, err = f.update(resource.Chapter, chapter, resource.UpdateInput{Title: &title})
	appErr = requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Book is cancelled. You cannot update a chapter in a cancelled book.", appErr.Message)

	_, err = f.update(resource.Book, book, resource.UpdateInput{Title: &title})
	appErr = requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Book is cancelled. You cannot update a cancelled book.", appErr.Message)

	// Delete stays allowed.
	require.NoError(t, f.delete(resource.Chapter, chapter, "Opening"))
}

/*
TestCancellationLock_Serie verifies that a cancelled serie locks grandchildren.
*/
func TestCancellationLock_Serie(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	book := f.create(resource.Book, serie, "Volume")
	require.NoError(t, f.setStatus(resource.Serie, serie, resource.StatusCancelled))

	_, err := f.engine.Create(f.ctx, resource.Chapter, resource.CreateInput{AuthorID: author, ParentSlug: book, Title: "Opening"})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Serie is cancelled. You cannot add a chapter to a cancelled serie.", appErr.Message)

	_, err = f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serie, Title: "Another"})
	appErr = requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Serie is cancelled. You cannot add a book to a cancelled serie.", appErr.Message)
}

// # Status Lifecycle

/*
TestStatusGraph verifies the transition table, including terminal cancelled.
*/
func TestStatusGraph(t *testing.T) {
	f := newFixture(t, defaultLimits)
	_, _, chapter := f.publishedChapter("Saga", "Volume", "Opening")

	other := f.create(resource.Chapter, "volume", "Draft One")
	requireCode(t, f.setStatus(resource.Chapter, other, resource.StatusArchived), apperr.CodeBadRequest)

	// published -> archived -> published
	require.NoError(t, f.setStatus(resource.Chapter, chapter, resource.StatusArchived))
	require.NoError(t, f.setStatus(resource.Chapter, chapter, resource.StatusPublished))

	// Same status is a no-op and writes nothing.
	f.store.ResetWrites()
	require.NoError(t, f.setStatus(resource.Chapter, chapter, resource.StatusPublished))
	assert.Empty(t, f.store.Writes)

	// cancelled has no exits; further updates are rejected outright.
	require.NoError(t, f.setStatus(resource.Chapter, chapter, resource.StatusCancelled))
	for _, status := range resource.Statuses {
		err := f.setStatus(resource.Chapter, chapter, status)
		requireCode(t, err, apperr.CodeBadRequest)
	}
}

/*
TestStatusGraph_DeletedIsUnreachable verifies that update never moves a row to deleted.
*/
func TestStatusGraph_DeletedIsUnreachable(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")

	err := f.setStatus(resource.Serie, serie, resource.StatusDeleted)
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Invalid status", appErr.Message)
	assert.Equal(t, []string{"status"}, appErr.Path())
	assert.True(t, f.get(resource.Serie, serie).Live())
}

/*
TestCanTransition spot-checks the transition table.
*/
func TestCanTransition(t *testing.T) {
	assert.True(t, resource.CanTransition(resource.StatusDraft, resource.StatusPublished))
	assert.True(t, resource.CanTransition(resource.StatusDraft, resource.StatusComingSoon))
	assert.True(t, resource.CanTransition(resource.StatusComingSoon, resource.StatusCancelled))
	assert.True(t, resource.CanTransition(resource.StatusPublished, resource.StatusArchived))
	assert.False(t, resource.CanTransition(resource.StatusDraft, resource.StatusArchived))
	assert.False(t, resource.CanTransition(resource.StatusArchived, resource.StatusDraft))
	assert.False(t, resource.CanTransition(resource.StatusCancelled, resource.StatusDraft))
	assert.False(t, resource.CanTransition(resource.StatusPublished, resource.StatusDeleted))
}

/*
TestPublishPrecondition_Book verifies that a book needs one published chapter.
*/
func TestPublishPrecondition_Book(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	book := f.create(resource.Book, serie, "Volume")
	chapter := f.create(resource.Chapter, book, "Opening")

	err := f.setStatus(resource.Book, book, resource.StatusPublished)
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Contains(t, appErr.Message, "no published chapters")
	assert.Equal(t, resource.StatusDraft, f.get(resource.Book, book).Status)

	f.store.SetContent(f.get(resource.Chapter, chapter).ID, "Text")
	require.NoError(t, f.setStatus(resource.Chapter, chapter, resource.StatusPublished))
	require.NoError(t, f.setStatus(resource.Book, book, resource.StatusPublished))
	assert.Equal(t, resource.StatusPublished, f.get(resource.Book, book).Status)
}

/*
TestPublishPrecondition_Chapter verifies that blank content blocks publishing.
*/
func TestPublishPrecondition_Chapter(t *testing.T) {
	f := newFixture(t, defaultLimits)

	serie := f.create(resource.Serie, "", "Saga")
	book := f.create(resource.Book, serie, "Volume")
	chapter := f.create(resource.Chapter, book, "Opening")
	f.store.SetContent(f.get(resource.Chapter, chapter).ID, "   \n\t")

	err := f.setStatus(resource.Chapter, chapter, resource.StatusPublished)
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Contains(t, appErr.Message, "no content")
}

/*
TestPublishPrecondition_Serie verifies that a serie needs a published book and chapter.
*/
func TestPublishPrecondition_Serie(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie, book, _ := f.publishedChapter("Saga", "Volume", "Opening")

	err := f.setStatus(resource.Serie, serie, resource.StatusPublished)
	requireCode(t, err, apperr.CodeBadRequest)

	require.NoError(t, f.setStatus(resource.Book, book, resource.StatusPublished))
	require.NoError(t, f.setStatus(resource.Serie, serie, resource.StatusPublished))
}

// # Update

/*
TestUpdate_BlockedTitle verifies that a blocked title fails on the title path and persists nothing.
*/
func TestUpdate_BlockedTitle(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	before := f.get(resource.Serie, serie)
	f.store.ResetWrites()

	title := "Dashboard"
	description := "changed"
	_, err := f.update(resource.Serie, serie, resource.UpdateInput{Title: &title, Description: &description})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, []string{"title"}, appErr.Path())

	assert.Equal(t, before, f.get(resource.Serie, serie))
	assert.Empty(t, f.store.Writes)
}

/*
TestUpdate_TitleChangesSlug verifies that a new title yields a new slug and an unchanged one does not.
*/
func TestUpdate_TitleChangesSlug(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")

	title := "Saga Reborn"
	slug, err := f.update(resource.Serie, serie, resource.UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "saga-reborn", slug)
	assert.Nil(t, f.store.BySlug(resource.Serie, "saga"))

	same := "Saga Reborn"
	slug, err = f.update(resource.Serie, slug, resource.UpdateInput{Title: &same})
	require.NoError(t, err)
	assert.Equal(t, "saga-reborn", slug)
}

/*
TestUpdate_Visibility verifies that visibility is serie-only and validated.
*/
func TestUpdate_Visibility(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	book := f.create(resource.Book, serie, "Volume")

	public := resource.VisibilityPublic
	_, err := f.update(resource.Serie, serie, resource.UpdateInput{Visibility: &public})
	require.NoError(t, err)
	assert.Equal(t, resource.VisibilityPublic, f.get(resource.Serie, serie).Visibility)

	_, err = f.update(resource.Book, book, resource.UpdateInput{Visibility: &public})
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, []string{"visibility"}, appErr.Path())

	bogus := resource.Visibility("everyone")
	_, err = f.update(resource.Serie, serie, resource.UpdateInput{Visibility: &bogus})
	require.Error(t, err)
}

// # Swap

/*
TestSwap_Involutive verifies that swapping twice restores both orders.
*/
func TestSwap_Involutive(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	a := f.create(resource.Book, serie, "Alpha")
	f.create(resource.Book, serie, "Beta")
	c := f.create(resource.Book, serie, "Gamma")

	require.NoError(t, f.swap(resource.Book, a, c))
	assert.Equal(t, 3, f.get(resource.Book, a).Order)
	assert.Equal(t, 1, f.get(resource.Book, c).Order)

	require.NoError(t, f.swap(resource.Book, a, c))
	assert.Equal(t, 1, f.get(resource.Book, a).Order)
	assert.Equal(t, 3, f.get(resource.Book, c).Order)
}

/*
TestSwap_SentinelSequence verifies the three writes and the echoed slugs.
*/
func TestSwap_SentinelSequence(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	a := f.create(resource.Book, serie, "Alpha")
	b := f.create(resource.Book, serie, "Beta")
	idA, idB := f.get(resource.Book, a).ID, f.get(resource.Book, b).ID
	f.store.ResetWrites()

	result, err := f.engine.Swap(f.ctx, resource.Book, resource.SwapInput{AuthorID: author, A: b, B: a})
	require.NoError(t, err)
	assert.Equal(t, resource.SwapResult{A: b, B: a}, result)

	assert.Equal(t, []string{
		fmt.Sprintf("SetOrder book %s -2147483648", idB),
		fmt.Sprintf("SetOrder book %s 2", idA),
		fmt.Sprintf("SetOrder book %s 1", idB),
	}, f.store.Writes)
}

/*
TestSwap_SameSlug verifies that a self swap runs harmlessly.
*/
func TestSwap_SameSlug(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	a := f.create(resource.Book, serie, "Alpha")

	require.NoError(t, f.swap(resource.Book, a, a))
	assert.Equal(t, 1, f.get(resource.Book, a).Order)
}

/*
TestSwap_CrossParent verifies that siblings of different parents cannot swap.
*/
func TestSwap_CrossParent(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serieA := f.create(resource.Serie, "", "Serie A")
	serieB := f.create(resource.Serie, "", "Serie B")
	book1 := f.create(resource.Book, serieA, "Book One")
	book2 := f.create(resource.Book, serieB, "Book Two")

	err := f.swap(resource.Book, book1, book2)
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Books are not in the same serie", appErr.Message)
	assert.Equal(t, 1, f.get(resource.Book, book1).Order)
	assert.Equal(t, 1, f.get(resource.Book, book2).Order)
}

/*
TestSwap_NotFound verifies missing, deleted and foreign slugs.
*/
func TestSwap_NotFound(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	a := f.create(resource.Book, serie, "Alpha")
	b := f.create(resource.Book, serie, "Beta")
	require.NoError(t, f.delete(resource.Book, b, "Beta"))

	for _, other := range []string{"missing", b} {
		err := f.swap(resource.Book, a, other)
		appErr := requireCode(t, err, apperr.CodeNotFound)
		assert.Equal(t, "One of the books (or both) not found", appErr.Message)
	}

	_, err := f.engine.Swap(f.ctx, resource.Book, resource.SwapInput{AuthorID: "intruder", A: a, B: a})
	requireCode(t, err, apperr.CodeNotFound)
}

// # Delete

/*
TestDelete_ClosesGap verifies that only higher siblings shift down by one.
*/
func TestDelete_ClosesGap(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")

	titles := []string{"One", "Two", "Three", "Four", "Five"}
	slugs := make([]string, len(titles))
	for i, title := range titles {
		slugs[i] = f.create(resource.Book, serie, title)
	}

	slug, err := f.engine.Delete(f.ctx, resource.Book, resource.DeleteInput{AuthorID: author, Slug: slugs[2], ConfirmTitle: "Three"})
	require.NoError(t, err)
	assert.Equal(t, "three", slug)

	assert.Equal(t, 1, f.get(resource.Book, slugs[0]).Order)
	assert.Equal(t, 2, f.get(resource.Book, slugs[1]).Order)
	assert.Equal(t, 3, f.get(resource.Book, slugs[3]).Order)
	assert.Equal(t, 4, f.get(resource.Book, slugs[4]).Order)

	deleted := f.get(resource.Book, slugs[2])
	assert.Equal(t, resource.StatusDeleted, deleted.Status)
	assert.Equal(t, "book", deleted.DeletionReason)
	assert.NotNil(t, deleted.DeletedAt)
}

/*
TestDelete_TombstoneOrders verifies that tombstones descend by deletion time.
*/
func TestDelete_TombstoneOrders(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	f.create(resource.Book, serie, "One")
	f.create(resource.Book, serie, "Two")
	f.create(resource.Book, serie, "Three")

	require.NoError(t, f.delete(resource.Book, "two", "Two"))
	require.NoError(t, f.delete(resource.Book, "one", "One"))
	require.NoError(t, f.delete(resource.Book, "three", "Three"))

	assert.Equal(t, -1, f.get(resource.Book, "two").Order)
	assert.Equal(t, -2, f.get(resource.Book, "one").Order)
	assert.Equal(t, -3, f.get(resource.Book, "three").Order)
}

/*
TestDelete_ConfirmationGate verifies the exact, case-sensitive title confirmation.
*/
func TestDelete_ConfirmationGate(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Dragon Saga")
	f.store.ResetWrites()

	for _, confirm := range []string{"dragon saga", "Dragon Saga ", ""} {
		err := f.delete(resource.Serie, serie, confirm)
		appErr := requireCode(t, err, apperr.CodeBadRequest)
		assert.Equal(t, "Serie title does not match", appErr.Message)
	}

	assert.True(t, f.get(resource.Serie, serie).Live())
	assert.Empty(t, f.store.Writes)

	requireCode(t, f.delete(resource.Serie, "missing", "x"), apperr.CodeNotFound)
}

/*
TestDelete_SerieCascade verifies that books, chapters and characters follow the serie.
*/
func TestDelete_SerieCascade(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")
	other := f.create(resource.Serie, "", "Other")
	book1 := f.create(resource.Book, serie, "Volume One")
	book2 := f.create(resource.Book, serie, "Volume Two")
	ch1 := f.create(resource.Chapter, book1, "Opening")
	ch2 := f.create(resource.Chapter, book2, "Closing")
	keep := f.create(resource.Book, other, "Survivor")

	serieID := f.get(resource.Serie, serie).ID
	f.store.PutCharacter("character-1", serieID)

	require.NoError(t, f.delete(resource.Serie, serie, "Saga"))

	for _, row := range []*resource.Resource{
		f.get(resource.Book, book1), f.get(resource.Book, book2),
		f.get(resource.Chapter, ch1), f.get(resource.Chapter, ch2),
		f.store.Character("character-1"),
	} {
		assert.Equal(t, resource.StatusDeleted, row.Status)
		assert.Equal(t, "serie", row.DeletionReason)
		assert.NotNil(t, row.DeletedAt)
	}

	assert.True(t, f.get(resource.Book, keep).Live())
	assert.Equal(t, 1, f.get(resource.Serie, other).Order)
}

/*
TestDelete_PartialFailureRollsBack verifies that a failing step leaves the whole tree live.
*/
func TestDelete_PartialFailureRollsBack(t *testing.T) {
	for _, step := range []string{"MarkDeleted", "CascadeDelete", "CloseGap"} {
		t.Run(step, func(t *testing.T) {
			f := newFixture(t, defaultLimits)
			serie := f.create(resource.Serie, "", "Saga")
			f.create(resource.Serie, "", "After")
			book := f.create(resource.Book, serie, "Volume")
			chapter := f.create(resource.Chapter, book, "Opening")

			f.store.FailOn[step] = errors.New("connection reset")
			err := f.delete(resource.Serie, serie, "Saga")
			requireCode(t, err, apperr.CodeInternal)

			assert.True(t, f.get(resource.Serie, serie).Live())
			assert.True(t, f.get(resource.Book, book).Live())
			assert.True(t, f.get(resource.Chapter, chapter).Live())
			assert.Equal(t, 2, f.get(resource.Serie, "after").Order)
		})
	}
}

// # Slugs

/*
TestSlugRecycling verifies that a new resource reclaims the slug of a deleted one.
*/
func TestSlugRecycling(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")

	first := f.create(resource.Book, serie, "My Book")
	firstID := f.get(resource.Book, first).ID
	require.Equal(t, "my-book", first)
	require.NoError(t, f.delete(resource.Book, first, "My Book"))

	second := f.create(resource.Book, serie, "My Book")
	assert.Equal(t, "my-book", second)
	assert.NotEqual(t, firstID, f.get(resource.Book, second).ID)

	recycled := f.store.Row(resource.Book, firstID)
	assert.Regexp(t, `^my-book-deleted-[a-z0-9]{4}$`, recycled.Slug)
	assert.Equal(t, resource.StatusDeleted, recycled.Status)
}

/*
TestSlugRecycling_SuffixCollision verifies that a taken recycled slug draws a new suffix.
*/
func TestSlugRecycling_SuffixCollision(t *testing.T) {
	f := newFixture(t, defaultLimits)
	suffixes := []string{"aaaa", "aaaa", "bbbb"}
	f.engine = resource.NewEngine(f.store, defaultLimits, nil, nil, resource.WithSuffix(func() string {
		next := suffixes[0]
		suffixes = suffixes[1:]
		return next
	}))

	f.create(resource.Serie, "", "Saga")
	require.NoError(t, f.delete(resource.Serie, "saga", "Saga"))
	f.create(resource.Serie, "", "Saga")
	require.NoError(t, f.delete(resource.Serie, "saga", "Saga"))
	f.create(resource.Serie, "", "Saga")

	assert.NotNil(t, f.store.BySlug(resource.Serie, "saga-deleted-aaaa"))
	assert.NotNil(t, f.store.BySlug(resource.Serie, "saga-deleted-bbbb"))
	assert.True(t, f.get(resource.Serie, "saga").Live())
}

/*
TestSlugCollision_Counter verifies the -n suffix search across scopes and the exhausted budget.
*/
func TestSlugCollision_Counter(t *testing.T) {
	f := newFixture(t, defaultLimits)

	var slugs []string
	for i := range 10 {
		serie := f.create(resource.Serie, "", fmt.Sprintf("Serie %d", i))
		slugs = append(slugs, f.create(resource.Book, serie, "Saga"))
	}
	assert.Equal(t, "saga", slugs[0])
	assert.Equal(t, "saga-1", slugs[1])
	assert.Equal(t, "saga-9", slugs[9])

	serie := f.create(resource.Serie, "", "Serie 10")
	_, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serie, Title: "Saga"})
	requireCode(t, err, apperr.CodeInternal)
}

/*
TestSlug_EmptyBase verifies that a title with no slug characters falls back to the kind name.
*/
func TestSlug_EmptyBase(t *testing.T) {
	f := newFixture(t, defaultLimits)
	assert.Equal(t, "serie", f.create(resource.Serie, "", "!!!"))
	assert.Equal(t, "serie-1", f.create(resource.Serie, "", "???"))
}

// # Listing

/*
TestList verifies filtering, sorting and paging of live rows.
*/
func TestList(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serieA := f.create(resource.Serie, "", "Serie A")
	serieB := f.create(resource.Serie, "", "Serie B")
	f.create(resource.Book, serieA, "Zeta")
	f.create(resource.Book, serieA, "Alpha")
	f.create(resource.Book, serieB, "Mu")
	f.create(resource.Book, serieB, "Gone")
	require.NoError(t, f.delete(resource.Book, "gone", "Gone"))

	rows, total, err := f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{SortField: resource.SortByTitle})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, slugsOf(rows))

	rows, total, err = f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{ParentSlugs: []string{serieA}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"zeta", "alpha"}, slugsOf(rows))

	rows, _, err = f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{Query: "ALP", CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, slugsOf(rows))

	rows, total, err = f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{SortField: resource.SortByTitle, Descending: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"mu"}, slugsOf(rows))

	_, _, err = f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{SortField: "slug"})
	requireCode(t, err, apperr.CodeBadRequest)

	_, _, err = f.engine.List(f.ctx, resource.Book, author, resource.ListFilter{Statuses: []resource.Status{resource.StatusDeleted}})
	requireCode(t, err, apperr.CodeBadRequest)
}

// # Reader and Staff Reads

// exposeSerie sets visibility and status on one serie of authorID.
func (f *fixture) exposeSerie(authorID, slug string, visibility resource.Visibility, status resource.Status) {
	f.t.Helper()
	input := resource.UpdateInput{AuthorID: authorID, Slug: slug, Visibility: &visibility}
	if status != resource.StatusDraft {
		input.Status = &status
	}
	_, err := f.engine.Update(f.ctx, resource.Serie, input)
	require.NoError(f.t, err)
}

func (f *fixture) readerCatalog() {
	f.t.Helper()
	for _, s := range []struct {
		title      string
		visibility resource.Visibility
		status     resource.Status
	}{
		{"Open Saga", resource.VisibilityPublic, resource.StatusComingSoon},
		{"Members Saga", resource.VisibilityMembers, resource.StatusComingSoon},
		{"Draft Saga", resource.VisibilityPublic, resource.StatusDraft},
		{"Hidden Saga", resource.VisibilityUnlisted, resource.StatusComingSoon},
	} {
		f.exposeSerie(author, f.create(resource.Serie, "", s.title), s.visibility, s.status)
	}

	foreign, err := f.engine.Create(f.ctx, resource.Serie, resource.CreateInput{AuthorID: "author-2", Title: "Foreign Saga"})
	require.NoError(f.t, err)
	f.exposeSerie("author-2", foreign, resource.VisibilityPublic, resource.StatusComingSoon)
}

/*
TestBrowse verifies that reader listings span authors and honor visibility and status.
*/
func TestBrowse(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.readerCatalog()
	byTitle := resource.ListFilter{SortField: resource.SortByTitle}

	rows, total, err := f.engine.Browse(f.ctx, resource.Serie, resource.Readers(false), byTitle)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"foreign-saga", "open-saga"}, slugsOf(rows))

	rows, _, err = f.engine.Browse(f.ctx, resource.Serie, resource.Readers(true), byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"foreign-saga", "members-saga", "open-saga"}, slugsOf(rows))

	rows, _, err = f.engine.Browse(f.ctx, resource.Serie, resource.Staff, byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft-saga", "foreign-saga", "hidden-saga", "members-saga", "open-saga"}, slugsOf(rows))

	// Asking readers for drafts yields nothing rather than widening the audience.
	drafts := byTitle
	drafts.Statuses = []resource.Status{resource.StatusDraft}
	rows, total, err = f.engine.Browse(f.ctx, resource.Serie, resource.Readers(true), drafts)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)

	unlisted := byTitle
	unlisted.Visibilities = []resource.Visibility{resource.VisibilityUnlisted}
	rows, _, err = f.engine.Browse(f.ctx, resource.Serie, resource.Staff, unlisted)
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden-saga"}, slugsOf(rows))

	unknown := byTitle
	unknown.Visibilities = []resource.Visibility{"secret"}
	_, _, err = f.engine.Browse(f.ctx, resource.Serie, resource.Staff, unknown)
	requireCode(t, err, apperr.CodeBadRequest)
}

/*
TestLookup verifies direct reads by slug for readers and staff.
*/
func TestLookup(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.readerCatalog()

	cases := []struct {
		audience resource.Audience
		slug     string
		visible  bool
	}{
		{resource.Readers(false), "open-saga", true},
		{resource.Readers(false), "foreign-saga", true},
		{resource.Readers(false), "hidden-saga", true},
		{resource.Readers(false), "members-saga", false},
		{resource.Readers(true), "members-saga", true},
		{resource.Readers(true), "draft-saga", false},
		{resource.Staff, "draft-saga", true},
		{resource.Staff, "missing", false},
	}
	for _, tc := range cases {
		found, err := f.engine.Lookup(f.ctx, resource.Serie, tc.audience, tc.slug)
		if tc.visible {
			require.NoError(t, err, tc.slug)
			assert.Equal(t, tc.slug, found.Slug)
		} else {
			appErr := requireCode(t, err, apperr.CodeNotFound)
			assert.Equal(t, "Serie not found", appErr.Message)
		}
	}

	require.NoError(t, f.delete(resource.Serie, "open-saga", "Open Saga"))
	_, err := f.engine.Lookup(f.ctx, resource.Serie, resource.Staff, "open-saga")
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestAttachable verifies the cancellation lock for children added outside the engine.
*/
func TestAttachable(t *testing.T) {
	f := newFixture(t, defaultLimits)
	serie := f.create(resource.Serie, "", "Saga")

	parent, err := f.engine.Attachable(f.ctx, resource.Serie, author, serie, "character")
	require.NoError(t, err)
	assert.Equal(t, f.get(resource.Serie, serie).ID, parent.ID)

	_, err = f.engine.Attachable(f.ctx, resource.Serie, "author-2", serie, "character")
	requireCode(t, err, apperr.CodeNotFound)

	require.NoError(t, f.setStatus(resource.Serie, serie, resource.StatusCancelled))
	_, err = f.engine.Attachable(f.ctx, resource.Serie, author, serie, "character")
	appErr := requireCode(t, err, apperr.CodeBadRequest)
	assert.Equal(t, "Serie is cancelled. You cannot add a character to a cancelled serie.", appErr.Message)
}

func slugsOf(rows []*resource.Resource) []string {
	slugs := make([]string, len(rows))
	for i, row := range rows {
		slugs[i] = row.Slug
	}
	return slugs
}

// # Density

/*
TestDensity_RandomOperations runs a seeded mix of operations and checks that
live orders stay exactly 1..N after each step.
*/
func TestDensity_RandomOperations(t *testing.T) {
	f := newFixture(t, resource.Limits{SeriesPerAuthor: 10, BooksPerSerie: 12, ChaptersPerBook: 10})
	random := rand.New(rand.NewPCG(7, 11))

	serieA := f.create(resource.Serie, "", "Serie A")
	serieB := f.create(resource.Serie, "", "Serie B")
	series := []string{serieA, serieB}

	live := map[string][]string{serieA: nil, serieB: nil}
	titles := map[string]string{}
	created := 0

	for step := range 200 {
		serie := series[random.IntN(len(series))]
		books := live[serie]

		switch op := random.IntN(4); {
		case op == 0 || len(books) < 2:
			created++
			title := fmt.Sprintf("Book %d", created)
			slug, err := f.engine.Create(f.ctx, resource.Book, resource.CreateInput{AuthorID: author, ParentSlug: serie, Title: title})
			if err != nil {
				requireCode(t, err, apperr.CodeBadRequest)
				break
			}
			live[serie] = append(books, slug)
			titles[slug] = title

		case op == 1:
			a, b := books[random.IntN(len(books))], books[random.IntN(len(books))]
			require.NoError(t, f.swap(resource.Book, a, b), "step %d", step)

		case op == 2:
			victim := books[random.IntN(len(books))]
			require.NoError(t, f.delete(resource.Book, victim, titles[victim]), "step %d", step)
			live[serie] = slices.DeleteFunc(books, func(s string) bool { return s == victim })

		default:
			target := books[random.IntN(len(books))]
			created++
			title := fmt.Sprintf("Renamed %d", created)
			slug, err := f.update(resource.Book, target, resource.UpdateInput{Title: &title})
			require.NoError(t, err, "step %d", step)
			live[serie][slices.Index(books, target)] = slug
			delete(titles, target)
			titles[slug] = title
		}

		for _, scope := range series {
			serieID := f.get(resource.Serie, scope).ID
			orders := f.store.LiveOrders(resource.Book, serieID)
			require.Equal(t, orderSequence(len(live[scope])), orders, "step %d serie %s", step, scope)
		}
	}
}
