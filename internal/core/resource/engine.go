// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/ctxutil"
	"github.com/encre-app/encre/internal/platform/database/schema"
	"github.com/encre-app/encre/pkg/uuid"
)

// swapSentinel parks a row during a swap. Live orders are always positive and
// tombstones are small negatives, so it never collides.
const swapSentinel = math.MinInt32

// Engine enforces ordering, lifecycle and deletion rules for every [Kind].
//
// # Failure semantics
//
// Business rules are checked before any write. Each mutation then runs in a
// single transaction detached from request cancellation, so an abandoned
// request still commits or rolls back as a whole.
type Engine struct {
	store     Store
	limits    Limits
	blocklist *Blocklist
	logger    *slog.Logger
	now       func() time.Time
	suffix    func() string
}

// Option customizes an [Engine].
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(engine *Engine) { engine.now = now }
}

// WithSuffix replaces the random suffix generator used by slug recycling.
func WithSuffix(suffix func() string) Option {
	return func(engine *Engine) { engine.suffix = suffix }
}

// NewEngine creates the engine.
func NewEngine(store Store, limits Limits, blocklist *Blocklist, logger *slog.Logger, options ...Option) *Engine {
	if blocklist == nil {
		blocklist = NewBlocklist()
	}
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		store:     store,
		limits:    limits,
		blocklist: blocklist,
		logger:    logger,
		now:       time.Now,
		suffix:    randomSuffix,
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// log prefers the request-scoped logger so entries carry the request ID.
func (engine *Engine) log(ctx context.Context) *slog.Logger {
	if logger := ctxutil.GetLogger(ctx); logger != slog.Default() {
		return logger
	}
	return engine.logger
}

// # Reads

// Get returns the author's live resource with slug.
func (engine *Engine) Get(ctx context.Context, kind *Kind, authorID, slug string) (*Resource, error) {
	found, err := engine.store.FindLive(ctx, kind, authorID, slug, false)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errNotFound(kind)
	}
	return found, nil
}

// List returns one page of the author's live resources and the total count.
func (engine *Engine) List(ctx context.Context, kind *Kind, authorID string, filter ListFilter) ([]*Resource, int, error) {
	filter, err := checkFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return engine.store.List(ctx, kind, authorID, filter)
}

// Browse lists live resources of every author that audience may see.
func (engine *Engine) Browse(ctx context.Context, kind *Kind, audience Audience, filter ListFilter) ([]*Resource, int, error) {
	filter, err := checkFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	statuses, ok := narrow(filter.Statuses, audience.Statuses)
	if !ok {
		return []*Resource{}, 0, nil
	}
	filter.Statuses = statuses

	if kind.HasVisibility {
		visibilities, ok := narrow(filter.Visibilities, audience.Visibilities)
		if !ok {
			return []*Resource{}, 0, nil
		}
		filter.Visibilities = visibilities
	}

	return engine.store.List(ctx, kind, "", filter)
}

// Lookup returns the live resource with slug, whoever owns it, when audience
// may see it. Unlisted series are reachable here even though Browse skips them.
func (engine *Engine) Lookup(ctx context.Context, kind *Kind, audience Audience, slug string) (*Resource, error) {
	found, err := engine.store.FindBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}
	if found == nil || !found.Live() {
		return nil, errNotFound(kind)
	}

	if len(audience.Statuses) > 0 && !slices.Contains(audience.Statuses, found.Status) {
		return nil, errNotFound(kind)
	}
	if kind.HasVisibility && len(audience.Visibilities) > 0 {
		visible := slices.Contains(audience.Visibilities, found.Visibility) || found.Visibility == VisibilityUnlisted
		if !visible {
			return nil, errNotFound(kind)
		}
	}

	return found, nil
}

// checkFilter defaults the sort field and rejects unknown enum values.
func checkFilter(filter ListFilter) (ListFilter, error) {
	switch filter.SortField {
	case "":
		filter.SortField = SortByOrder
	case SortByOrder, SortByCreatedAt, SortByTitle:
	default:
		return filter, apperr.BadRequestAt("sort", "Invalid sort field")
	}

	for _, status := range filter.Statuses {
		if !slices.Contains(Statuses, status) {
			return filter, errInvalidStatus()
		}
	}
	for _, visibility := range filter.Visibilities {
		if err := validateVisibility(visibility); err != nil {
			return filter, err
		}
	}

	return filter, nil
}

// # Create

// Create adds a resource at the end of its sibling list and returns its slug.
func (engine *Engine) Create(ctx context.Context, kind *Kind, input CreateInput) (string, error) {

	// 1. Shape and blocklist
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(engine.blocklist, title); err != nil {
		return "", err
	}
	if err := validateDescription(input.Description); err != nil {
		return "", err
	}

	created := &Resource{
		AuthorID:    input.AuthorID,
		Title:       title,
		Description: input.Description,
		Status:      StatusDraft,
	}
	if kind.HasVisibility {
		created.Visibility = VisibilityPrivate
	}

	// 2. Parent and cancellation lock
	if kind.Parent != nil {
		parent, err := engine.Attachable(ctx, kind.Parent, input.AuthorID, input.ParentSlug, kind.Name)
		if err != nil {
			return "", err
		}
		kind.link(created, parent)
	}

	scopeID := kind.ScopeOf(created)

	txCtx := context.WithoutCancel(ctx)
	err := engine.store.InTx(txCtx, func(q Queries) error {

		// 3. Serialize with every other create or delete in the scope
		if err := q.LockScope(txCtx, kind, scopeID); err != nil {
			return err
		}

		// 4. Ceiling
		live, err := q.CountLive(txCtx, kind, scopeID)
		if err != nil {
			return err
		}
		if limit := kind.ceiling(engine.limits); live >= limit {
			return errCeiling(kind, limit)
		}

		// 5. Title uniqueness among live siblings
		taken, err := q.TitleTaken(txCtx, kind, scopeID, title)
		if err != nil {
			return err
		}
		if taken {
			return errDuplicateTitle(kind)
		}

		// 6. Write
		resolved, err := engine.resolveSlug(txCtx, q, kind, title, "")
		if err != nil {
			return err
		}

		now := engine.now()
		created.ID = uuid.New()
		created.Slug = resolved
		created.Order = live + 1
		created.CreatedAt = now
		created.UpdatedAt = now

		return q.Insert(txCtx, kind, created)
	})
	if err != nil {
		return "", err
	}

	engine.log(ctx).InfoContext(ctx, kind.Name+"_created",
		slog.String("slug", created.Slug),
		slog.Int("order", created.Order),
	)

	return created.Slug, nil
}

// # Update

// Update changes title, description, status or visibility and returns the
// possibly new slug. Nothing is written when any check fails.
func (engine *Engine) Update(ctx context.Context, kind *Kind, input UpdateInput) (string, error) {
	// 1. Cancellation lock
	current, err := engine.Writable(ctx, kind, input.AuthorID, input.Slug)
	if err != nil {
		return "", err
	}

	next := *current
	dirty := false

	// 2. Title
	var title string
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	titleChanged := input.Title != nil && title != current.Title
	if titleChanged {
		if err := validateTitle(engine.blocklist, title); err != nil {
			return "", err
		}
		next.Title = title
		dirty = true
	}

	// 3. Description
	if input.Description != nil && *input.Description != current.Description {
		if err := validateDescription(*input.Description); err != nil {
			return "", err
		}
		next.Description = *input.Description
		dirty = true
	}

	// 4. Visibility
	if input.Visibility != nil {
		if !kind.HasVisibility {
			return "", apperr.BadRequestAt(fieldVisibility, "Visibility can only be set on a serie")
		}
		if err := validateVisibility(*input.Visibility); err != nil {
			return "", err
		}
		if *input.Visibility != current.Visibility {
			next.Visibility = *input.Visibility
			dirty = true
		}
	}

	// 5. Status and publish precondition
	statusChanged, err := checkTransition(current.Status, input.Status)
	if err != nil {
		return "", err
	}
	if statusChanged {
		if *input.Status == StatusPublished {
			if err := engine.checkPublishable(ctx, kind, current); err != nil {
				return "", err
			}
		}
		next.Status = *input.Status
		dirty = true
	}

	if !dirty {
		return current.Slug, nil
	}

	// 6. Write
	txCtx := context.WithoutCancel(ctx)
	err = engine.store.InTx(txCtx, func(q Queries) error {
		if titleChanged {
			resolved, err := engine.resolveSlug(txCtx, q, kind, next.Title, current.ID)
			if err != nil {
				return err
			}
			next.Slug = resolved
		}
		next.UpdatedAt = engine.now()
		return q.Save(txCtx, kind, &next)
	})
	if err != nil {
		return "", err
	}

	engine.log(ctx).InfoContext(ctx, kind.Name+"_updated",
		slog.String("slug", next.Slug),
		slog.String("previous_slug", current.Slug),
		slog.String("status", string(next.Status)),
	)

	return next.Slug, nil
}

// Writable returns the author's live resource with slug when neither it nor
// any ancestor is cancelled. The resource is checked before its ancestors.
func (engine *Engine) Writable(ctx context.Context, kind *Kind, authorID, slug string) (*Resource, error) {
	current, err := engine.Get(ctx, kind, authorID, slug)
	if err != nil {
		return nil, err
	}

	if current.Status == StatusCancelled {
		return nil, errCancelledSelf(kind)
	}

	ancestors, err := engine.loadAncestors(ctx, kind, current)
	if err != nil {
		return nil, err
	}
	for i, ancestor := range ancestors {
		if ancestor.Status == StatusCancelled {
			return nil, errCancelledAncestorOnUpdate(kind.Ancestors()[i], kind)
		}
	}

	return current, nil
}

// Attachable returns the author's live resource with slug when a child named
// child may be added under it: neither it nor any ancestor is cancelled.
func (engine *Engine) Attachable(ctx context.Context, kind *Kind, authorID, slug, child string) (*Resource, error) {
	parent, err := engine.Get(ctx, kind, authorID, slug)
	if err != nil {
		return nil, err
	}

	if parent.Status == StatusCancelled {
		return nil, errCancelledParentOnCreate(kind, child)
	}

	ancestors, err := engine.loadAncestors(ctx, kind, parent)
	if err != nil {
		return nil, err
	}
	for i, ancestor := range ancestors {
		if ancestor.Status == StatusCancelled {
			return nil, errCancelledParentOnCreate(kind.Ancestors()[i], child)
		}
	}

	return parent, nil
}

// checkPublishable enforces the publish precondition of kind.
func (engine *Engine) checkPublishable(ctx context.Context, kind *Kind, target *Resource) error {
	switch kind.publish {
	case requireContent:
		hasContent, err := engine.store.HasContent(ctx, kind, target.ID)
		if err != nil {
			return err
		}
		if !hasContent {
			return errNotPublishable(kind)
		}

	case requirePublishedChapter:
		chapters, err := engine.store.CountPublished(ctx, Chapter, schema.CoreChapter.BookID, target.ID)
		if err != nil {
			return err
		}
		if chapters == 0 {
			return errNotPublishable(kind)
		}

	case requirePublishedBookAndChapter:
		var books, chapters int
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			books, err = engine.store.CountPublished(groupCtx, Book, schema.CoreBook.SerieID, target.ID)
			return err
		})
		group.Go(func() error {
			var err error
			chapters, err = engine.store.CountPublished(groupCtx, Chapter, schema.CoreChapter.SerieID, target.ID)
			return err
		})
		if err := group.Wait(); err != nil {
			return err
		}
		if books == 0 || chapters == 0 {
			return errNotPublishable(kind)
		}
	}

	return nil
}

// loadAncestors returns the ancestors of r aligned with kind.Ancestors().
func (engine *Engine) loadAncestors(ctx context.Context, kind *Kind, r *Resource) ([]*Resource, error) {
	chain := kind.Ancestors()
	loaded := make([]*Resource, 0, len(chain))

	for _, ancestorKind := range chain {
		ancestor, err := engine.store.FindByID(ctx, ancestorKind, ancestorKind.refOf(r))
		if err != nil {
			return nil, err
		}
		if ancestor == nil || !ancestor.Live() {
			return nil, errNotFound(ancestorKind)
		}
		loaded = append(loaded, ancestor)
	}

	return loaded, nil
}

// # Delete

// Delete soft-deletes a resource and its descendants, closes the order gap
// among the surviving siblings and returns the slug.
func (engine *Engine) Delete(ctx context.Context, kind *Kind, input DeleteInput) (string, error) {
	target, err := engine.Get(ctx, kind, input.AuthorID, input.Slug)
	if err != nil {
		return "", err
	}

	// Type-to-confirm gate, exact and case-sensitive
	if input.ConfirmTitle != target.Title {
		return "", errTitleMismatch(kind)
	}

	var cascaded int64
	txCtx := context.WithoutCancel(ctx)
	err = engine.store.InTx(txCtx, func(q Queries) error {
		// Parent first, then the row, the same order Create takes
		scopeID := kind.ScopeOf(target)
		if err := q.LockScope(txCtx, kind, scopeID); err != nil {
			return err
		}

		locked, err := q.FindLive(txCtx, kind, input.AuthorID, input.Slug, true)
		if err != nil {
			return err
		}
		if locked == nil || kind.ScopeOf(locked) != scopeID {
			return errNotFound(kind)
		}

		// 1. Tombstone order below every earlier deletion
		last, err := q.LastDeleted(txCtx, kind, scopeID)
		if err != nil {
			return err
		}
		tombstone := Tombstone{At: engine.now(), Reason: kind.Name, Order: -1}
		if last != nil {
			tombstone.Order = last.Order - 1
		}

		// 2. Target
		if err := q.MarkDeleted(txCtx, kind, locked.ID, tombstone); err != nil {
			return err
		}

		// 3. Descendants
		for _, cascade := range kind.Cascades {
			affected, err := q.CascadeDelete(txCtx, cascade, locked.ID, tombstone)
			if err != nil {
				return err
			}
			cascaded += affected
		}

		// 4. Gap
		_, err = q.CloseGap(txCtx, kind, scopeID, locked.Order)
		return err
	})
	if err != nil {
		return "", err
	}

	engine.log(ctx).InfoContext(ctx, kind.Name+"_deleted",
		slog.String("slug", target.Slug),
		slog.Int64("cascaded", cascaded),
	)

	return target.Slug, nil
}

// # Swap

// Swap exchanges the orders of two siblings.
//
// The writes go through a sentinel so the live (scope, order) unique index
// holds after every statement: a to sentinel, b to a's order, a to b's order.
func (engine *Engine) Swap(ctx context.Context, kind *Kind, input SwapInput) (SwapResult, error) {
	result := SwapResult{A: input.A, B: input.B}

	txCtx := context.WithoutCancel(ctx)
	err := engine.store.InTx(txCtx, func(q Queries) error {

		// Lock in slug order so overlapping swaps cannot deadlock
		first, second := input.A, input.B
		if second < first {
			first, second = second, first
		}
		lockedFirst, err := q.FindLive(txCtx, kind, input.AuthorID, first, true)
		if err != nil {
			return err
		}
		lockedSecond, err := q.FindLive(txCtx, kind, input.AuthorID, second, true)
		if err != nil {
			return err
		}
		if lockedFirst == nil || lockedSecond == nil {
			return errSwapNotFound(kind)
		}

		a, b := lockedFirst, lockedSecond
		if first != input.A {
			a, b = lockedSecond, lockedFirst
		}

		if kind.ScopeOf(a) != kind.ScopeOf(b) {
			return errSwapScope(kind)
		}

		if err := q.SetOrder(txCtx, kind, a.ID, swapSentinel); err != nil {
			return err
		}
		if err := q.SetOrder(txCtx, kind, b.ID, a.Order); err != nil {
			return err
		}
		return q.SetOrder(txCtx, kind, a.ID, b.Order)
	})
	if err != nil {
		return SwapResult{}, err
	}

	engine.log(ctx).InfoContext(ctx, kind.Name+"_swapped",
		slog.String("a", input.A),
		slog.String("b", input.B),
	)

	return result, nil
}
