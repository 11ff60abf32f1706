// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/pkg/slug"
)

const (
	// slugAttempts bounds the candidates: the base slug then base-1..base-9.
	slugAttempts = 10
	// recycleAttempts bounds retries when a recycled slug itself collides.
	recycleAttempts = 3

	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 4
)

// randomSuffix returns 4 lowercase base36 characters.
func randomSuffix() string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(suffix)
}

// recycledSlug is the slug given to a deleted row that releases candidate.
func recycledSlug(candidate, suffix string) string {
	return candidate + "-deleted-" + suffix
}

// resolveSlug finds a free slug for title. selfID is the row being renamed
// and is treated as free. A deleted holder is renamed out of the way so live
// rows always get the plain slug.
func (engine *Engine) resolveSlug(ctx context.Context, q Queries, kind *Kind, title, selfID string) (string, error) {
	base := slug.From(title)
	if base == "" {
		base = kind.Name
	}

	candidate := base
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		holder, err := q.FindBySlug(ctx, kind, candidate)
		if err != nil {
			return "", err
		}

		switch {
		case holder == nil, holder.ID == selfID:
			return candidate, nil
		case !holder.Live():
			if err := engine.recycle(ctx, q, kind, holder, candidate); err != nil {
				return "", err
			}
			return candidate, nil
		}

		candidate = slug.WithSuffix(base, attempt)
	}

	return "", apperr.Internal(fmt.Errorf("resource: no free %s slug for %q after %d attempts", kind.Name, base, slugAttempts))
}

// recycle renames a deleted row so its slug can be claimed.
func (engine *Engine) recycle(ctx context.Context, q Queries, kind *Kind, holder *Resource, candidate string) error {
	for range recycleAttempts {
		renamed := recycledSlug(candidate, engine.suffix())

		taken, err := q.FindBySlug(ctx, kind, renamed)
		if err != nil {
			return err
		}
		if taken != nil {
			continue
		}

		if err := q.SetSlug(ctx, kind, holder.ID, renamed); err != nil {
			return err
		}

		engine.log(ctx).InfoContext(ctx, "slug_recycled",
			slog.String("kind", kind.Name),
			slog.String("slug", candidate),
			slog.String("renamed_to", renamed),
		)
		return nil
	}

	return apperr.Internal(fmt.Errorf("resource: could not recycle %s slug %q", kind.Name, candidate))
}
