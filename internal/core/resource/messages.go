// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"fmt"

	"github.com/encre-app/encre/internal/platform/apperr"
)

// Field names used as error path hints.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldStatus      = "status"
	fieldVisibility  = "visibility"
)

// errInvalidStatus is returned for any transition outside the lifecycle graph.
func errInvalidStatus() error {
	return apperr.BadRequestAt(fieldStatus, "Invalid status")
}

func errNotFound(kind *Kind) error {
	return apperr.NotFound(kind.Label)
}

func errCancelledParentOnCreate(ancestor *Kind, child string) error {
	return apperr.BadRequest(fmt.Sprintf(
		"%s is cancelled. You cannot add a %s to a cancelled %s.", ancestor.Label, child, ancestor.Name))
}

func errCancelledSelf(kind *Kind) error {
	return apperr.BadRequest(fmt.Sprintf(
		"%s is cancelled. You cannot update a cancelled %s.", kind.Label, kind.Name))
}

func errCancelledAncestorOnUpdate(ancestor, kind *Kind) error {
	return apperr.BadRequest(fmt.Sprintf(
		"%s is cancelled. You cannot update a %s in a cancelled %s.", ancestor.Label, kind.Name, ancestor.Name))
}

func errCeiling(kind *Kind, limit int) error {
	return apperr.BadRequest(fmt.Sprintf(
		"You have reached the maximum number of %s (%d per %s). You cannot add more %s.",
		kind.Plural, limit, kind.ceilingScope, kind.Plural))
}

func errDuplicateTitle(kind *Kind) error {
	return apperr.BadRequestAt(fieldTitle, kind.duplicateTitle)
}

func errTitleMismatch(kind *Kind) error {
	return apperr.BadRequest(kind.Label + " title does not match")
}

func errSwapNotFound(kind *Kind) error {
	return apperr.NotFoundMessage(fmt.Sprintf("One of the %s (or both) not found", kind.Plural))
}

func errSwapScope(kind *Kind) error {
	parent := "author"
	if kind.Parent != nil {
		parent = kind.Parent.Name
	}
	return apperr.BadRequest(fmt.Sprintf("%s are not in the same %s", kind.PluralLabel, parent))
}

func errNotPublishable(kind *Kind) error {
	var message string
	switch kind.publish {
	case requireContent:
		message = "Chapter cannot be published because it has no content. Please add content to the chapter before publishing it."
	case requirePublishedChapter:
		message = "Book cannot be published because it has no published chapters. Please publish at least one chapter before publishing this book."
	default:
		message = "Serie cannot be published because it has no published books or chapters. Please publish at least one book and one chapter before publishing this serie."
	}
	return apperr.BadRequestAt(fieldStatus, message)
}
