// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"slices"
	"strings"

	"github.com/encre-app/encre/internal/platform/validate"
)

// Title and description bounds, counted in characters.
const (
	TitleMinLen       = 2
	TitleMaxLen       = 50
	DescriptionMaxLen = 1000
)

// transitions is keyed by the current status. Cancelled and deleted have no exits.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusPublished, StatusComingSoon, StatusCancelled},
	StatusComingSoon: {StatusPublished, StatusCancelled},
	StatusArchived:   {StatusPublished},
	StatusPublished:  {StatusArchived, StatusCancelled},
}

// CanTransition reports whether a resource in from may move to to.
// A same-status request is not a transition and returns false.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// checkTransition validates a requested status change. It returns changed=false
// for a nil or same-status request, which callers treat as a no-op.
func checkTransition(from Status, to *Status) (changed bool, err error) {
	if to == nil || *to == from {
		return false, nil
	}
	if !CanTransition(from, *to) {
		return false, errInvalidStatus()
	}
	return true, nil
}

// validateTitle checks length bounds and the blocklist on the trimmed title.
func validateTitle(blocklist *Blocklist, title string) error {
	title = strings.TrimSpace(title)
	validator := &validate.Validator{}
	validator.
		Required(fieldTitle, title).
		MinLen(fieldTitle, title, TitleMinLen).
		MaxLen(fieldTitle, title, TitleMaxLen)
	if err := validator.Err(); err != nil {
		return err
	}
	return blocklist.Check(title)
}

// validateDescription checks the description length.
func validateDescription(description string) error {
	validator := &validate.Validator{}
	return validator.MaxLen(fieldDescription, description, DescriptionMaxLen).Err()
}

// validateVisibility rejects unknown visibility values.
func validateVisibility(visibility Visibility) error {
	allowed := make([]string, len(Visibilities))
	for i, v := range Visibilities {
		allowed[i] = string(v)
	}
	validator := &validate.Validator{}
	return validator.OneOf(fieldVisibility, string(visibility), allowed...).Err()
}
