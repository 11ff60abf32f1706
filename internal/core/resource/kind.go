// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"github.com/encre-app/encre/internal/platform/database/schema"
)

// Cascade names a table whose live rows are soft-deleted together with their parent.
type Cascade struct {
	Table  string
	Column string
}

// publishRule selects the precondition checked before a resource enters published.
type publishRule int

const (
	requireContent publishRule = iota + 1
	requirePublishedChapter
	requirePublishedBookAndChapter
)

// Kind describes one resource type to the engine.
type Kind struct {
	// Name is the lowercase singular ("book"). It is also the deletion reason.
	Name string
	// Label is the capitalized singular used in messages ("Book").
	Label string
	// Plural is the lowercase plural used in messages ("books").
	Plural string
	// PluralLabel is the capitalized plural ("Books").
	PluralLabel string

	Table string
	// ScopeColumn groups siblings: authorid, serieid or bookid.
	ScopeColumn string
	// ScopeTable holds the row ScopeColumn points at. It is locked by every
	// create and delete so sibling counts and gap closing cannot interleave.
	ScopeTable string
	// Parent is nil for series.
	Parent *Kind
	// Cascades are soft-deleted with the resource, in order.
	Cascades []Cascade

	// HasVisibility is true for series only.
	HasVisibility bool
	// ContentColumn is set for chapters only.
	ContentColumn string

	publish        publishRule
	scopeOf        func(r *Resource) string
	refOf          func(r *Resource) string
	link           func(child, parent *Resource)
	ceiling        func(limits Limits) int
	ceilingScope   string
	duplicateTitle string
}

// ScopeOf returns the ID shared by r and its siblings.
func (k *Kind) ScopeOf(r *Resource) string {
	return k.scopeOf(r)
}

// Ancestors returns the parent chain, nearest first.
func (k *Kind) Ancestors() []*Kind {
	var chain []*Kind
	for parent := k.Parent; parent != nil; parent = parent.Parent {
		chain = append(chain, parent)
	}
	return chain
}

// # Descriptors

// Serie is ordered per author and cascades to its books, chapters and characters.
var Serie = &Kind{
	Name:        "serie",
	Label:       "Serie",
	Plural:      "series",
	PluralLabel: "Series",
	Table:       schema.CoreSerie.Table,
	ScopeColumn: schema.CoreSerie.AuthorID,
	ScopeTable:  schema.CoreAuthor.Table,
	Cascades: []Cascade{
		{Table: schema.CoreBook.Table, Column: schema.CoreBook.SerieID},
		{Table: schema.CoreChapter.Table, Column: schema.CoreChapter.SerieID},
		{Table: schema.CoreCharacter.Table, Column: schema.CoreCharacter.SerieID},
	},
	HasVisibility:  true,
	publish:        requirePublishedBookAndChapter,
	scopeOf:        func(r *Resource) string { return r.AuthorID },
	refOf:          func(r *Resource) string { return r.SerieID },
	link:           func(child, parent *Resource) {},
	ceiling:        func(limits Limits) int { return limits.SeriesPerAuthor },
	ceilingScope:   "author",
	duplicateTitle: "You already have a serie with the same title",
}

// Book is ordered per serie and cascades to its chapters.
var Book = &Kind{
	Name:        "book",
	Label:       "Book",
	Plural:      "books",
	PluralLabel: "Books",
	Table:       schema.CoreBook.Table,
	ScopeColumn: schema.CoreBook.SerieID,
	ScopeTable:  schema.CoreSerie.Table,
	Parent:      Serie,
	Cascades: []Cascade{
		{Table: schema.CoreChapter.Table, Column: schema.CoreChapter.BookID},
	},
	publish:        requirePublishedChapter,
	scopeOf:        func(r *Resource) string { return r.SerieID },
	refOf:          func(r *Resource) string { return r.BookID },
	link:           func(child, parent *Resource) { child.SerieID = parent.ID },
	ceiling:        func(limits Limits) int { return limits.BooksPerSerie },
	ceilingScope:   "serie",
	duplicateTitle: "Book with the same title already exists in this serie.",
}

// Chapter is ordered per book and has no further cascade.
var Chapter = &Kind{
	Name:           "chapter",
	Label:          "Chapter",
	Plural:         "chapters",
	PluralLabel:    "Chapters",
	Table:          schema.CoreChapter.Table,
	ScopeColumn:    schema.CoreChapter.BookID,
	ScopeTable:     schema.CoreBook.Table,
	Parent:         Book,
	ContentColumn:  schema.CoreChapter.Content,
	publish:        requireContent,
	scopeOf:        func(r *Resource) string { return r.BookID },
	refOf:          func(r *Resource) string { return "" },
	link: func(child, parent *Resource) {
		child.BookID = parent.ID
		child.SerieID = parent.SerieID
	},
	ceiling:        func(limits Limits) int { return limits.ChaptersPerBook },
	ceilingScope:   "book",
	duplicateTitle: "Chapter with the same title already exists in this book.",
}
