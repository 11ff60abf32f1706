// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package schema

// CoreBookTable represents the 'core.book' table
type CoreBookTable struct {
	ResourceColumns
	Table   string
	SerieID string
}

// CoreBook is the schema definition for core.book
var CoreBook = CoreBookTable{
	ResourceColumns: resourceColumns,
	Table:           "core.book",
	SerieID:         "serieid",
}
