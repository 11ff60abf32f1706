// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	ResourceColumns
	Table    string
	SerieID  string
	BookID   string
	Content  string
	Words    string
	EditedAt string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	ResourceColumns: resourceColumns,
	Table:           "core.chapter",
	SerieID:         "serieid",
	BookID:          "bookid",
	Content:         "content",
	Words:           "words",
	EditedAt:        "editedat",
}
