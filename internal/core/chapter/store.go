// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package chapter

import "context"

// # Chapter Content Access

// ContentRepository reads and writes the text of live chapters.
// Ownership is checked by the caller through the resource engine.
type ContentRepository interface {

	/*
		FindContent returns the text of a chapter.

		Parameters:
		  - context: context.Context
		  - chapterID: string (UUID)

		Returns:
		  - *Content: Text, word count and last edit time
		  - error: ErrNotFound if the chapter is missing or deleted
	*/
	FindContent(context context.Context, chapterID string) (*Content, error)

	/*
		SaveContent overwrites the text of a chapter.

		Parameters:
		  - context: context.Context
		  - chapterID: string (UUID)
		  - content: Content

		Returns:
		  - error: ErrNotFound if the chapter is missing or deleted
	*/
	SaveContent(context context.Context, chapterID string, content Content) error
}
