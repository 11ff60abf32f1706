// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package schema

// CoreCharacterTable represents the 'core.character' table.
// Characters are unordered. The serie delete cascade soft-deletes them.
type CoreCharacterTable struct {
	Table          string
	ID             string
	SerieID        string
	Slug           string
	Name           string
	FirstName      string
	MiddleName     string
	LastName       string
	Aliases        string
	Description    string
	Status         string
	DeletedAt      string
	DeletionReason string
	CreatedAt      string
	UpdatedAt      string
}

// CoreCharacter is the schema definition for core.character
var CoreCharacter = CoreCharacterTable{
	Table:          "core.character",
	ID:             "id",
	SerieID:        "serieid",
	Slug:           "slug",
	Name:           "name",
	FirstName:      "firstname",
	MiddleName:     "middlename",
	LastName:       "lastname",
	Aliases:        "aliases",
	Description:    "description",
	Status:         "status",
	DeletedAt:      "deletedat",
	DeletionReason: "deletionreason",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}
