// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package schema

// CoreSerieTable represents the 'core.serie' table
type CoreSerieTable struct {
	ResourceColumns
	Table      string
	Visibility string
}

// CoreSerie is the schema definition for core.serie
var CoreSerie = CoreSerieTable{
	ResourceColumns: resourceColumns,
	Table:           "core.serie",
	Visibility:      "visibility",
}
