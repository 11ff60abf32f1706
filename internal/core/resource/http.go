// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"net/http"

	"github.com/encre-app/encre/pkg/pagination"
	"github.com/encre-app/encre/pkg/query"
	"github.com/encre-app/encre/pkg/slice"
)

// Query parameters shared by the author list endpoints.
const (
	ParamStatus          = "status"
	ParamVisibility      = "visibility"
	ParamQuery           = "q"
	ParamCaseInsensitive = "ci"
	ParamSort            = "sort"
	ParamDirection       = "dir"
)

// SlugResponse is the body returned by create, update, delete and content saves.
type SlugResponse struct {
	Slug string `json:"slug"`
}

// FilterFromRequest reads a [ListFilter] and its page from the query string.
// parentParam names the comma-separated parent slug filter ("serie" or "book"),
// or is empty for series.
//
// Example:
//
//	GET /books?serie=dragon-saga,other&status=draft,published&q=war&sort=title&dir=desc&page=2
func FilterFromRequest(request *http.Request, parentParam string) (ListFilter, pagination.Params) {
	values := request.URL.Query()
	page := pagination.FromRequest(request)

	filter := ListFilter{
		Statuses:        slice.Map(query.StringSlice(values.Get(ParamStatus)), func(s string) Status { return Status(s) }),
		Query:           values.Get(ParamQuery),
		CaseInsensitive: query.Bool(values.Get(ParamCaseInsensitive), true),
		SortField:       SortField(values.Get(ParamSort)),
		Descending:      query.Descending(values.Get(ParamDirection)),
		Limit:           page.Limit,
		Offset:          page.Offset(),
	}
	if parentParam != "" {
		filter.ParentSlugs = query.StringSlice(values.Get(parentParam))
	} else {
		filter.Visibilities = slice.Map(query.StringSlice(values.Get(ParamVisibility)), func(s string) Visibility { return Visibility(s) })
	}

	return filter, page
}
