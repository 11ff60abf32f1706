// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package query parses list-endpoint query string values.
package query

import (
	"strconv"
	"strings"
)

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings. Empty entries are dropped.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// Descending reports whether a "dir" value asks for descending order.
func Descending(dir string) bool {
	return strings.EqualFold(strings.TrimSpace(dir), "desc")
}

// Bool parses a boolean flag, returning fallback when val is empty or malformed.
func Bool(val string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}
