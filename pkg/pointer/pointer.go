// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package pointer provides generic helpers for optional values.

Partial updates carry absent fields as nil pointers; these helpers convert
between the JSON layer and the engine inputs without boilerplate.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Convert maps a pointer to a named type sharing the same underlying
// representation, preserving nil.
func Convert[T, U ~string](p *T) *U {
	if p == nil {
		return nil
	}
	converted := U(*p)
	return &converted
}
