// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/ctxutil"
	"github.com/encre-app/encre/internal/platform/sec"
	"github.com/encre-app/encre/internal/platform/validate"
)

// maxBodyBytes bounds JSON bodies. Chapter content is the largest payload.
const maxBodyBytes = 2 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter (usually a slug) from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims := Claims(request)
	if claims == nil {
		return "", apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}

/*
RequiredAuthorID returns the author profile ID resolved for the current user.

The ID is placed in the context by the author middleware. A request that
reaches an author route without it is rejected.

Returns:
  - string: Author UUID
  - error: apperr.Forbidden if no author profile was resolved
*/
func RequiredAuthorID(request *http.Request) (string, error) {
	authorID := ctxutil.GetAuthorID(request.Context())
	if authorID == "" {
		return "", apperr.Forbidden("An author profile is required")
	}
	return authorID, nil
}
