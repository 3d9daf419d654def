package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/skumawat/bidkart-backend/api/middleware"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// identity pulls the authenticated caller out of the request context.
func identity(r *http.Request) (middleware.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return middleware.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

// cursorParams reads limit/cursor query parameters for cursor-paginated lists.
func cursorParams(r *http.Request) (pagination.Params, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// pageParams reads page/size query parameters for offset-paginated lists.
func pageParams(r *http.Request) (pagination.Page, error) {
	number, err := queryInt(r, "page")
	if err != nil {
		return pagination.Page{}, err
	}
	size, err := queryInt(r, "size")
	if err != nil {
		return pagination.Page{}, err
	}
	return pagination.Page{Number: number, Size: size}, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a positive integer").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
