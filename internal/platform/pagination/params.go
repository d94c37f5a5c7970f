// Package pagination reads pageSize/pageToken query parameters and encodes
// keyset cursors for lists ordered by (updatedAt desc, id asc).
package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
)

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid pageSize")
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// Params is one page request. Scope identifies the list filter the request
// was made with; repositories copy it into the next page's cursor.
type Params struct {
	PageSize  int
	PageToken string
	Scope     string
	Cursor    Cursor
}

// Options: zero sizes fall back to the package defaults. A token is only
// accepted when it was issued for the same Scope.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Scope           string
}

func (o Options) sizes() (defSize, maxSize int) {
	defSize, maxSize = o.DefaultPageSize, o.MaxPageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	if defSize <= 0 {
		defSize = DefaultPageSize
	}
	return min(defSize, maxSize), maxSize
}

func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse reads pageSize and pageToken. Oversized pages are clamped rather than
// rejected.
func Parse(values url.Values, opts Options) (Params, error) {
	defSize, maxSize := opts.sizes()
	params := Params{PageSize: defSize, Scope: opts.Scope}

	if raw := strings.TrimSpace(values.Get("pageSize")); raw != "" {
		size, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			return Params{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidPageSize, raw)
		case size < 1:
			return Params{}, fmt.Errorf("%w: must be at least 1", ErrInvalidPageSize)
		}
		params.PageSize = min(size, maxSize)
	}

	token := strings.TrimSpace(values.Get("pageToken"))
	if token == "" {
		return params, nil
	}
	cursor, err := DecodeToken(token)
	if err != nil {
		return Params{}, err
	}
	if cursor.Scope != opts.Scope {
		return Params{}, fmt.Errorf("%w: issued for a different filter", ErrInvalidPageToken)
	}
	params.PageToken = token
	params.Cursor = cursor
	return params, nil
}

// Next builds the cursor that follows the item (updatedAt, id) under p's scope.
func (p Params) Next(last Cursor) Cursor {
	last.Scope = p.Scope
	return last
}
