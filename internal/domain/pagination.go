package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Page size bounds for ledger listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

const pageTokenPrefix = "offset:"

// PageRequest selects one page of a listing. PageToken is opaque to callers
// and comes from a previous Page.
type PageRequest struct {
	Size      int
	PageToken string
}

// Offset decodes the page token. Empty or malformed tokens start at 0.
func (p PageRequest) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	decoded, err := base64.RawURLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	raw, ok := strings.CutPrefix(string(decoded), pageTokenPrefix)
	if !ok {
		return 0
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// Limit returns the effective page size, clamped to [1, MaxPageSize].
func (p PageRequest) Limit() int {
	switch {
	case p.Size <= 0:
		return DefaultPageSize
	case p.Size > MaxPageSize:
		return MaxPageSize
	default:
		return p.Size
	}
}

// Page is one page of a listing.
type Page[T any] struct {
	Items         []T
	Total         int
	NextPageToken string
}

// NewPage builds a page and computes the token of the following page, which
// is empty on the last page.
func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	page := Page[T]{Items: items, Total: total}
	if next := req.Offset() + req.Limit(); next < total {
		page.NextPageToken = encodePageToken(next)
	}
	return page
}

func encodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(pageTokenPrefix + strconv.Itoa(offset)))
}
