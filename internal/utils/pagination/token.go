package pagination

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	// MaxPage keeps (page-1)*limit far from overflow.
	MaxPage = 10000
)

// Page is a normalised page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxLimit], using DefaultLimit when unset.
func Normalize(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns how many pages of limit cover total items.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// EncodeMultiFieldToken creates an opaque token with any number of string fields.
// Fields are query-escaped, so they may contain the separator.
// The OAuth state cookie uses it to carry the nonce together with the return path.
func EncodeMultiFieldToken(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = url.QueryEscape(f)
	}
	tokenStr := strings.Join(escaped, "|")
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields.
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token format (base64 decode): %w", err)
	}
	fields := strings.Split(string(decodedBytes), "|")
	for i, f := range fields {
		if fields[i], err = url.QueryUnescape(f); err != nil {
			return nil, fmt.Errorf("invalid token format (field %d): %w", i, err)
		}
	}
	return fields, nil
}
