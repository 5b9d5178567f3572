package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryString returns the trimmed first value of key, or "" when absent.
func QueryString(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}

// QueryInt parses key as an integer. Missing or malformed values yield 0,
// which downstream normalization treats as "use the default".
func QueryInt(q url.Values, key string) int {
	v, err := strconv.Atoi(QueryString(q, key))
	if err != nil {
		return 0
	}
	return v
}

// QueryOptionalInt parses key as an integer, returning nil when it is
// missing or malformed.
// Example:
//
//	?minBikes=3    → 3
//	?minBikes=abc  → nil
func QueryOptionalInt(q url.Values, key string) *int {
	v, err := strconv.Atoi(QueryString(q, key))
	if err != nil {
		return nil
	}
	return &v
}
