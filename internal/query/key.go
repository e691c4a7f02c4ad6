package query

import (
	"net/url"
	"strings"
)

// Key identifies a cached query. The first segment names the resource and
// doubles as the persistence group.
type Key []string

// NewKey builds a key from a resource name and further segments.
func NewKey(resource string, parts ...string) Key {
	k := make(Key, 0, len(parts)+1)
	k = append(k, resource)
	return append(k, parts...)
}

// ParamsKey appends the canonical encoding of params to base. Parameter
// order does not matter; empty params add nothing.
func ParamsKey(base Key, params url.Values) Key {
	k := append(Key{}, base...)
	if enc := params.Encode(); enc != "" {
		k = append(k, enc)
	}
	return k
}

// Group is the resource segment.
func (k Key) Group() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix reports whether every segment of prefix equals the matching
// segment of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = url.PathEscape(seg)
	}
	return strings.Join(parts, "/")
}
