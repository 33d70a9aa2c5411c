package navkit

import "net/url"

// RouterState is an immutable snapshot of the current location.
// It is replaced wholesale on every change, never mutated in place.
// Treat Query as read-only; mutate via Push/Replace instead.
type RouterState struct {
	// Path is the URL path component, e.g. "/users/42".
	Path string

	// Query holds the parsed query parameters. url.Values preserves
	// the order of repeated values per key.
	Query url.Values

	// Hash is the URL fragment including the leading "#", or "" when
	// the URL carries no fragment.
	Hash string
}

// StateFromURL derives a RouterState from a parsed URL.
// The URL's origin (scheme, host) is not part of the snapshot.
func StateFromURL(u *url.URL) RouterState {
	if u == nil {
		return RouterState{Query: url.Values{}}
	}

	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.Fragment
	}

	return RouterState{
		Path:  u.Path,
		Query: u.Query(),
		Hash:  hash,
	}
}

// Equal reports whether two snapshots describe the same location.
func (s RouterState) Equal(other RouterState) bool {
	if s.Path != other.Path || s.Hash != other.Hash {
		return false
	}
	if len(s.Query) != len(other.Query) {
		return false
	}
	for k, vs := range s.Query {
		ovs, ok := other.Query[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if vs[i] != ovs[i] {
				return false
			}
		}
	}
	return true
}

// String renders the snapshot as a relative URL reference.
func (s RouterState) String() string {
	out := s.Path
	if len(s.Query) > 0 {
		out += "?" + s.Query.Encode()
	}
	return out + s.Hash
}

// emptyState is the snapshot used when no host surface exists and no
// hydration seed was supplied.
func emptyState() RouterState {
	return RouterState{Query: url.Values{}}
}
