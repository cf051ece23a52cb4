package listing

import (
	"fmt"
	"strings"

	"recipebrowser"
)

// Source is the data origin of a list result. Exactly one is active per query.
type Source int

const (
	SourceAll Source = iota
	SourceCategory
	SourceSearch
)

func (s Source) String() string {
	switch s {
	case SourceAll:
		return "all"
	case SourceCategory:
		return "category"
	case SourceSearch:
		return "search"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Query is the list state a caller resolves. Search must already be debounced.
type Query struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Page     int    `json:"page"`
}

// Source picks the active data source and its cache key. A non-blank search wins
// over the category; with neither, the full listing is used.
func (q Query) Source() (Source, string) {
	if s := strings.TrimSpace(q.Search); s != "" {
		return SourceSearch, s
	}
	if q.Category != "" {
		return SourceCategory, q.Category
	}
	return SourceAll, allKey
}

// Key identifies the query's data independently of the page.
func (q Query) Key() string {
	source, key := q.Source()
	return listKey(source, key)
}

const allKey = "all"

func listKey(source Source, key string) string {
	return source.String() + ":" + key
}

// Result is the read model for one page of a list.
type Result struct {
	Items      []recipebrowser.Recipe `json:"items"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
	Total      int                    `json:"total"`
	Source     Source                 `json:"source"`
	// IsLoading is set while the category list or the active source has not resolved.
	// Items is empty and TotalPages is 0 in that case.
	IsLoading bool `json:"is_loading"`
	// Stale marks data older than the freshness window; a refresh is due.
	Stale bool `json:"stale,omitempty"`
	// ResetPage means the requested page was out of range. Page is 1 and Items
	// holds the first page.
	ResetPage bool `json:"reset_page,omitempty"`
}
