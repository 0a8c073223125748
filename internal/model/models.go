// internal/model/models.go
package model

import "time"

// Repository represents a pre-ingested GitHub repository for a user.
// RecentCommits is populated on read from the commit list; the ingestion
// side owns the stored value and keeps it most-recent-first.
type Repository struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	RecentCommits []Commit `json:"recentCommits"`
}

// Commit is a single commit record stored under a (username, repo) list.
type Commit struct {
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// Page is an offset-based slice of an ordered collection, with enough
// metadata for a client to compute adjacent pages. TotalElements is the
// collection length at the instant of the read; no cross-call consistency
// is promised.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage slices the contiguous window [page*size, min(start+size, len))
// out of items. A negative or out-of-range page yields an empty page with
// an accurate total.
func NewPage[T any](items []T, page, size int) Page[T] {
	total := len(items)
	p := Page[T]{
		Items:         []T{},
		Page:          page,
		Size:          size,
		TotalElements: int64(total),
	}
	if page < 0 || size <= 0 {
		return p
	}
	start := page * size
	if start >= total || start < 0 { // start < 0 guards page*size overflow
		return p
	}
	end := min(start+size, total)
	p.Items = items[start:end]
	return p
}

// EmptyPage is the degraded result used when the store cannot be read.
func EmptyPage[T any](page, size int) Page[T] {
	return Page[T]{Items: []T{}, Page: page, Size: size, TotalElements: 0}
}
