// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with JSON tags,
// no behaviour beyond what the struct itself needs.
package model

import "time"

// Citation represents a user-submitted quote.
//
// WriterID and WriterName are a denormalized snapshot of the author taken at
// creation time, so list and detail reads never join against users. The same
// trade-off applies to the UserName on each engagement row.
//
// NumberLike is a cached counter. The repository keeps it equal to len(Likes)
// inside the same transaction that mutates the like rows — it is never
// recomputed lazily.
type Citation struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	HumorID     string       `json:"humorId,omitempty"` // reference into the humor categories table
	WriterID    string       `json:"writerId"`
	WriterName  string       `json:"writerName"`
	NumberLike  int          `json:"numberLike"`
	Likes       []Engagement `json:"likes"`
	Favs        []Engagement `json:"favs"`
	CreatedAt   time.Time    `json:"createdAt"` // set once at creation, immutable
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Engagement is one like or favorite on a citation: who, plus a display-name
// snapshot taken when the engagement was recorded.
//
// A given user appears at most once per citation per kind — the repository
// enforces this with a composite primary key on (citation_id, user_id).
type Engagement struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// CitationInput carries the author-editable fields of a citation.
// Used by both create and update; update treats empty strings as "unchanged"
// except for Description, which may be legitimately rewritten.
type CitationInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HumorID     string `json:"humorId"`
}

// CitationPage is the pagination envelope returned by the citation list
// endpoint: request {page, pageSize} → response {totalPages, currentPage,
// pageSize, totalCitations, citations}.
type CitationPage struct {
	TotalPages     int        `json:"totalPages"`
	CurrentPage    int        `json:"currentPage"`
	PageSize       int        `json:"pageSize"`
	TotalCitations int        `json:"totalCitations"`
	Citations      []Citation `json:"citations"`
}
