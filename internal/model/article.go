package model

import (
	"strings"
	"time"
)

// Article data model. Author and topic references are nullable: both
// survive deletion of the row they point at. Author and Topic carry the
// display names resolved by the storage layer's joins.
type Article struct {
	ID           int64     `json:"pk"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Content      string    `json:"content"`
	Draft        bool      `json:"-"`
	Objectivity  float64   `json:"objectivity"`
	ThumbnailURL string    `json:"thumbnail"`
	TopicID      *int64    `json:"-"`
	AuthorID     *int64    `json:"-"`
	Topic        *string   `json:"topic"`
	Author       *string   `json:"author"`
	Tags         []string  `json:"tags"`
	CreatedOn    time.Time `json:"-"`
	UpdatedOn    time.Time `json:"-"`
}

// Timestamp prefers the last modification time over the creation time.
func (a *Article) Timestamp() time.Time {
	if !a.UpdatedOn.IsZero() {
		return a.UpdatedOn
	}
	return a.CreatedOn
}

// Objective reports whether the computed objectivity crosses 0.5.
func (a *Article) Objective() bool {
	return a.Objectivity >= 0.5
}

// TruncatedContent returns the first n words of the content, with an
// ellipsis when anything was cut off.
func (a *Article) TruncatedContent(n int) string {
	words := strings.Fields(a.Content)
	if len(words) <= n {
		return a.Content
	}
	return strings.Join(words[:n], " ") + " …"
}
