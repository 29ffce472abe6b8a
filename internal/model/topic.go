package model

import "time"

// Topic is a named collection of articles. The author reference is
// nullable so topics survive deletion of their creator.
type Topic struct {
	ID           int64     `json:"pk"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Slug         string    `json:"slug"`
	ThumbnailURL string    `json:"thumbnail"`
	AuthorID     *int64    `json:"-"`
	Author       *string   `json:"author"`
	CreatedOn    time.Time `json:"-"`
}
