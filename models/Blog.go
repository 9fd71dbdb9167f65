package models

import "time"

type BlogPost struct {
	ID          uint      `json:"ID"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	ContentHTML string    `json:"contentHTML"`
	CoverImage  string    `json:"coverImage"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"publishedAt"`
}
