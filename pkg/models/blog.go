package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BlogPost struct {
	bun.BaseModel `bun:"table:blog_posts,alias:bp"`

	ID        int            `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	Title     string         `bun:",notnull" json:"title"`
	Body      string         `bun:",notnull" json:"body"`
	Comments  []*BlogComment `bun:"rel:has-many,join:id=blog_post_id" json:"comments"`
}

type BlogComment struct {
	bun.BaseModel `bun:"table:blog_comments,alias:bc"`

	ID         int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	BlogPostID int       `bun:",notnull" json:"blog_post_id"`
	Comment    string    `bun:",notnull" json:"comment"`
}
