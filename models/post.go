package models

import "time"

// Post represents a text post owned by a user. Identity and ownership are
// immutable after creation.
type Post struct {
	PostID     int64     `json:"post_id" db:"post_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	LikesCount int       `json:"likes_count" db:"likes_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PostCreateRequest carries the body of POST /api/posts.
type PostCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostUpdateRequest carries a partial post update. Nil fields are left
// untouched.
type PostUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PostsPage is the paged envelope for post listings.
type PostsPage struct {
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
	Posts      []Post `json:"posts"`
}
