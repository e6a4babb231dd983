package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

// PostFilter collects the optional predicates of a post listing. All set
// filters are combined with AND; the search group ORs across the selected
// fields and is ANDed with the rest.
type PostFilter struct {
	UserID        *int64
	Title         string
	Content       string
	LikesMin      *int
	LikesMax      *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	SearchField   string // "all", "title" or "content"
	SortBy        string
	SortOrder     string // "asc" or "desc"
}

// sortColumns is the explicit allow-list of sortable columns. Anything
// outside it falls back to created_at; user input never reaches ORDER BY
// directly.
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"title":       "title",
	"likes_count": "likes_count",
}

func (f PostFilter) whereClause() (string, []interface{}) {
	where := []string{}
	args := []interface{}{}

	if f.UserID != nil {
		where = append(where, `user_id = ?`)
		args = append(args, *f.UserID)
	}
	if f.Title != "" {
		where = append(where, `LOWER(title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(f.Title)+"%")
	}
	if f.Content != "" {
		where = append(where, `LOWER(content) LIKE ?`)
		args = append(args, "%"+strings.ToLower(f.Content)+"%")
	}
	if f.LikesMin != nil {
		where = append(where, `likes_count >= ?`)
		args = append(args, *f.LikesMin)
	}
	if f.LikesMax != nil {
		where = append(where, `likes_count <= ?`)
		args = append(args, *f.LikesMax)
	}
	if f.CreatedAfter != nil {
		where = append(where, `created_at >= ?`)
		args = append(args, *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		where = append(where, `created_at <= ?`)
		args = append(args, *f.CreatedBefore)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		switch f.SearchField {
		case "title":
			where = append(where, `LOWER(title) LIKE ?`)
			args = append(args, pattern)
		case "content":
			where = append(where, `LOWER(content) LIKE ?`)
			args = append(args, pattern)
		default: // "all"
			where = append(where, `(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)`)
			args = append(args, pattern, pattern)
		}
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (f PostFilter) orderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.SortOrder == "desc" {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

// ListPosts returns one page of posts matching the filter plus the total
// count of matches ignoring the page window.
func ListPosts(db *sqlx.DB, f PostFilter, page, pageSize int) ([]models.Post, int, error) {
	clause, args := f.whereClause()

	var total int
	if err := db.Get(&total, `SELECT COUNT(*) FROM posts`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	posts := []models.Post{}
	query := `SELECT post_id, user_id, title, content, likes_count, created_at, updated_at
	          FROM posts` + clause + f.orderClause() + ` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	if err := db.Select(&posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// CreatePost inserts a post for the given owner with zero likes and
// server-assigned timestamps.
func CreatePost(db *sqlx.DB, userID int64, title, content string) (*models.Post, error) {
	now := time.Now()
	query := `INSERT INTO posts (user_id, title, content, likes_count, created_at, updated_at)
	          VALUES (?, ?, ?, 0, ?, ?)`
	result, err := db.Exec(query, userID, title, content, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for post: %w", err)
	}
	return GetPostByID(db, id)
}

// GetPostByID fetches a post by id, returning ErrNotFound when absent.
func GetPostByID(db *sqlx.DB, id int64) (*models.Post, error) {
	post := &models.Post{}
	query := `SELECT post_id, user_id, title, content, likes_count, created_at, updated_at
	          FROM posts WHERE post_id = ?`
	if err := db.Get(post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID %d: %w", id, err)
	}
	return post, nil
}

// UpdatePost applies a partial update. Nil fields are left untouched;
// updated_at is bumped whenever anything changes.
func UpdatePost(db *sqlx.DB, id int64, upd models.PostUpdateRequest) (*models.Post, error) {
	set := []string{}
	args := []interface{}{}
	if upd.Title != nil {
		set = append(set, `title = ?`)
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, `content = ?`)
		args = append(args, *upd.Content)
	}

	if len(set) == 0 {
		return GetPostByID(db, id)
	}

	set = append(set, `updated_at = ?`)
	args = append(args, time.Now(), id)
	query := `UPDATE posts SET ` + strings.Join(set, ", ") + ` WHERE post_id = ?`
	result, err := db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for post update %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return GetPostByID(db, id)
}

// DeletePost removes a post.
func DeletePost(db *sqlx.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM posts WHERE post_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for post delete %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLikes atomically bumps a post's like counter and returns the new
// count. No upper bound.
func IncrementLikes(db *sqlx.DB, id int64) (int, error) {
	result, err := db.Exec(`UPDATE posts SET likes_count = likes_count + 1 WHERE post_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to like post %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for like %d: %w", id, err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	var count int
	if err := db.Get(&count, `SELECT likes_count FROM posts WHERE post_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to read likes for post %d: %w", id, err)
	}
	return count, nil
}

// DecrementLikes atomically drops a post's like counter by one. The
// conditional UPDATE is the store's atomic "decrement if > 0" primitive, so
// concurrent unlikes cannot drive the count negative; a post sitting at zero
// yields ErrNoLikes.
func DecrementLikes(db *sqlx.DB, id int64) (int, error) {
	result, err := db.Exec(`UPDATE posts SET likes_count = likes_count - 1 WHERE post_id = ? AND likes_count > 0`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to unlike post %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for unlike %d: %w", id, err)
	}
	if affected == 0 {
		if _, err := GetPostByID(db, id); err != nil {
			return 0, err
		}
		return 0, ErrNoLikes
	}

	var count int
	if err := db.Get(&count, `SELECT likes_count FROM posts WHERE post_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to read likes for post %d: %w", id, err)
	}
	return count, nil
}

// ListUserPosts returns one page of a user's posts, newest first, plus the
// user's total post count.
func ListUserPosts(db *sqlx.DB, userID int64, page, pageSize int) ([]models.Post, int, error) {
	var total int
	if err := db.Get(&total, `SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts for user %d: %w", userID, err)
	}

	posts := []models.Post{}
	query := `SELECT post_id, user_id, title, content, likes_count, created_at, updated_at
	          FROM posts WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := db.Select(&posts, query, userID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts for user %d: %w", userID, err)
	}
	return posts, total, nil
}

// GetPostsForUser returns all of a user's posts in creation order, used when
// embedding posts into user payloads.
func GetPostsForUser(db *sqlx.DB, userID int64) ([]models.Post, error) {
	posts := []models.Post{}
	query := `SELECT post_id, user_id, title, content, likes_count, created_at, updated_at
	          FROM posts WHERE user_id = ? ORDER BY post_id ASC`
	if err := db.Select(&posts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get posts for user %d: %w", userID, err)
	}
	return posts, nil
}
