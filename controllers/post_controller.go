package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"blog_server_go/data"
	"blog_server_go/middleware"
	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

// PostController serves the post listing, CRUD and like endpoints.
type PostController struct {
	db *sqlx.DB
}

func NewPostController(db *sqlx.DB) *PostController {
	return &PostController{db: db}
}

// parsePostFilter builds the repository filter from the query string.
func parsePostFilter(r *http.Request) (data.PostFilter, error) {
	q := r.URL.Query()
	f := data.PostFilter{
		Title:       q.Get("title"),
		Content:     q.Get("content"),
		Search:      q.Get("search"),
		SearchField: "all",
		SortBy:      "created_at",
		SortOrder:   "asc",
	}

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("user_id must be an integer")
		}
		f.UserID = &id
	}
	if raw := q.Get("likes_min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("likes_min must be an integer >= 0")
		}
		f.LikesMin = &n
	}
	if raw := q.Get("likes_max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("likes_max must be an integer >= 0")
		}
		f.LikesMax = &n
	}
	if raw := q.Get("created_after"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			return f, fmt.Errorf("created_after: %v", err)
		}
		f.CreatedAfter = &t
	}
	if raw := q.Get("created_before"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			return f, fmt.Errorf("created_before: %v", err)
		}
		f.CreatedBefore = &t
	}
	if raw := q.Get("search_field"); raw != "" {
		switch raw {
		case "all", "title", "content":
			f.SearchField = raw
		default:
			return f, fmt.Errorf("search_field must be one of all, title, content")
		}
	}
	// An unknown sort_by silently falls back to created_at in the
	// repository; sort_order is validated strictly.
	if raw := q.Get("sort_by"); raw != "" {
		f.SortBy = raw
	}
	if raw := q.Get("sort_order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return f, fmt.Errorf("sort_order must be asc or desc")
		}
		f.SortOrder = raw
	}
	return f, nil
}

// List handles GET /api/posts.
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parsePostFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, total, err := data.ListPosts(c.db, filter, page, pageSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list posts")
		respondError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	respondJSON(w, http.StatusOK, models.PostsPage{
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
		Posts:      posts,
	})
}

// Create handles POST /api/posts.
func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req models.PostCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	post, err := data.CreatePost(c.db, user.UserID, req.Title, req.Content)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to create post")
		respondError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// Get handles GET /api/posts/{id}.
func (c *PostController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := data.GetPostByID(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to get post")
		respondError(w, http.StatusInternalServerError, "Failed to get post")
		return
	}

	respondJSON(w, http.StatusOK, post)
}

// Update handles PATCH /api/posts/{id}. Only the author may update, and the
// existence check precedes the ownership check.
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	user := middleware.UserFromContext(r.Context())

	post, err := data.GetPostByID(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to get post")
		respondError(w, http.StatusInternalServerError, "Failed to get post")
		return
	}

	if post.UserID != user.UserID {
		respondError(w, http.StatusForbidden, "Access denied. Only the author can update the post.")
		return
	}

	var req models.PostUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	updated, err := data.UpdatePost(c.db, id, req)
	if err != nil {
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to update post")
		respondError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/{id}, author only.
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	user := middleware.UserFromContext(r.Context())

	post, err := data.GetPostByID(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to get post")
		respondError(w, http.StatusInternalServerError, "Failed to get post")
		return
	}

	if post.UserID != user.UserID {
		respondError(w, http.StatusForbidden, "Access denied. Only the author can delete the post.")
		return
	}

	if err := data.DeletePost(c.db, id); err != nil {
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to delete post")
		respondError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Post '%s' deleted successfully", post.Title),
		"id":      id,
	})
}

// Like handles POST /api/posts/{id}/like. Any authenticated user may like
// any post.
func (c *PostController) Like(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	count, err := data.IncrementLikes(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to like post")
		respondError(w, http.StatusInternalServerError, "Failed to like post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Post liked successfully",
		"post_id":     id,
		"likes_count": count,
	})
}

// Unlike handles POST /api/posts/{id}/unlike. A post with zero likes cannot
// be unliked.
func (c *PostController) Unlike(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	count, err := data.DecrementLikes(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if errors.Is(err, data.ErrNoLikes) {
			respondError(w, http.StatusBadRequest, "Cannot unlike: post has no likes")
			return
		}
		logger.Error().Err(err).Int64("post_id", id).Msg("failed to unlike post")
		respondError(w, http.StatusInternalServerError, "Failed to unlike post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Post unliked successfully",
		"post_id":     id,
		"likes_count": count,
	})
}
