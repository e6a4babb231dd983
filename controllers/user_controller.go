package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"blog_server_go/data"
	"blog_server_go/middleware"
	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

// UserController serves the user listing, profile and self-service
// mutation endpoints.
type UserController struct {
	db *sqlx.DB
}

func NewUserController(db *sqlx.DB) *UserController {
	return &UserController{db: db}
}

// List handles GET /api/users. Each returned user embeds its posts.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")

	users, total, err := data.ListUsers(c.db, role, search, page, pageSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list users")
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	items := make([]models.UserWithPosts, 0, len(users))
	for _, user := range users {
		posts, err := data.GetPostsForUser(c.db, user.UserID)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to load posts")
			respondError(w, http.StatusInternalServerError, "Failed to load posts")
			return
		}
		items = append(items, models.UserWithPosts{User: user, Posts: posts})
	}

	respondJSON(w, http.StatusOK, models.UsersPage{
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
		Users:      items,
	})
}

// Get handles GET /api/users/{id}, returning the light user without posts.
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := data.GetUserByID(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Posts handles GET /api/users/{id}/posts: the user's posts, newest first.
func (c *UserController) Posts(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	page, pageSize, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := data.GetUserByID(c.db, id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	posts, total, err := data.ListUserPosts(c.db, id, page, pageSize)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", id).Msg("failed to list posts")
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

// Update handles PATCH /api/users/{id}; users may only update themselves.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	current := middleware.UserFromContext(r.Context())

	if current.UserID != id {
		respondError(w, http.StatusForbidden, "You can only update your own profile")
		return
	}

	var req models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	user, err := data.UpdateUser(c.db, id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, data.ErrLoginTaken):
			respondError(w, http.StatusBadRequest, "Login already exists")
		case errors.Is(err, data.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "Email already exists")
		default:
			logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
			respondError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	posts, err := data.GetPostsForUser(c.db, user.UserID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to load posts")
		respondError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	respondJSON(w, http.StatusOK, models.UserWithPosts{User: *user, Posts: posts})
}

// Delete handles DELETE /api/users/{id}; self only. Owned posts are removed
// by the cascade.
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	current := middleware.UserFromContext(r.Context())

	if current.UserID != id {
		respondError(w, http.StatusForbidden, "You can only delete your own profile")
		return
	}

	user, err := data.GetUserByID(c.db, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	if err := data.DeleteUser(c.db, id); err != nil {
		logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("User '%s' deleted successfully", user.Login),
		"user_id": id,
	})
}
