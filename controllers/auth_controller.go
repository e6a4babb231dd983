package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"blog_server_go/auth"
	"blog_server_go/data"
	"blog_server_go/middleware"
	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

// AuthController serves registration, login and the current-user endpoint.
type AuthController struct {
	db     *sqlx.DB
	tokens *auth.TokenService
}

func NewAuthController(db *sqlx.DB, tokens *auth.TokenService) *AuthController {
	return &AuthController{db: db, tokens: tokens}
}

// Register handles POST /register. A successful registration immediately
// returns a bearer token for the new account.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "Login and password cannot be empty")
		return
	}

	user, err := data.CreateUser(c.db, req)
	if err != nil {
		if errors.Is(err, data.ErrLoginTaken) {
			respondError(w, http.StatusBadRequest, "Login already registered")
			return
		}
		logger.Error().Err(err).Str("login", req.Login).Msg("failed to create user")
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := c.tokens.Issue(user.Login)
	if err != nil {
		logger.Error().Err(err).Str("login", user.Login).Msg("failed to issue token")
		respondError(w, http.StatusInternalServerError, "User created, but failed to issue access token")
		return
	}

	respondJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /login with form fields username and password. Unknown
// login and wrong password produce the same 401.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form body: "+err.Error())
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		respondError(w, http.StatusBadRequest, "Username and password cannot be empty")
		return
	}

	user, err := data.GetUserByLogin(c.db, username)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Incorrect login or password")
			return
		}
		logger.Error().Err(err).Str("login", username).Msg("failed to look up user")
		respondError(w, http.StatusInternalServerError, "Failed to look up user")
		return
	}

	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		respondError(w, http.StatusUnauthorized, "Incorrect login or password")
		return
	}

	token, err := c.tokens.Issue(user.Login)
	if err != nil {
		logger.Error().Err(err).Str("login", user.Login).Msg("failed to issue token")
		respondError(w, http.StatusInternalServerError, "Failed to issue access token")
		return
	}

	respondJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/me, returning the authenticated user with posts.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	posts, err := data.GetPostsForUser(c.db, user.UserID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to load posts")
		respondError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	respondJSON(w, http.StatusOK, models.UserWithPosts{User: *user, Posts: posts})
}
