package controllers

import (
	"net/http"

	"blog_server_go/auth"
	"blog_server_go/middleware"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// NewRouter wires every endpoint. Mutating routes are wrapped individually
// in the auth middleware so public and protected methods can share a path
// (GET /api/posts is open, POST /api/posts is not).
func NewRouter(db *sqlx.DB, tokens *auth.TokenService, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log))

	authMW := middleware.Authenticate(tokens, db)
	authCtrl := NewAuthController(db, tokens)
	posts := NewPostController(db)
	users := NewUserController(db)

	router.HandleFunc("/register", authCtrl.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", authCtrl.Login).Methods(http.MethodPost)
	router.HandleFunc("/health", HealthCheck).Methods(http.MethodGet)

	router.Handle("/api/me", authMW(http.HandlerFunc(authCtrl.Me))).Methods(http.MethodGet)

	router.HandleFunc("/api/posts", posts.List).Methods(http.MethodGet)
	router.Handle("/api/posts", authMW(http.HandlerFunc(posts.Create))).Methods(http.MethodPost)
	router.HandleFunc("/api/posts/{id:[0-9]+}", posts.Get).Methods(http.MethodGet)
	router.Handle("/api/posts/{id:[0-9]+}", authMW(http.HandlerFunc(posts.Update))).Methods(http.MethodPatch)
	router.Handle("/api/posts/{id:[0-9]+}", authMW(http.HandlerFunc(posts.Delete))).Methods(http.MethodDelete)
	router.Handle("/api/posts/{id:[0-9]+}/like", authMW(http.HandlerFunc(posts.Like))).Methods(http.MethodPost)
	router.Handle("/api/posts/{id:[0-9]+}/unlike", authMW(http.HandlerFunc(posts.Unlike))).Methods(http.MethodPost)

	router.HandleFunc("/api/users", users.List).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id:[0-9]+}", users.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id:[0-9]+}/posts", users.Posts).Methods(http.MethodGet)
	router.Handle("/api/users/{id:[0-9]+}", authMW(http.HandlerFunc(users.Update))).Methods(http.MethodPatch)
	router.Handle("/api/users/{id:[0-9]+}", authMW(http.HandlerFunc(users.Delete))).Methods(http.MethodDelete)

	return router
}
