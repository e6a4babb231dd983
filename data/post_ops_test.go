package data

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sqlx.DB, login string) *models.User {
	t.Helper()
	user, err := CreateUser(db, models.RegisterRequest{Login: login, Password: "pw"})
	if err != nil {
		t.Fatalf("create user %s: %v", login, err)
	}
	return user
}

func createTestPost(t *testing.T, db *sqlx.DB, userID int64, title, content string) *models.Post {
	t.Helper()
	post, err := CreatePost(db, userID, title, content)
	if err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

func setLikes(t *testing.T, db *sqlx.DB, postID int64, likes int) {
	t.Helper()
	if _, err := db.Exec(`UPDATE posts SET likes_count = ? WHERE post_id = ?`, likes, postID); err != nil {
		t.Fatalf("set likes: %v", err)
	}
}

func setCreatedAt(t *testing.T, db *sqlx.DB, postID int64, at time.Time) {
	t.Helper()
	if _, err := db.Exec(`UPDATE posts SET created_at = ? WHERE post_id = ?`, at, postID); err != nil {
		t.Fatalf("set created_at: %v", err)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	post := createTestPost(t, db, alice.UserID, "Hi", "World")
	if post.UserID != alice.UserID {
		t.Fatalf("owner = %d, want %d", post.UserID, alice.UserID)
	}
	if post.LikesCount != 0 {
		t.Fatalf("likes = %d, want 0", post.LikesCount)
	}
	if post.CreatedAt.IsZero() || post.UpdatedAt.IsZero() {
		t.Fatal("timestamps not assigned")
	}

	got, err := GetPostByID(db, post.PostID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Hi" || got.Content != "World" {
		t.Fatalf("got %q/%q", got.Title, got.Content)
	}

	if _, err := GetPostByID(db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestListPostsFilters(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	goLang := createTestPost(t, db, alice.UserID, "Go tips", "generics everywhere")
	cooking := createTestPost(t, db, alice.UserID, "Cooking", "pasta with Go-chujang")
	createTestPost(t, db, bob.UserID, "Travel", "going places")
	setLikes(t, db, goLang.PostID, 5)
	setLikes(t, db, cooking.PostID, 2)

	// owner filter
	posts, total, err := ListPosts(db, PostFilter{UserID: &alice.UserID}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("owner filter: total %d, items %d", total, len(posts))
	}

	// case-insensitive title substring
	_, total, err = ListPosts(db, PostFilter{Title: "go"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("title filter: total %d, want 1", total)
	}

	// likes range, conjunctive with owner
	minLikes, maxLikes := 1, 10
	_, total, err = ListPosts(db, PostFilter{UserID: &alice.UserID, LikesMin: &minLikes, LikesMax: &maxLikes}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("likes range: total %d, want 2", total)
	}
	minLikes = 3
	_, total, err = ListPosts(db, PostFilter{LikesMin: &minLikes}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("likes_min: total %d, want 1", total)
	}
}

func TestListPostsCreatedRange(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	old := createTestPost(t, db, alice.UserID, "old", "x")
	recent := createTestPost(t, db, alice.UserID, "recent", "x")
	setCreatedAt(t, db, old.PostID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local))
	setCreatedAt(t, db, recent.PostID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local))

	after := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)
	posts, total, err := ListPosts(db, PostFilter{CreatedAfter: &after}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || posts[0].Title != "recent" {
		t.Fatalf("created_after: total %d", total)
	}

	before := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)
	posts, total, err = ListPosts(db, PostFilter{CreatedBefore: &before}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || posts[0].Title != "old" {
		t.Fatalf("created_before: total %d", total)
	}
}

func TestListPostsSearch(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	createTestPost(t, db, alice.UserID, "Hello world", "nothing here")
	createTestPost(t, db, alice.UserID, "Other title", "say HELLO back")
	createTestPost(t, db, alice.UserID, "Unrelated", "no match")

	_, total, err := ListPosts(db, PostFilter{Search: "hello", SearchField: "all"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("search all: total %d, want 2", total)
	}

	_, total, err = ListPosts(db, PostFilter{Search: "hello", SearchField: "title"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("search title: total %d, want 1", total)
	}

	_, total, err = ListPosts(db, PostFilter{Search: "hello", SearchField: "content"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("search content: total %d, want 1", total)
	}
}

func TestListPostsSort(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	a := createTestPost(t, db, alice.UserID, "a", "x")
	b := createTestPost(t, db, alice.UserID, "b", "x")
	c := createTestPost(t, db, alice.UserID, "c", "x")
	setLikes(t, db, a.PostID, 1)
	setLikes(t, db, b.PostID, 3)
	setLikes(t, db, c.PostID, 2)

	posts, _, err := ListPosts(db, PostFilter{SortBy: "likes_count", SortOrder: "desc"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if posts[0].LikesCount != 3 || posts[1].LikesCount != 2 || posts[2].LikesCount != 1 {
		t.Fatalf("likes desc order: %d %d %d", posts[0].LikesCount, posts[1].LikesCount, posts[2].LikesCount)
	}

	posts, _, err = ListPosts(db, PostFilter{SortBy: "title", SortOrder: "asc"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if posts[0].Title != "a" || posts[2].Title != "c" {
		t.Fatalf("title asc order: %s %s %s", posts[0].Title, posts[1].Title, posts[2].Title)
	}
}

func TestListPostsSortFallback(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	first := createTestPost(t, db, alice.UserID, "first", "x")
	second := createTestPost(t, db, alice.UserID, "second", "x")
	setCreatedAt(t, db, first.PostID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local))
	setCreatedAt(t, db, second.PostID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	// unknown sort key falls back to created_at, never errors
	posts, _, err := ListPosts(db, PostFilter{SortBy: "user_id; DROP TABLE posts", SortOrder: "asc"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if posts[0].Title != "first" {
		t.Fatalf("fallback order: got %s first", posts[0].Title)
	}
}

func TestListPostsPagination(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	for _, title := range []string{"p1", "p2", "p3", "p4", "p5"} {
		createTestPost(t, db, alice.UserID, title, "x")
	}

	posts, total, err := ListPosts(db, PostFilter{}, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total %d, want 5", total)
	}
	if len(posts) != 2 {
		t.Fatalf("page len %d, want 2", len(posts))
	}

	posts, total, err = ListPosts(db, PostFilter{}, 3, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(posts) != 1 {
		t.Fatalf("last page: total %d, len %d", total, len(posts))
	}
}

func TestUpdatePostPartial(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.UserID, "Hi", "World")

	title := "x"
	updated, err := UpdatePost(db, post.PostID, models.PostUpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "x" {
		t.Fatalf("title = %q, want x", updated.Title)
	}
	if updated.Content != "World" {
		t.Fatalf("content changed to %q", updated.Content)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatal("updated_at not bumped")
	}

	// empty patch leaves everything alone
	same, err := UpdatePost(db, post.PostID, models.PostUpdateRequest{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same.Title != "x" || same.Content != "World" {
		t.Fatalf("empty patch mutated post: %q/%q", same.Title, same.Content)
	}

	if _, err := UpdatePost(db, 999, models.PostUpdateRequest{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.UserID, "Hi", "World")

	if err := DeletePost(db, post.PostID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetPostByID(db, post.PostID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted post still readable: %v", err)
	}
	if err := DeletePost(db, post.PostID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestLikesCounter(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.UserID, "Hi", "World")

	count, err := IncrementLikes(db, post.PostID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	count, err = DecrementLikes(db, post.PostID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	// a post at zero can never go negative
	for i := 0; i < 3; i++ {
		if _, err := DecrementLikes(db, post.PostID); !errors.Is(err, ErrNoLikes) {
			t.Fatalf("unlike at zero: got %v, want ErrNoLikes", err)
		}
	}
	got, err := GetPostByID(db, post.PostID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LikesCount != 0 {
		t.Fatalf("count = %d after failed unlikes, want 0", got.LikesCount)
	}

	if _, err := IncrementLikes(db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("like missing post: got %v, want ErrNotFound", err)
	}
	if _, err := DecrementLikes(db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unlike missing post: got %v, want ErrNotFound", err)
	}
}

func TestListUserPosts(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	older := createTestPost(t, db, alice.UserID, "older", "x")
	newer := createTestPost(t, db, alice.UserID, "newer", "x")
	createTestPost(t, db, bob.UserID, "bobs", "x")
	setCreatedAt(t, db, older.PostID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local))
	setCreatedAt(t, db, newer.PostID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	posts, total, err := ListUserPosts(db, alice.UserID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("total %d, len %d", total, len(posts))
	}
	if posts[0].Title != "newer" {
		t.Fatalf("order: got %s first, want newer", posts[0].Title)
	}
}
