package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blog_server_go/auth"
	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

// CreateUser registers a new account. The password is hashed before storage;
// a pre-existing login yields ErrLoginTaken. The unique constraints in the
// schema remain the authoritative backstop.
func CreateUser(db *sqlx.DB, req models.RegisterRequest) (*models.User, error) {
	var exists bool
	if err := db.Get(&exists, `SELECT COUNT(*) > 0 FROM users WHERE login = ?`, req.Login); err != nil {
		return nil, fmt.Errorf("failed to check login %s: %w", req.Login, err)
	}
	if exists {
		return nil, ErrLoginTaken
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "viewer"
	}

	query := `INSERT INTO users (login, email, hashed_password, first_name, last_name, phone, role)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.Exec(query, req.Login, req.Email, hashed, req.FirstName, req.LastName, req.Phone, role)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return GetUserByID(db, id)
}

// GetUserByID fetches a user by id, returning ErrNotFound when absent.
func GetUserByID(db *sqlx.DB, id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT user_id, login, email, hashed_password, first_name, last_name, phone, role
	          FROM users WHERE user_id = ?`
	if err := db.Get(user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByLogin fetches a user by login; used by the login flow and the
// identity middleware.
func GetUserByLogin(db *sqlx.DB, login string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT user_id, login, email, hashed_password, first_name, last_name, phone, role
	          FROM users WHERE login = ?`
	if err := db.Get(user, query, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by login %s: %w", login, err)
	}
	return user, nil
}

// ListUsers returns one page of users plus the total count. Role is an exact
// match; search matches a case-insensitive substring of login, email,
// first_name or last_name. Results are always ordered by ascending id.
func ListUsers(db *sqlx.DB, role, search string, page, pageSize int) ([]models.User, int, error) {
	where := []string{}
	args := []interface{}{}

	if role != "" {
		where = append(where, `role = ?`)
		args = append(args, role)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		where = append(where, `(LOWER(login) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?
			OR LOWER(COALESCE(first_name, '')) LIKE ? OR LOWER(COALESCE(last_name, '')) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.Get(&total, `SELECT COUNT(*) FROM users`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []models.User{}
	query := `SELECT user_id, login, email, hashed_password, first_name, last_name, phone, role
	          FROM users` + clause + ` ORDER BY user_id ASC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	if err := db.Select(&users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser applies a partial profile update. Nil fields are left untouched.
// Changing login or email to a value held by another user fails with
// ErrLoginTaken / ErrEmailTaken; a present password is hashed before storage.
func UpdateUser(db *sqlx.DB, id int64, upd models.UserUpdateRequest) (*models.User, error) {
	current, err := GetUserByID(db, id)
	if err != nil {
		return nil, err
	}

	if upd.Login != nil && *upd.Login != current.Login {
		var taken bool
		if err := db.Get(&taken, `SELECT COUNT(*) > 0 FROM users WHERE login = ?`, *upd.Login); err != nil {
			return nil, fmt.Errorf("failed to check login %s: %w", *upd.Login, err)
		}
		if taken {
			return nil, ErrLoginTaken
		}
	}
	if upd.Email != nil && (current.Email == nil || *upd.Email != *current.Email) {
		var taken bool
		if err := db.Get(&taken, `SELECT COUNT(*) > 0 FROM users WHERE email = ?`, *upd.Email); err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	set := []string{}
	args := []interface{}{}
	if upd.Login != nil {
		set = append(set, `login = ?`)
		args = append(args, *upd.Login)
	}
	if upd.Email != nil {
		set = append(set, `email = ?`)
		args = append(args, *upd.Email)
	}
	if upd.Password != nil {
		hashed, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		set = append(set, `hashed_password = ?`)
		args = append(args, hashed)
	}
	if upd.FirstName != nil {
		set = append(set, `first_name = ?`)
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		set = append(set, `last_name = ?`)
		args = append(args, *upd.LastName)
	}
	if upd.Phone != nil {
		set = append(set, `phone = ?`)
		args = append(args, *upd.Phone)
	}
	if upd.Role != nil {
		set = append(set, `role = ?`)
		args = append(args, *upd.Role)
	}

	if len(set) == 0 {
		return current, nil
	}

	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(set, ", ") + ` WHERE user_id = ?`
	if _, err := db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return GetUserByID(db, id)
}

// DeleteUser removes a user. Owned posts go with it via the schema's
// ON DELETE CASCADE.
func DeleteUser(db *sqlx.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for user delete %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
