package models

// User represents a registered account. The password hash is never
// serialized to clients.
type User struct {
	UserID         int64   `json:"user_id" db:"user_id"`
	Login          string  `json:"login" db:"login"`
	Email          *string `json:"email" db:"email"`
	HashedPassword string  `json:"-" db:"hashed_password"`
	FirstName      *string `json:"first_name" db:"first_name"`
	LastName       *string `json:"last_name" db:"last_name"`
	Phone          *string `json:"phone" db:"phone"`
	Role           string  `json:"role" db:"role"`
}

// UserWithPosts is the full user payload with the account's posts embedded,
// returned by /api/me, /api/users and user updates.
type UserWithPosts struct {
	User
	Posts []Post `json:"posts"`
}

// UserUpdateRequest carries a partial profile update. Nil fields are left
// untouched; a present password is hashed before storage.
type UserUpdateRequest struct {
	Login     *string `json:"login"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
}

// UsersPage is the paged envelope for user listings.
type UsersPage struct {
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	Users      []UserWithPosts `json:"users"`
}
