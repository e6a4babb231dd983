package data

import "errors"

var (
	// ErrNotFound is returned when a user or post id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLoginTaken is returned when a login is already registered.
	ErrLoginTaken = errors.New("login already registered")

	// ErrEmailTaken is returned when an email belongs to another user.
	ErrEmailTaken = errors.New("email already exists")

	// ErrNoLikes guards the like counter against going negative.
	ErrNoLikes = errors.New("cannot unlike: post has no likes")
)
