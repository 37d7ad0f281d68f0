// Package directory wraps the managed user directory (Firebase
// Authentication) behind a small interface so handlers and tests never
// touch the Google API directly.
package directory

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no directory record matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// User is a directory record.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// CreateUserParams holds the attributes of a record to provision. UID is the
// synthetic id chosen by the caller ("kakao:12345"), never directory-assigned.
type CreateUserParams struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Service exposes the two directory operations the exchange needs: an
// idempotent read and an additive write. Existing records are never
// updated or deleted.
type Service interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
}
