package domain

import (
	"time"
)

// User is an author and reader on the platform. Users are created through
// the auth endpoints; everything else treats them as immutable identities.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`

	// Password is only ever set on incoming signup/login payloads.
	// It is cleared after hashing and never stored.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"not null"`

	// Remember is the raw session token held by the client's cookie.
	// Only its HMAC ends up in the database.
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"not null;uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It doubles as the backend of the auth system.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(username, password string) (*User, error)
	Create(user *User) error
	Update(user *User) error
	Delete(id int) error
}
