package models

import (
	"database/sql"
	"time"
)

// User is the identity row kept in PostgreSQL. A global erase scrubs the
// personal fields in place and stamps ErasedAt; the id is preserved so
// existing resource links and audit references remain valid.
type User struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	ErasedAt  sql.NullTime `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

// Erased reports whether the user's personal fields have been scrubbed.
func (u *User) Erased() bool { return u.ErasedAt.Valid }
