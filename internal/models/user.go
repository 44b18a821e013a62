package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the subset of the users table relevant to notifications and authorship.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
