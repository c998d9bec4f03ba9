package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Person    *Person   `json:"person,omitempty"`
}

// Person is the optional profile record attached to a user at registration.
type Person struct {
	UserID     int64   `json:"user_id"`
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	DocumentID *string `json:"document_id,omitempty"`
	Gender     string  `json:"gender"`
}

// AuthResult is returned on a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
