package users

import "time"

// User represents an account holder. PasswordHash never leaves the
// service layer.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Response is the client-facing shape of a user.
type Response struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewResponse maps a stored user to its client-facing shape.
func NewResponse(u *User) Response {
	return Response{
		ID:       u.ID,
		Username: u.Username,
	}
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the payload for opening a session
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
