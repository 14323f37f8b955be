// Package authreq defines wire shapes for token and registration calls.
package authreq

// TokenRequest is the form-encoded login body. Username carries the
// account email, matching the password-grant convention.
type TokenRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterRequest is the JSON registration body.
type RegisterRequest struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	VerifyPassword string `json:"verify_password"`
}
