// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CredentialsRequest is the body of both signup and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse is returned on successful signup.
type SignupResponse struct {
	Email string `json:"email"`
	JWT   string `json:"jwt"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	JWT       string `json:"jwt"`
	TokenType string `json:"token_type"`
}
