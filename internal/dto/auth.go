package dto

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by both signup and login with a bearer token the
// client stores locally.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UserSummary is the minimal user projection nested in incident and note
// payloads.
type UserSummary struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
