package core

// User is the authenticated identity returned by the auth gateway.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Credentials are submitted on login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the payload of a successful login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
