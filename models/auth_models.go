package models

// RegisterRequest represents the body of POST /register.
type RegisterRequest struct {
	Login     string  `json:"login"`
	Password  string  `json:"password"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      string  `json:"role"`
}

// TokenResponse is returned by /register and /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
