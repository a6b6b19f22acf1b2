package auth

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is the token part of login, register and refresh responses
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the body returned by POST /auth/refresh
type RefreshResponse struct {
	Data *TokenPair `json:"data"`
}
