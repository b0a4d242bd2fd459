package dto

// SessionRequest carries Google OAuth tokens obtained by the frontend flow.
type SessionRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse reports the current authentication state.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}
