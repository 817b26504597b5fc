package dto

import (
	"github.com/clinicsys/clinic-services/internal/domain"
	"github.com/clinicsys/clinic-services/internal/service"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the public identity summary; it never carries hash material.
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Verified    bool   `json:"verified"`
}

// AuthResponse is the standard token-pair envelope.
type AuthResponse struct {
	AccessToken     string   `json:"accessToken"`
	RefreshToken    string   `json:"refreshToken"`
	TokenType       string   `json:"tokenType"`
	ExpiresInMillis int64    `json:"expiresInMillis"`
	User            UserInfo `json:"user"`
}

// NewUserInfo maps a domain user onto its public summary.
func NewUserInfo(user *domain.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Role:        string(user.Role),
		Verified:    user.Verified,
	}
}

// NewAuthResponse maps an auth result onto the wire envelope.
func NewAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		TokenType:       "Bearer",
		ExpiresInMillis: result.ExpiresIn.Milliseconds(),
		User:            NewUserInfo(result.User),
	}
}
