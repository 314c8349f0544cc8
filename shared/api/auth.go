package api

import "github.com/itchan-dev/aurum/shared/domain"

// Request DTOs

type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,max=320"`
	Name  string `json:"name,omitempty" validate:"max=100"`
}

// Response DTOs

type MagicLinkResponse struct {
	Message string       `json:"message"`
	Email   domain.Email `json:"email"`
	// Milliseconds until the simulated link is followed
	DelayMs int64 `json:"delay_ms"`
}

type MeResponse struct {
	domain.Identity
}

type LogoutResponse struct {
	Message string `json:"message"`
}
