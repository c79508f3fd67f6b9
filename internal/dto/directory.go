package dto

import "github.com/noah-isme/dcu-portal-api/internal/directory"

// IntentRequest is one user input sent to an interactive directory session.
type IntentRequest struct {
	Type      string `json:"type" validate:"required,oneof=search category sort page page_delta"`
	Text      string `json:"text" validate:"max=100"`
	Category  string `json:"category"`
	Sort      string `json:"sort"`
	Page      int    `json:"page"`
	Delta     int    `json:"delta"`
	Immediate bool   `json:"immediate"`
}

// SessionResponse describes an interactive directory session.
type SessionResponse struct {
	ID   string         `json:"id"`
	View directory.View `json:"view"`
}

// ThemeRequest sets an explicit theme.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// ReadinessResponse reports the state of each dependency.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
