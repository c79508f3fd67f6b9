package models

import "time"

// Theme is the colour scheme the portal renders with.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a supported theme.
func (t Theme) Valid() bool { return t == ThemeDark || t == ThemeLight }

// Opposite returns the theme a toggle switches to.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// MetaColor is the browser chrome colour that matches the theme.
func (t Theme) MetaColor() string {
	if t == ThemeLight {
		return "#ffffff"
	}
	return "#000000"
}

// ThemeSource tells where a resolved theme came from.
type ThemeSource string

const (
	ThemeSourceSaved   ThemeSource = "saved"
	ThemeSourceSystem  ThemeSource = "system"
	ThemeSourceDefault ThemeSource = "default"
)

// ThemePreference is the resolved theme for a client.
type ThemePreference struct {
	ClientID string      `json:"client_id"`
	Theme    Theme       `json:"theme"`
	Source   ThemeSource `json:"source"`
	Color    string      `json:"theme_color"`
}

// ThemeChange is published whenever a client's theme changes.
type ThemeChange struct {
	ClientID  string    `json:"client_id"`
	OldTheme  Theme     `json:"old_theme"`
	NewTheme  Theme     `json:"new_theme"`
	Saved     bool      `json:"saved"`
	ChangedAt time.Time `json:"changed_at"`
}
