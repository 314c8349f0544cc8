package domain

import "strings"

type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceAway    Presence = "away"
	PresenceOffline Presence = "offline"
)

func (p Presence) Valid() bool {
	switch p {
	case PresenceOnline, PresenceAway, PresenceOffline:
		return true
	}
	return false
}

// User is a member of the community. Presence is static seed data.
type User struct {
	Email    Email    `json:"email" yaml:"email" validate:"required"`
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Presence Presence `json:"presence" yaml:"presence" validate:"required,oneof=online away offline"`
}

// Identity is what a completed sign-in resolves to.
type Identity struct {
	Email Email  `json:"email"`
	Name  string `json:"name"`
}

// NewIdentity falls back to the local part of the email when no display name is given.
func NewIdentity(email Email, name string) Identity {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return Identity{Email: email, Name: name}
}
