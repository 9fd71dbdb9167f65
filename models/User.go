package models

import "time"

type User struct {
	ID           uint       `json:"ID"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber"`
	Role         string     `json:"role"` // buyer, owner, agent
	AvatarURL    string     `json:"avatarURL"`
	DateOfBirth  string     `json:"dateOfBirth"`
	AadhaarLast4 string     `json:"aadhaarLast4"`
	IsBlocked    bool       `json:"isBlocked"`
	BlockReason  string     `json:"blockReason,omitempty"`
	BlockedAt    *time.Time `json:"blockedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
