package domain

import "time"

type UserID string

type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
