package models

import "time"

// User is a registered account. PasswordHash is Argon2id(password, Salt).
type User struct {
	ID           string
	Name         string
	Email        string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
