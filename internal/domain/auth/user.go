package auth

import (
	"errors"
	"regexp"
	"time"
)

// User 基本帳號資料。
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ValidEmail 檢查 email 格式。
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate 基本欄位檢查。
func (u User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !ValidEmail(u.Email) {
		return errors.New("invalid email format")
	}
	if u.PasswordHash == "" {
		return errors.New("password_hash is required")
	}
	return nil
}
