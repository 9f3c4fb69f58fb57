package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-alerts/internal/domain/auth"
)

// ErrUserExists 表示 username 或 email 已被註冊。
var ErrUserExists = errors.New("user or email already exists")

// UserRepository 存取使用者。
type UserRepository interface {
	Create(ctx context.Context, user auth.User) (int64, error)
	FindByUsername(ctx context.Context, username string) (auth.User, error)
	FindByID(ctx context.Context, id int64) (auth.User, error)
	UpdateEmail(ctx context.Context, userID int64, email string) error
}

// PasswordHasher 產生與驗證密碼雜湊。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) bool
}

// TokenIssuer 簽發 access token。
type TokenIssuer interface {
	Issue(ctx context.Context, user auth.User) (string, time.Time, error)
}

// RegisterUseCase 建立新帳號。
type RegisterUseCase struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewRegisterUseCase 建立註冊用例。
func NewRegisterUseCase(users UserRepository, hasher PasswordHasher) *RegisterUseCase {
	return &RegisterUseCase{users: users, hasher: hasher}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (int64, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || input.Password == "" || email == "" {
		return 0, errors.New("username, password, and email required")
	}
	if !auth.ValidEmail(email) {
		return 0, errors.New("invalid email format")
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := uc.users.Create(ctx, auth.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LoginUseCase 驗證帳密並簽發 token。
type LoginUseCase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewLoginUseCase 建立登入用例。
func NewLoginUseCase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{users: users, hasher: hasher, tokens: tokens}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	User      auth.User
	Token     string
	ExpiresAt time.Time
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	if input.Username == "" || input.Password == "" {
		return out, errors.New("username and password required")
	}

	user, err := uc.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return out, errors.New("invalid username or password")
	}
	if !uc.hasher.Compare(user.PasswordHash, input.Password) {
		return out, errors.New("invalid username or password")
	}

	token, expires, err := uc.tokens.Issue(ctx, user)
	if err != nil {
		return out, fmt.Errorf("issue token: %w", err)
	}

	out.User = user
	out.Token = token
	out.ExpiresAt = expires
	return out, nil
}

// UpdateEmailUseCase 更新使用者 email。
type UpdateEmailUseCase struct {
	users UserRepository
}

// NewUpdateEmailUseCase 建立 email 更新用例。
func NewUpdateEmailUseCase(users UserRepository) *UpdateEmailUseCase {
	return &UpdateEmailUseCase{users: users}
}

func (uc *UpdateEmailUseCase) Execute(ctx context.Context, userID int64, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !auth.ValidEmail(email) {
		return errors.New("invalid or missing email")
	}
	return uc.users.UpdateEmail(ctx, userID, email)
}
