package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tucarro/tucarro/internal/common/auth"
	"github.com/tucarro/tucarro/internal/common/config"
)

// 用户字段约束
const (
	FirstNameMinLen = 2
	FirstNameMaxLen = 50
	LastNameMinLen  = 2
	LastNameMaxLen  = 50
	EmailMaxLen     = 100
	PasswordMinLen  = 6
	PasswordMaxLen  = 100
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
)

// Service 封装用户注册/登录/资料的核心用例。
type Service struct {
	repo    Repository
	authCfg config.AuthConfig
}

func NewService(repo Repository, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TokenResult 登录签发的访问令牌。
type TokenResult struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        *User     `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := validateName(in.FirstName, "first name", FirstNameMinLen, FirstNameMaxLen); err != nil {
		return nil, err
	}
	if err := validateName(in.LastName, "last name", LastNameMinLen, LastNameMaxLen); err != nil {
		return nil, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Roles:        RolesJoin([]string{"user"}),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验邮箱与口令，签发访问令牌。
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	ttl := time.Duration(s.authCfg.TokenTTLMin) * time.Minute
	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Email, u.RolesSlice(), ttl)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        u,
	}, nil
}

// Profile 查询用户资料。
func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateProfileInput 资料部分更新：nil 字段保持原值。
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// UpdateProfile 更新姓名字段，邮箱不可变更。
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		if err := validateName(*in.FirstName, "first name", FirstNameMinLen, FirstNameMaxLen); err != nil {
			return nil, err
		}
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if err := validateName(*in.LastName, "last name", LastNameMinLen, LastNameMaxLen); err != nil {
			return nil, err
		}
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword 校验旧口令后更新口令哈希。
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	u, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if !VerifyPassword(oldPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.repo.Update(ctx, u)
}

// Exists 满足车辆服务的 UserDirectory 端口。
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("service not initialized")
	}
	return s.repo.ExistsByID(ctx, strings.TrimSpace(id))
}

func validateName(name, field string, minLen, maxLen int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(name) < minLen || len(name) > maxLen {
		return fmt.Errorf("%s length must be between %d and %d", field, minLen, maxLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%s may only contain letters and spaces", field)
	}
	return nil
}

func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email is required")
	}
	if len(email) > EmailMaxLen {
		return "", fmt.Errorf("email must not exceed %d characters", EmailMaxLen)
	}
	if !emailPattern.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < PasswordMinLen || len(password) > PasswordMaxLen {
		return fmt.Errorf("password length must be between %d and %d", PasswordMinLen, PasswordMaxLen)
	}
	return nil
}
