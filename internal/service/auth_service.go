package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
}

// AuthUserStore is the user lookup surface the auth service needs.
type AuthUserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByExamNumber(ctx context.Context, examNumber string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id int, passwordHash string) error
}

// AuthService handles password hashing, JWT issuing and login.
type AuthService struct {
	cfg   *config.Config
	users AuthUserStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users AuthUserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a signed JWT for a user.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Login authenticates a student by exam number or an admin by email and
// issues a token. Lookup failures and password mismatches collapse into
// ErrInvalidCredentials so the response never reveals which part was wrong.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case req.ExamNumber != "":
		user, err = s.users.GetByExamNumber(ctx, strings.ToUpper(strings.TrimSpace(req.ExamNumber)))
	case req.Email != "":
		user, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if !s.adminFallbackMatches(user, req) {
			return nil, ErrInvalidCredentials
		}
		// Stored hash is stale or was seeded as plaintext; rewrite it from
		// the configured credentials and let the login proceed.
		hash, hashErr := s.HashPassword(req.Password)
		if hashErr != nil {
			return nil, fmt.Errorf("rehash admin password: %w", hashErr)
		}
		if updErr := s.users.UpdatePasswordHash(ctx, user.ID, hash); updErr != nil {
			return nil, fmt.Errorf("store admin password: %w", updErr)
		}
		user.PasswordHash = hash
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: user}, nil
}

// adminFallbackMatches reports whether the submitted credentials equal the
// ADMIN_EMAIL/ADMIN_PASSWORD pair for the admin account being logged into.
func (s *AuthService) adminFallbackMatches(user *model.User, req *model.LoginRequest) bool {
	return user.Role == model.RoleAdmin &&
		s.cfg.AdminEmail != "" &&
		s.cfg.AdminPassword != "" &&
		strings.EqualFold(user.Email, s.cfg.AdminEmail) &&
		req.Password == s.cfg.AdminPassword
}
