package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		ExamNumberPrefix: "GH",
	}
}

func seedStudent(t *testing.T, svc *AuthService, users *fakeUserStore, examNumber, surname string) *model.User {
	t.Helper()
	hash, err := svc.HashPassword(surname)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &model.User{
		ExamNumber:   &examNumber,
		Surname:      surname,
		FirstName:    "Test",
		FullName:     surname + " Test",
		Email:        "student@example.com",
		Role:         model.RoleStudent,
		PasswordHash: hash,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return user
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := NewAuthService(testConfig(), &fakeUserStore{})

	hash, err := svc.HashPassword("Okafor")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Okafor" {
		t.Fatal("password stored in plaintext")
	}
	if err := svc.CheckPassword(hash, "Okafor"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testConfig(), &fakeUserStore{})
	user := &model.User{ID: 42, Role: model.RoleStudent}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RoleStudent {
		t.Errorf("claims = %+v, want user 42 / student", claims)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := NewAuthService(testConfig(), &fakeUserStore{})
	token, err := svc.GenerateToken(&model.User{ID: 1, Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}, &fakeUserStore{})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with different secret accepted")
	}
}

func TestLoginByExamNumber(t *testing.T) {
	users := &fakeUserStore{}
	svc := NewAuthService(testConfig(), users)
	seedStudent(t, svc, users, "GH251234", "Okafor")

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		ExamNumber: "gh251234", // case-insensitive lookup
		Password:   "Okafor",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token issued")
	}
	if resp.User.Email != "student@example.com" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &fakeUserStore{}
	svc := NewAuthService(testConfig(), users)
	seedStudent(t, svc, users, "GH251234", "Okafor")

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		ExamNumber: "GH251234",
		Password:   "not-the-surname",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(testConfig(), &fakeUserStore{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAdminPlaintextFallbackRehash(t *testing.T) {
	cfg := testConfig()
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "bootstrap-pass"

	users := &fakeUserStore{}
	svc := NewAuthService(cfg, users)

	// Seed an admin whose stored hash does not match the configured password,
	// simulating a seeded or manually edited row.
	admin := &model.User{
		Surname:      "Adeyemi",
		FirstName:    "Bola",
		FullName:     "Adeyemi Bola",
		Email:        "admin@example.com",
		Role:         model.RoleAdmin,
		PasswordHash: "not-a-bcrypt-hash",
	}
	if err := users.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "admin@example.com",
		Password: "bootstrap-pass",
	})
	if err != nil {
		t.Fatalf("fallback login: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token issued")
	}

	// The hash must have been rewritten; a second login now succeeds through
	// the normal bcrypt path.
	stored, _ := users.GetByEmail(context.Background(), "admin@example.com")
	if stored.PasswordHash == "not-a-bcrypt-hash" {
		t.Fatal("hash not rewritten")
	}
	if err := svc.CheckPassword(stored.PasswordHash, "bootstrap-pass"); err != nil {
		t.Errorf("rewritten hash does not verify: %v", err)
	}
}

func TestFallbackDoesNotApplyToStudents(t *testing.T) {
	cfg := testConfig()
	cfg.AdminEmail = "student@example.com"
	cfg.AdminPassword = "bootstrap-pass"

	users := &fakeUserStore{}
	svc := NewAuthService(cfg, users)
	seedStudent(t, svc, users, "GH251234", "Okafor")

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "student@example.com",
		Password: "bootstrap-pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials (fallback is admin-only)", err)
	}
}
