package model

import "time"

// Role distinguishes administrators from exam candidates.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Sex represents the candidate's sex as captured on the registration form.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// User represents a platform user: an exam candidate or an administrator.
// ExamNumber, ExamGroup and ExamDateTime are populated for students only;
// they are computed once at registration and never recomputed automatically.
type User struct {
	ID            int        `json:"id"`
	ExamNumber    *string    `json:"exam_number,omitempty"`
	Surname       string     `json:"surname"`
	FirstName     string     `json:"first_name"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Sex           Sex        `json:"sex,omitempty"`
	StateOfOrigin string     `json:"state_of_origin,omitempty"`
	Nationality   string     `json:"nationality"`
	Role          Role       `json:"role"`
	PasswordHash  string     `json:"-"`
	ExamGroup     int        `json:"exam_group"`
	ExamDateTime  *time.Time `json:"exam_datetime,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RegisterRequest is the payload for candidate self-registration.
// The initial password is the candidate's surname; it is hashed before
// persistence and should be changed at first login.
type RegisterRequest struct {
	Surname       string `json:"surname" binding:"required,min=2,max=100"`
	FirstName     string `json:"first_name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email,max=255"`
	PhoneNumber   string `json:"phone_number" binding:"required,min=7,max=20"`
	DateOfBirth   string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Sex           Sex    `json:"sex" binding:"required,oneof=Male Female"`
	StateOfOrigin string `json:"state_of_origin" binding:"required,max=100"`
	Nationality   string `json:"nationality" binding:"omitempty,max=100"`
}

// LoginRequest authenticates a student by exam number or an admin by email.
type LoginRequest struct {
	ExamNumber string `json:"exam_number" binding:"omitempty,len=8"`
	Email      string `json:"email" binding:"omitempty,email"`
	Password   string `json:"password" binding:"required,min=2,max=128"`
}

// CreateAdminRequest is the payload for creating an administrator account.
type CreateAdminRequest struct {
	Surname   string `json:"surname" binding:"required,min=2,max=100"`
	FirstName string `json:"first_name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login or registration.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
