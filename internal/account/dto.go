// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

// CreateUserParams is the service-level create input. IsVerified defaults
// to false for self-service registration; seeding code may set it.
type CreateUserParams struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	IsActive   bool
	IsAdmin    bool
	IsVerified bool
}

// UpdateUserParams is a partial change-set. A nil field means "leave
// unchanged"; a set field is applied. Password is hashed by the service
// before anything touches storage.
type UpdateUserParams struct {
	Email      *string
	Password   *string
	FirstName  *string
	LastName   *string
	IsActive   *bool
	IsAdmin    *bool
	IsVerified *bool
}

// UserChanges is the change-set actually applied by the repository.
// It carries a password hash, never a plaintext password.
type UserChanges struct {
	Email          *string
	HashedPassword *string
	FirstName      *string
	LastName       *string
	IsActive       *bool
	IsAdmin        *bool
	IsVerified     *bool
}

func (c UserChanges) IsEmpty() bool {
	return c.Email == nil &&
		c.HashedPassword == nil &&
		c.FirstName == nil &&
		c.LastName == nil &&
		c.IsActive == nil &&
		c.IsAdmin == nil &&
		c.IsVerified == nil
}

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UpdateAccountRequest is the admin-surface change-set.
type UpdateAccountRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
	Password  *string `json:"password,omitempty"   validate:"omitempty,min=8,max=128"`
}

// UpdateOwnAccountRequest is the self-service change-set. The current
// password is required as proof of ownership on every change.
type UpdateOwnAccountRequest struct {
	CurrentPassword string  `json:"current_password"     validate:"required,min=8,max=128"`
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
	Password        *string `json:"password,omitempty"   validate:"omitempty,min=8,max=128"`
}

type UpdateAccountStatusRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsAdmin  *bool `json:"is_admin,omitempty"`
}

type RequestVerificationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ConfirmVerificationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Token string `json:"token" validate:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ConfirmPasswordResetRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type AccountResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsAdmin    bool      `json:"is_admin"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TokenIssuedResponse struct {
	Token  string    `json:"token"`
	SentAt time.Time `json:"sent_at"`
}

type ListAccountsParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Verified *bool  `json:"verified"`
	Active   *bool  `json:"active"`
}

func (p *ListAccountsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListAccountsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToAccountResponse(u *User) AccountResponse {
	return AccountResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		IsActive:   u.IsActive,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToAccountResponseList(users []User) []AccountResponse {
	responses := make([]AccountResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToAccountResponse(&u))
	}
	return responses
}
