package identity

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/google/uuid"
)

// SignupInput contains input for student registration
type SignupInput struct {
	FullName  string `json:"fullname" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	Course    string `json:"course" binding:"required,program_code"`
	YearLevel int    `json:"year_level" binding:"required,min=1,max=6"`
}

// SignupResult contains the created account and its ledger
type SignupResult struct {
	User     UserResponse `json:"user"`
	LedgerID uuid.UUID    `json:"ledger_id"`
}

// LoginInput contains input for login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// ChangePasswordInput contains input for changing password
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72,nefield=CurrentPassword"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullname"`
	Course      string     `json:"course,omitempty"`
	YearLevel   int        `json:"year_level,omitempty"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Course:      u.Course,
		YearLevel:   u.YearLevel,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
