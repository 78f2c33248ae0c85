package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the portal role of a user
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	minFullNameLength = 3
	maxFullNameLength = 50
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Identity errors
var (
	ErrUserNotFound      = shared.NewDomainError("USER_NOT_FOUND", "User not found")
	ErrEmailTaken        = shared.NewDomainError("ALREADY_EXISTS", "Email has already been used")
	ErrEmailNotFound     = shared.NewDomainError("UNAUTHORIZED", "Email doesn't exists")
	ErrWrongPassword     = shared.NewDomainError("UNAUTHORIZED", "Wrong password")
	ErrIncorrectPassword = shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
)

// User is a portal account. Students own exactly one tuition ledger.
type User struct {
	shared.BaseAggregateRoot
	Email             string
	PasswordHash      string
	FullName          string
	Course            string
	YearLevel         int
	Role              Role
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// NewUser creates a user and hashes the password
func NewUser(email, password, fullName, course string, yearLevel int, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be student or admin")
	}
	if role == RoleStudent {
		if strings.TrimSpace(course) == "" {
			return nil, shared.NewDomainError("INVALID_COURSE", "Course is required")
		}
		if yearLevel < 1 {
			return nil, shared.NewDomainError("INVALID_YEAR_LEVEL", "Year level must be positive")
		}
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(fullName),
		Course:            strings.ToUpper(strings.TrimSpace(course)),
		YearLevel:         yearLevel,
		Role:              role,
		PasswordChangedAt: &now,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// NewStudent creates a student account
func NewStudent(email, password, fullName, course string, yearLevel int) (*User, error) {
	return NewUser(email, password, fullName, course, yearLevel, RoleStudent)
}

// ChangePassword replaces the password after checking the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return ErrIncorrectPassword
	}
	return u.SetPassword(next)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// IsAdmin reports whether the user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateFullName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minFullNameLength || n > maxFullNameLength {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name must be between 3 and 50 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
