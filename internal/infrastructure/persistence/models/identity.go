package models

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email             string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash      string        `gorm:"type:varchar(255);not null"`
	FullName          string        `gorm:"type:varchar(50);not null"`
	Course            string        `gorm:"type:varchar(20);index"`
	YearLevel         int           `gorm:"not null;default:0"`
	Role              identity.Role `gorm:"type:varchar(20);not null;default:'student'"`
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		Course:            m.Course,
		YearLevel:         m.YearLevel,
		Role:              m.Role,
		LastLoginAt:       m.LastLoginAt,
		PasswordChangedAt: m.PasswordChangedAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		FullName:          u.FullName,
		Course:            u.Course,
		YearLevel:         u.YearLevel,
		Role:              u.Role,
		LastLoginAt:       u.LastLoginAt,
		PasswordChangedAt: u.PasswordChangedAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
