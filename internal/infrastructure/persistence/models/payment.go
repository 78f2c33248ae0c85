package models

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecordModel is the persistence model for a submitted payment
type PaymentRecordModel struct {
	AggregateModel
	TransactionID   string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	StudentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	FullName        string          `gorm:"type:varchar(100);not null"`
	MobileNumber    string          `gorm:"type:varchar(30);not null"`
	Email           string          `gorm:"type:varchar(200);not null;index"`
	ReferenceNumber string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method          payment.Method  `gorm:"type:varchar(20);not null"`
	ProofURL        string          `gorm:"type:varchar(1000);not null"`
	Status          payment.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	SubmittedAt     time.Time       `gorm:"not null;index"`
	VerifiedAt      *time.Time
	VerifiedBy      *uuid.UUID      `gorm:"type:uuid"`
	AppliedAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	UnappliedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain payment record
func (m *PaymentRecordModel) ToDomain() *payment.Record {
	return &payment.Record{
		BaseAggregateRoot: m.ToAggregateRoot(),
		TransactionID:     m.TransactionID,
		StudentID:         m.StudentID,
		FullName:          m.FullName,
		MobileNumber:      m.MobileNumber,
		Email:             m.Email,
		ReferenceNumber:   m.ReferenceNumber,
		Amount:            valueobject.NewMoney(m.Amount),
		Method:            m.Method,
		ProofURL:          m.ProofURL,
		Status:            m.Status,
		SubmittedAt:       m.SubmittedAt,
		VerifiedAt:        m.VerifiedAt,
		VerifiedBy:        m.VerifiedBy,
		AppliedAmount:     valueobject.NewMoney(m.AppliedAmount),
		UnappliedAmount:   valueobject.NewMoney(m.UnappliedAmount),
	}
}

// PaymentRecordModelFromDomain creates a persistence model from a domain record
func PaymentRecordModelFromDomain(r *payment.Record) *PaymentRecordModel {
	m := &PaymentRecordModel{
		TransactionID:   r.TransactionID,
		StudentID:       r.StudentID,
		FullName:        r.FullName,
		MobileNumber:    r.MobileNumber,
		Email:           r.Email,
		ReferenceNumber: r.ReferenceNumber,
		Amount:          r.Amount.Amount(),
		Method:          r.Method,
		ProofURL:        r.ProofURL,
		Status:          r.Status,
		SubmittedAt:     r.SubmittedAt,
		VerifiedAt:      r.VerifiedAt,
		VerifiedBy:      r.VerifiedBy,
		AppliedAmount:   r.AppliedAmount.Amount(),
		UnappliedAmount: r.UnappliedAmount.Amount(),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
