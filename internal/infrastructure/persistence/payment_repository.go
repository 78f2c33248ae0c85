package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create persists a new pending record
func (r *GormPaymentRepository) Create(ctx context.Context, record *payment.Record) error {
	if err := conn(ctx, r.db).Create(models.PaymentRecordModelFromDomain(record)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return payment.ErrReferenceNumberUsed
		}
		return err
	}
	return nil
}

// FindByTransactionID loads a record by its transaction id
func (r *GormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*payment.Record, error) {
	var model models.PaymentRecordModel
	if err := conn(ctx, r.db).Where("transaction_id = ?", transactionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByReferenceNumber checks whether a reference number was already submitted
func (r *GormPaymentRepository) ExistsByReferenceNumber(ctx context.Context, referenceNumber string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.PaymentRecordModel{}).
		Where("reference_number = ?", referenceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists records matching the filter. A non-positive page size
// returns every match.
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]*payment.Record, int64, error) {
	query := conn(ctx, r.db).Model(&models.PaymentRecordModel{})
	if filter.Email != "" {
		query = query.Where("email = ?", identity.NormalizeEmail(filter.Email))
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, paymentOrderColumns, "created_at"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.PaymentRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	records := make([]*payment.Record, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, total, nil
}

// TransitionFromPending flips the status with a conditional update so only
// one verifier can win. Zero affected rows means the record is unknown or
// was already verified.
func (r *GormPaymentRepository) TransitionFromPending(ctx context.Context, transactionID string, to payment.Status, verifiedBy uuid.UUID, at time.Time) error {
	if !to.IsTerminal() {
		return fmt.Errorf("invalid target status %q", to)
	}
	db := conn(ctx, r.db)
	result := db.Model(&models.PaymentRecordModel{}).
		Where("transaction_id = ? AND status = ?", transactionID, payment.StatusPending).
		Updates(map[string]any{
			"status":      to,
			"verified_at": at,
			"verified_by": verifiedBy,
			"updated_at":  at,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.Model(&models.PaymentRecordModel{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return payment.ErrPaymentNotFound
	}
	return payment.ErrAlreadyVerified
}

// RecordSettlement stores the applied and unapplied parts of an accepted payment
func (r *GormPaymentRepository) RecordSettlement(ctx context.Context, transactionID string, applied, unapplied valueobject.Money) error {
	result := conn(ctx, r.db).Model(&models.PaymentRecordModel{}).
		Where("transaction_id = ? AND status = ?", transactionID, payment.StatusAccepted).
		Updates(map[string]any{
			"applied_amount":   applied.Amount(),
			"unapplied_amount": unapplied.Amount(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
