package persistence

import (
	"context"
	"errors"

	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPermitRepository implements permit.Repository using GORM
type GormPermitRepository struct {
	db *gorm.DB
}

// NewGormPermitRepository creates a new GormPermitRepository
func NewGormPermitRepository(db *gorm.DB) *GormPermitRepository {
	return &GormPermitRepository{db: db}
}

// Create appends an issued permit
func (r *GormPermitRepository) Create(ctx context.Context, p *permit.Permit) error {
	if err := conn(ctx, r.db).Create(models.PermitModelFromDomain(p)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.ErrConflict.Code, "Permit number "+p.PermitNo+" already issued")
		}
		return err
	}
	return nil
}

// FindByStudentID lists a student's permits, newest first
func (r *GormPermitRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) ([]*permit.Permit, error) {
	var rows []models.PermitModel
	if err := conn(ctx, r.db).
		Where("student_id = ?", studentID).
		Order("issued_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	permits := make([]*permit.Permit, len(rows))
	for i := range rows {
		permits[i] = rows[i].ToDomain()
	}
	return permits, nil
}

// FindByPermitNo loads a permit by its number
func (r *GormPermitRepository) FindByPermitNo(ctx context.Context, permitNo string) (*permit.Permit, error) {
	var model models.PermitModel
	if err := conn(ctx, r.db).Where("permit_no = ?", permitNo).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permit.ErrPermitNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ permit.Repository = (*GormPermitRepository)(nil)
