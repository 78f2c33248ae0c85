package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements tuition.LedgerRepository using GORM.
// Term rows are updated in place with arithmetic increments so concurrent
// writers never overwrite each other's figures.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Semesters", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Semesters.Terms", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") })
}

// Create persists a new ledger with all semesters and terms
func (r *GormLedgerRepository) Create(ctx context.Context, ledger *tuition.TuitionLedger) error {
	if err := conn(ctx, r.db).Create(models.TuitionLedgerModelFromDomain(ledger)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tuition.ErrLedgerAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID loads a ledger by its id
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.TuitionLedger, error) {
	return r.findOne(r.withTree(conn(ctx, r.db)).Where("id = ?", id))
}

// FindByStudentID loads the ledger of a student
func (r *GormLedgerRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*tuition.TuitionLedger, error) {
	return r.findOne(r.withTree(conn(ctx, r.db)).Where("student_id = ?", studentID))
}

// FindByStudentIDForUpdate loads the ledger and, on PostgreSQL, holds a row
// lock on it until the surrounding transaction ends.
func (r *GormLedgerRepository) FindByStudentIDForUpdate(ctx context.Context, studentID uuid.UUID) (*tuition.TuitionLedger, error) {
	db := conn(ctx, r.db)
	if isPostgres(db) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(r.withTree(db).Where("student_id = ?", studentID))
}

func (r *GormLedgerRepository) findOne(query *gorm.DB) (*tuition.TuitionLedger, error) {
	var model models.TuitionLedgerModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tuition.ErrLedgerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByStudentID checks whether a student already has a ledger
func (r *GormLedgerRepository) ExistsByStudentID(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.TuitionLedgerModel{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyAllocations writes allocations as guarded per-term increments and
// per-semester aggregate increments, then re-reads the touched terms and
// compares them with ledger, which must already carry the allocations.
// Any mismatch is an invariant violation; callers run this inside a
// transaction so the whole write is rolled back.
func (r *GormLedgerRepository) ApplyAllocations(ctx context.Context, ledger *tuition.TuitionLedger, allocations []tuition.TermAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	db := conn(ctx, r.db)

	perSemester := make(map[uuid.UUID]valueobject.Money)
	semesterOrder := make([]uuid.UUID, 0)
	termIDs := make([]uuid.UUID, 0, len(allocations))

	for _, a := range allocations {
		amount := a.Applied.Amount()
		result := db.Model(&models.TuitionTermModel{}).
			Where("id = ? AND ledger_id = ? AND balance >= ?", a.TermID, ledger.ID, amount).
			Updates(map[string]any{
				"paid":    gorm.Expr("paid + ?", amount),
				"balance": gorm.Expr("balance - ?", amount),
			})
		if result.Error != nil {
			return fmt.Errorf("apply allocation to term %s: %w", a.TermID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.ErrInvariantViolation.Code,
				fmt.Sprintf("term %s cannot take %s", a.TermName, a.Applied))
		}

		if _, seen := perSemester[a.SemesterID]; !seen {
			semesterOrder = append(semesterOrder, a.SemesterID)
			perSemester[a.SemesterID] = valueobject.Zero()
		}
		perSemester[a.SemesterID] = perSemester[a.SemesterID].Add(a.Applied)
		termIDs = append(termIDs, a.TermID)
	}

	for _, id := range semesterOrder {
		amount := perSemester[id].Amount()
		result := db.Model(&models.TuitionSemesterModel{}).
			Where("id = ? AND ledger_id = ?", id, ledger.ID).
			Updates(map[string]any{
				"total_payments":    gorm.Expr("total_payments + ?", amount),
				"remaining_balance": gorm.Expr("remaining_balance - ?", amount),
			})
		if result.Error != nil {
			return fmt.Errorf("apply allocation to semester %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.ErrInvariantViolation.Code,
				fmt.Sprintf("semester %s not found in ledger %s", id, ledger.ID))
		}
	}

	if err := r.touch(db, ledger); err != nil {
		return err
	}
	return r.verifyTerms(db, ledger, termIDs)
}

// verifyTerms compares stored term figures with the in-memory ledger
func (r *GormLedgerRepository) verifyTerms(db *gorm.DB, ledger *tuition.TuitionLedger, termIDs []uuid.UUID) error {
	var stored []models.TuitionTermModel
	if err := db.Where("id IN ?", termIDs).Find(&stored).Error; err != nil {
		return fmt.Errorf("reload terms: %w", err)
	}
	for _, row := range stored {
		_, term, err := ledger.FindTerm(row.ID)
		if err != nil {
			return err
		}
		paid, balance := valueobject.NewMoney(row.Paid), valueobject.NewMoney(row.Balance)
		if !paid.Equals(term.Paid) || !balance.Equals(term.Balance) {
			return shared.NewDomainError(shared.ErrInvariantViolation.Code,
				fmt.Sprintf("term %s stored paid %s balance %s, expected paid %s balance %s",
					term.Name, paid, balance, term.Paid, term.Balance))
		}
	}
	return nil
}

func (r *GormLedgerRepository) touch(db *gorm.DB, ledger *tuition.TuitionLedger) error {
	updatedAt := ledger.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return db.Model(&models.TuitionLedgerModel{}).
		Where("id = ?", ledger.ID).
		Updates(map[string]any{
			"version":    ledger.Version,
			"updated_at": updatedAt,
		}).Error
}

// IncrementPermitRequested bumps the permit counter of one term
func (r *GormLedgerRepository) IncrementPermitRequested(ctx context.Context, ledgerID, termID uuid.UUID) error {
	result := conn(ctx, r.db).Model(&models.TuitionTermModel{}).
		Where("id = ? AND ledger_id = ?", termID, ledgerID).
		Update("exam_permit_requested", gorm.Expr("exam_permit_requested + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tuition.ErrTermNotFound
	}
	return nil
}

var _ tuition.LedgerRepository = (*GormLedgerRepository)(nil)
