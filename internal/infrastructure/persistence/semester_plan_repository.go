package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSemesterPlanRepository implements catalog.SemesterPlanRepository using GORM
type GormSemesterPlanRepository struct {
	db *gorm.DB
}

// NewGormSemesterPlanRepository creates a new GormSemesterPlanRepository
func NewGormSemesterPlanRepository(db *gorm.DB) *GormSemesterPlanRepository {
	return &GormSemesterPlanRepository{db: db}
}

func orderedCourses(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ReplacePrograms deletes the stored plans of programCodes and writes plans
// in one transaction, so readers see either the old or the new catalog.
func (r *GormSemesterPlanRepository) ReplacePrograms(ctx context.Context, programCodes []string, plans []*catalog.SemesterPlan) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if len(programCodes) > 0 {
			stale := tx.Model(&models.SemesterPlanModel{}).
				Select("id").
				Where("program_code IN ?", programCodes)
			if err := tx.Where("semester_plan_id IN (?)", stale).
				Delete(&models.CourseFeeModel{}).Error; err != nil {
				return fmt.Errorf("delete courses: %w", err)
			}
			if err := tx.Where("program_code IN ?", programCodes).
				Delete(&models.SemesterPlanModel{}).Error; err != nil {
				return fmt.Errorf("delete semester plans: %w", err)
			}
		}
		for _, p := range plans {
			if err := tx.Create(models.SemesterPlanModelFromDomain(p)).Error; err != nil {
				return fmt.Errorf("insert semester plan %s Y%d S%d: %w", p.ProgramCode, p.Year, p.Semester, err)
			}
		}
		return nil
	})
}

// FindByProgram returns the plans of a program ordered by year, then semester
func (r *GormSemesterPlanRepository) FindByProgram(ctx context.Context, programCode string) ([]*catalog.SemesterPlan, error) {
	var rows []models.SemesterPlanModel
	if err := conn(ctx, r.db).
		Preload("Courses", orderedCourses).
		Where("program_code = ?", catalog.NormalizeProgramCode(programCode)).
		Order("year ASC").Order("semester ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	plans := make([]*catalog.SemesterPlan, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// FindOne returns the plan of one (program, year, semester)
func (r *GormSemesterPlanRepository) FindOne(ctx context.Context, programCode string, year, semester int) (*catalog.SemesterPlan, error) {
	var row models.SemesterPlanModel
	if err := conn(ctx, r.db).
		Preload("Courses", orderedCourses).
		Where("program_code = ? AND year = ? AND semester = ?", catalog.NormalizeProgramCode(programCode), year, semester).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrSemesterPlanNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// CountByProgram counts the plans of a program
func (r *GormSemesterPlanRepository) CountByProgram(ctx context.Context, programCode string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.SemesterPlanModel{}).
		Where("program_code = ?", catalog.NormalizeProgramCode(programCode)).
		Count(&count).Error
	return count, err
}

var _ catalog.SemesterPlanRepository = (*GormSemesterPlanRepository)(nil)
