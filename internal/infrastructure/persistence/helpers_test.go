package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every portal table.
// A single connection keeps the in-memory database alive across calls.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB creates a GORM connection over go-sqlmock with the postgres dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func money(s string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// testPlans builds two BSA semester plans with fixed fees
func testPlans(t *testing.T) []*catalog.SemesterPlan {
	t.Helper()

	first, err := catalog.NewCourseFee("PRIACC130", 3, money("2000"), money("500"))
	require.NoError(t, err)
	second, err := catalog.NewCourseFee("UDSELF030", 3, money("1500"), money("0"))
	require.NoError(t, err)
	third, err := catalog.NewCourseFee("COFRAC230", 3, money("3000"), money("1000"))
	require.NoError(t, err)

	s1, err := catalog.NewSemesterPlan("BSA", 1, 1, []catalog.CourseFee{first, second})
	require.NoError(t, err)
	s2, err := catalog.NewSemesterPlan("BSA", 1, 2, []catalog.CourseFee{third})
	require.NoError(t, err)
	return []*catalog.SemesterPlan{s1, s2}
}

// testLedger builds a four-term BSA ledger: semester 1 due 4000, semester 2 due 4000
func testLedger(t *testing.T, studentID uuid.UUID) *tuition.TuitionLedger {
	t.Helper()

	ledger, err := tuition.NewInitializer(catalog.DefaultPolicyTable(), valueobject.Zero()).
		CreateLedger(studentID, "BSA", testPlans(t))
	require.NoError(t, err)
	return ledger
}
