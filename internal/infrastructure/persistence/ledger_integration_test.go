//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/migration"
	"github.com/Miraku17/Exam-Permit/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tuition_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

// Concurrent accepts against one ledger must serialize on the row lock so
// every unit lands in exactly one term.
func TestGormLedgerRepository_ConcurrentAllocationsPostgres(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	users := NewGormUserRepository(db)
	repo := NewGormLedgerRepository(db)
	tm := NewGormTransactionManager(db)

	student, err := identity.NewStudent("lock@example.com", "secret1", "Lock Test", "BSA", 1)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, student))
	require.NoError(t, repo.Create(ctx, testLedger(t, student.ID)))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tm.WithinTransaction(ctx, func(ctx context.Context) error {
				ledger, err := repo.FindByStudentIDForUpdate(ctx, student.ID)
				if err != nil {
					return err
				}
				result, err := tuition.NewEngine(nil).Allocate(ledger, money("750"))
				if err != nil {
					return err
				}
				return repo.ApplyAllocations(ctx, ledger, result.Allocations)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.FindByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.NoError(t, stored.Verify())
	assert.True(t, stored.OutstandingBalance().Equals(money("2000")), stored.OutstandingBalance().String())
}
