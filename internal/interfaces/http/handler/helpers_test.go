package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcatalog "github.com/Miraku17/Exam-Permit/internal/application/catalog"
	appidentity "github.com/Miraku17/Exam-Permit/internal/application/identity"
	apppayment "github.com/Miraku17/Exam-Permit/internal/application/payment"
	apppermit "github.com/Miraku17/Exam-Permit/internal/application/permit"
	apptuition "github.com/Miraku17/Exam-Permit/internal/application/tuition"
	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/auth"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/cache"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/mail"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence/models"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/printing"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/storage"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminEmail    = "registrar@example.edu"
	adminPassword = "admin-secret"
)

var pngProof = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func init() {
	gin.SetMode(gin.TestMode)
}

// flatFees prices every course at 3 units, 1000.00 lecture and no laboratory
type flatFees struct{}

func (flatFees) Generate(code string) (catalog.CourseFee, error) {
	return catalog.NewCourseFee(code, 3, valueobject.NewMoneyFromInt(1000), valueobject.Zero())
}

// stubDocuments renders placeholder PDFs
type stubDocuments struct{}

func (stubDocuments) RenderReceipt(context.Context, *printing.ReceiptData) (*printing.Document, error) {
	return &printing.Document{Filename: printing.ReceiptFilename, ContentType: printing.PDFContentType, Content: []byte("%PDF-1.4 receipt")}, nil
}

func (stubDocuments) RenderPermit(context.Context, *printing.PermitData) (*printing.Document, error) {
	return &printing.Document{Filename: printing.PermitFilename, ContentType: printing.PDFContentType, Content: []byte("%PDF-1.4 permit")}, nil
}

// testServer wires the real services over an in-memory SQLite database
type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	proofs *storage.MemoryObjectStorage
	mailer *mail.ConsoleMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, middleware.SetupValidator(nil))

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

	policies := catalog.DefaultPolicyTable()
	userRepo := persistence.NewGormUserRepository(db)
	planRepo := persistence.NewGormSemesterPlanRepository(db)
	ledgerRepo := persistence.NewGormLedgerRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	permitRepo := persistence.NewGormPermitRepository(db)
	txManager := persistence.NewGormTransactionManager(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-of-32-characters",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "exam-permit-test",
	})
	revocations := auth.NewMemoryRevocationList()
	proofs := storage.NewMemoryObjectStorage("memory://proofs")
	mailer := mail.NewConsoleMailer(config.MailConfig{FromEmail: "cashier@example.edu"}, nil)

	catalogService := appcatalog.NewCatalogService(planRepo, catalog.NewBuilder(policies, flatFees{}), nil)
	ledgerService := apptuition.NewLedgerService(ledgerRepo, planRepo, tuition.NewInitializer(policies, valueobject.Zero()), nil)
	authService := appidentity.NewAuthService(userRepo, ledgerService, catalogService, txManager, jwtService, nil)
	authService.SetRevocationList(revocations)
	submissions := apppayment.NewSubmissionService(paymentRepo, proofs, nil, nil)
	submissions.SetConfig(apppayment.SubmissionConfig{MaxUploadSize: 4096})
	verifications := apppayment.NewVerificationService(apppayment.VerificationServiceConfig{
		PaymentRepo: paymentRepo,
		LedgerRepo:  ledgerRepo,
		Locker:      cache.NewLocalLocker(),
		TxManager:   txManager,
		Documents:   stubDocuments{},
		Mailer:      mailer,
	})
	permits := apppermit.NewService(apppermit.ServiceConfig{
		PermitRepo: permitRepo,
		LedgerRepo: ledgerRepo,
		UserRepo:   userRepo,
		Policies:   policies,
		TxManager:  txManager,
		Documents:  stubDocuments{},
		Mailer:     mailer,
		SchoolYear: "2024-2025",
	})

	ctx := context.Background()
	_, err = catalogService.Seed(ctx, "all")
	require.NoError(t, err)
	require.NoError(t, authService.EnsureAdmin(ctx, adminEmail, adminPassword, "Registrar"))

	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler(catalogService)
	tuitionHandler := NewTuitionHandler(ledgerService)
	paymentHandler := NewPaymentHandler(submissions, verifications)
	permitHandler := NewPermitHandler(permits)
	systemHandler := NewSystemHandler("exam-permit", "test", persistence.NewDatabaseFromGorm(db))

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.GET("/health", systemHandler.Health)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/catalog/programs", catalogHandler.ListPrograms)
	api.GET("/catalog/plans", catalogHandler.ListPlans)

	protected := api.Group("", middleware.JWTAuth(middleware.JWTMiddlewareConfig{JWTService: jwtService, Revocations: revocations}))
	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/tuition/me", tuitionHandler.GetMine)
	protected.GET("/tuition/students/:studentId", tuitionHandler.GetByStudent)
	protected.POST("/payments", paymentHandler.Submit)
	protected.GET("/payments/history/:email", paymentHandler.HistoryByEmail)
	protected.GET("/payments/:transactionId", paymentHandler.Get)
	protected.POST("/permits", permitHandler.Request)
	protected.GET("/permits/me", permitHandler.ListMine)

	admin := protected.Group("", middleware.RequireAdmin())
	admin.POST("/catalog/seed/:program", catalogHandler.Seed)
	admin.GET("/payments/history", paymentHandler.History)
	admin.GET("/payments/history/export", paymentHandler.ExportHistory)
	admin.POST("/payments/:transactionId/accept", paymentHandler.Accept)
	admin.POST("/payments/:transactionId/reject", paymentHandler.Reject)

	return &testServer{t: t, router: r, db: db, proofs: proofs, mailer: mailer}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// submit posts a multipart payment form with an optional proof file
func (s *testServer) submit(token string, fields map[string]string, proof []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if proof != nil {
		fw, err := mw.CreateFormFile(ProofFormField, "proof.png")
		require.NoError(s.t, err)
		_, err = fw.Write(proof)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers a BSA student and returns its ID and token
func (s *testServer) signup(email string) (string, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"fullname":   "Juan Dela Cruz",
		"email":      email,
		"password":   "secret123",
		"course":     "BSA",
		"year_level": 1,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	signup := decode[appidentity.SignupResult](s.t, w)
	return signup.User.ID.String(), s.login(email, "secret123")
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[appidentity.LoginResult](s.t, w).AccessToken
}

func (s *testServer) adminToken() string {
	return s.login(adminEmail, adminPassword)
}

func paymentFields(email, reference, amount string) map[string]string {
	return map[string]string{
		"fullName":        "Juan Dela Cruz",
		"mobileNumber":    "09171234567",
		"email":           email,
		"referenceNumber": reference,
		"amount":          amount,
		"paymentMethod":   "GCash",
	}
}

// decode reads the data of a success envelope
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

// errorCode reads the code of an error envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}
