package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerCreator opens the tuition ledger of a new student
type LedgerCreator interface {
	CreateLedger(ctx context.Context, studentID uuid.UUID, programCode string) (*tuition.TuitionLedger, error)
	PublishEvents(ctx context.Context, ledger *tuition.TuitionLedger)
}

// CourseValidator checks that a course can carry a ledger
type CourseValidator interface {
	EnsureSeeded(ctx context.Context, program string) error
}

// AuthService handles registration, login and password changes
type AuthService struct {
	userRepo       identity.UserRepository
	ledgers        LedgerCreator
	courses        CourseValidator
	txManager      shared.TransactionManager
	jwtService     *auth.JWTService
	revocations    auth.RevocationList
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	ledgers LedgerCreator,
	courses CourseValidator,
	txManager shared.TransactionManager,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		ledgers:    ledgers,
		courses:    courses,
		txManager:  txManager,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SetRevocationList enables token revocation on logout and password change
func (s *AuthService) SetRevocationList(revocations auth.RevocationList) {
	s.revocations = revocations
}

// SetEventPublisher sets the event publisher
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Signup registers a student and opens their tuition ledger in one
// transaction.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Signup attempt", zap.String("email", email), zap.String("course", input.Course))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}
	if err := s.courses.EnsureSeeded(ctx, input.Course); err != nil {
		return nil, err
	}

	user, err := identity.NewStudent(email, input.Password, input.FullName, input.Course, input.YearLevel)
	if err != nil {
		return nil, err
	}

	var ledger *tuition.TuitionLedger
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		ledger, err = s.ledgers.CreateLedger(txCtx, user.ID, user.Course)
		return err
	})
	if err != nil {
		s.logger.Warn("Signup failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, user)
	s.ledgers.PublishEvents(ctx, ledger)
	s.logger.Info("Student registered",
		zap.String("user_id", user.ID.String()),
		zap.String("ledger_id", ledger.ID.String()))

	return &SignupResult{User: ToUserResponse(user), LedgerID: ledger.ID}, nil
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			s.logger.Warn("User not found during login", zap.String("email", email))
			return nil, identity.ErrEmailNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password during login", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrWrongPassword
	}

	token, err := s.jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Course:    user.Course,
		YearLevel: user.YearLevel,
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	user.RecordLogin()
	if err := s.userRepo.UpdateLastLogin(ctx, user); err != nil {
		s.logger.Warn("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &LoginResult{
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserResponse(user),
	}, nil
}

// ChangePassword replaces the caller's password and revokes the tokens
// issued before the change.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.CurrentPassword, input.NewPassword); err != nil {
		s.logger.Warn("Password change rejected", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.revocations != nil {
		cutoff := time.Now()
		if user.PasswordChangedAt != nil {
			cutoff = *user.PasswordChangedAt
		}
		if err := s.revocations.RevokeUser(ctx, userID.String(), cutoff, s.jwtService.GetAccessTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens after password change", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	s.publish(ctx, user)
	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// Logout revokes the presented token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the account of the caller
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the administrator account when it does not exist.
// An empty email disables the bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			s.logger.Warn("Configured admin email belongs to a student account", zap.String("email", email))
		}
		return nil
	case !errors.Is(err, identity.ErrUserNotFound):
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if fullName == "" {
		fullName = "Administrator"
	}
	admin, err := identity.NewUser(email, password, fullName, "", 0, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	s.publish(ctx, admin)
	s.logger.Info("Admin account created", zap.String("email", email))
	return nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish user events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()
}
