package handler

import (
	"net/http"
	"testing"

	appidentity "github.com/Miraku17/Exam-Permit/internal/application/identity"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Signup(t *testing.T) {
	s := newTestServer(t)

	t.Run("creates the student and its ledger", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
			"fullname":   "Maria Santos",
			"email":      "Maria@Example.com",
			"password":   "secret123",
			"course":     "BSHM",
			"year_level": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		result := decode[appidentity.SignupResult](t, w)
		assert.Equal(t, "maria@example.com", result.User.Email)
		assert.Equal(t, "student", result.User.Role)
		assert.NotEqual(t, uuid.Nil, result.LedgerID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
			"fullname":   "Maria Santos",
			"email":      "maria@example.com",
			"password":   "secret123",
			"course":     "BSHM",
			"year_level": 2,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, errorCode(t, w))
	})

	t.Run("validation errors list fields", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
			"fullname":   "Jo",
			"email":      "nope",
			"password":   "123",
			"course":     "BSXYZ",
			"year_level": 1,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
		for _, field := range []string{"fullname", "email", "password", "course"} {
			assert.Contains(t, w.Body.String(), `"field":"`+field+`"`)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t)
	s.signup("juan@example.com")

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "juan@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("unknown email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token is accepted by protected routes", func(t *testing.T) {
		token := s.login("JUAN@example.com", "secret123")
		w := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		me := decode[appidentity.UserResponse](t, w)
		assert.Equal(t, "juan@example.com", me.Email)
		assert.Equal(t, "BSA", me.Course)
		assert.NotNil(t, me.LastLoginAt)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("juan@example.com")

	w := s.do(http.MethodPost, "/api/v1/auth/change-password", token, map[string]string{
		"current_password": "wrong-one",
		"new_password":     "another1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/change-password", token, map[string]string{
		"current_password": "secret123",
		"new_password":     "secret123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "new_password")

	w = s.do(http.MethodPost, "/api/v1/auth/change-password", token, map[string]string{
		"current_password": "secret123",
		"new_password":     "another1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fresh := s.login("juan@example.com", "another1")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/auth/me", fresh, nil).Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("juan@example.com")

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/auth/logout", token, nil).Code)

	w := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestAuthHandler_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
