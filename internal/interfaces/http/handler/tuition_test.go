package handler

import (
	"net/http"
	"testing"

	apptuition "github.com/Miraku17/Exam-Permit/internal/application/tuition"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTuitionHandler(t *testing.T) {
	s := newTestServer(t)
	studentID, token := s.signup("juan@example.com")
	otherID, _ := s.signup("pedro@example.com")

	t.Run("own ledger", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		ledger := decode[apptuition.LedgerResponse](t, w)
		assert.Equal(t, studentID, ledger.StudentID.String())
		require.Len(t, ledger.Semesters, 2)
		assert.True(t, ledger.OutstandingBalance.Equals(valueobject.NewMoneyFromInt(21000)))

		first := ledger.Semesters[0]
		require.Len(t, first.Terms, 4)
		for _, term := range first.Terms {
			assert.True(t, term.DueAmount.Equals(valueobject.NewMoneyFromInt(2500)), term.Name)
			assert.False(t, term.CanRequestPermit)
		}
	})

	t.Run("self by ID", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/students/"+studentID, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("another student is forbidden", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/students/"+otherID, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin reads any ledger", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/students/"+otherID, s.adminToken(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown student", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/students/"+uuid.NewString(), s.adminToken(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed ID", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/tuition/students/not-a-uuid", s.adminToken(), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
