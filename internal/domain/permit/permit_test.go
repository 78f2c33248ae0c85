package permit

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIssue() Issue {
	return Issue{
		PermitNo:   "12345678",
		LedgerID:   uuid.New(),
		SemesterID: uuid.New(),
		TermID:     uuid.New(),
		StudentID:  uuid.New(),
		Name:       "Juan Dela Cruz",
		Email:      "Juan@Example.com",
		College:    "College of Business and Accountancy",
		Semester:   1,
		Term:       "Midterm",
		Courses:    []CourseEntry{{Code: "PRIACC130", Section: "A1"}},
	}
}

func TestNewPermit(t *testing.T) {
	t.Run("issues a valid permit", func(t *testing.T) {
		p, err := NewPermit(validIssue())
		require.NoError(t, err)
		assert.True(t, p.IsValid)
		assert.Equal(t, DefaultSchoolYear, p.SchoolYear)
		assert.Equal(t, "juan@example.com", p.Email)
		assert.Equal(t, "MIDTERM EXAMINATION PERMIT", p.Title())
		assert.Equal(t, "1st Semester", p.SemesterLabel())
		assert.False(t, p.IssuedAt.IsZero())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePermitIssued, events[0].EventType())
	})

	t.Run("course list is copied", func(t *testing.T) {
		in := validIssue()
		p, err := NewPermit(in)
		require.NoError(t, err)
		in.Courses[0].Section = "changed"
		assert.Equal(t, "A1", p.Courses[0].Section)
	})

	t.Run("keeps configured school year", func(t *testing.T) {
		in := validIssue()
		in.SchoolYear = "2025-2026"
		p, err := NewPermit(in)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026", p.SchoolYear)
	})

	t.Run("rejects bad permit number", func(t *testing.T) {
		in := validIssue()
		in.PermitNo = "123"
		_, err := NewPermit(in)
		assert.Error(t, err)
	})

	t.Run("rejects missing term", func(t *testing.T) {
		in := validIssue()
		in.TermID = uuid.Nil
		_, err := NewPermit(in)
		assert.Error(t, err)
	})
}

func TestNumberGenerator(t *testing.T) {
	t.Run("always eight digits", func(t *testing.T) {
		gen := NewNumberGenerator()
		for i := 0; i < 200; i++ {
			n, err := gen.Generate()
			require.NoError(t, err)
			assert.Len(t, n, NumberLength)
			assert.NotEqual(t, byte('0'), n[0])
		}
	})

	t.Run("entropy failure", func(t *testing.T) {
		_, err := NewNumberGeneratorWith(bytes.NewReader(nil)).Generate()
		assert.Error(t, err)
	})
}
