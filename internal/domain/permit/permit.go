package permit

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultSchoolYear is printed when no school year is configured
const DefaultSchoolYear = "2024-2025"

// Permit errors
var (
	ErrPermitNotFound = shared.NewDomainError("PERMIT_NOT_FOUND", "Permit not found")
)

// CourseEntry is one line of the permit course table
type CourseEntry struct {
	Code    string `json:"code"`
	Section string `json:"section"`
}

// Permit is an issued examination permit. Permits are append-only.
type Permit struct {
	shared.BaseAggregateRoot
	PermitNo   string
	LedgerID   uuid.UUID
	SemesterID uuid.UUID
	TermID     uuid.UUID
	StudentID  uuid.UUID
	Name       string
	Email      string
	College    string
	Semester   int
	Term       string
	SchoolYear string
	Courses    []CourseEntry
	IssuedAt   time.Time
	IsValid    bool
}

// Issue holds the facts a permit is issued from
type Issue struct {
	PermitNo   string
	LedgerID   uuid.UUID
	SemesterID uuid.UUID
	TermID     uuid.UUID
	StudentID  uuid.UUID
	Name       string
	Email      string
	College    string
	Semester   int
	Term       string
	SchoolYear string
	Courses    []CourseEntry
}

// NewPermit creates a valid permit
func NewPermit(in Issue) (*Permit, error) {
	if len(in.PermitNo) != NumberLength {
		return nil, shared.NewDomainError("INVALID_PERMIT", "Permit number must have 8 digits")
	}
	if in.LedgerID == uuid.Nil || in.TermID == uuid.Nil || in.StudentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERMIT", "Permit must reference a ledger term and a student")
	}
	if strings.TrimSpace(in.Term) == "" {
		return nil, shared.NewDomainError("INVALID_PERMIT", "Term name is required")
	}
	if in.SchoolYear == "" {
		in.SchoolYear = DefaultSchoolYear
	}

	p := &Permit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PermitNo:          in.PermitNo,
		LedgerID:          in.LedgerID,
		SemesterID:        in.SemesterID,
		TermID:            in.TermID,
		StudentID:         in.StudentID,
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		College:           in.College,
		Semester:          in.Semester,
		Term:              in.Term,
		SchoolYear:        in.SchoolYear,
		Courses:           append([]CourseEntry(nil), in.Courses...),
		IsValid:           true,
	}
	p.IssuedAt = p.CreatedAt
	p.AddDomainEvent(NewPermitIssuedEvent(p))
	return p, nil
}

// Title is the heading printed on the permit, e.g. "MIDTERM EXAMINATION PERMIT"
func (p *Permit) Title() string {
	return strings.ToUpper(p.Term) + " EXAMINATION PERMIT"
}

// SemesterLabel renders the semester as "1st Semester" or "2nd Semester"
func (p *Permit) SemesterLabel() string {
	switch p.Semester {
	case 1:
		return "1st Semester"
	case 2:
		return "2nd Semester"
	}
	return fmt.Sprintf("Semester %d", p.Semester)
}

// NumberLength is the number of digits in a permit number
const NumberLength = 8

// NumberGenerator draws permit numbers in [10000000, 99999999]
type NumberGenerator struct {
	entropy io.Reader
}

// NewNumberGenerator creates a generator backed by crypto/rand
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{entropy: rand.Reader}
}

// NewNumberGeneratorWith creates a generator over the given entropy source
func NewNumberGeneratorWith(entropy io.Reader) *NumberGenerator {
	return &NumberGenerator{entropy: entropy}
}

var (
	numberFloor = big.NewInt(10_000_000)
	numberSpan  = big.NewInt(90_000_000)
)

// Generate returns a new 8-digit permit number
func (g *NumberGenerator) Generate() (string, error) {
	n, err := rand.Int(g.entropy, numberSpan)
	if err != nil {
		return "", err
	}
	return n.Add(n, numberFloor).String(), nil
}
