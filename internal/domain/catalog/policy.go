package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
)

// AllPrograms selects every program in the policy table.
const AllPrograms = "all"

// ScheduleKind names how a semester grand total is split into terms
type ScheduleKind string

const (
	ScheduleThreeTerm ScheduleKind = "three_term" // 40/30/30
	ScheduleFourTerm  ScheduleKind = "four_term"  // 25 x 4
)

// IsValid checks if the schedule kind is known
func (k ScheduleKind) IsValid() bool {
	switch k {
	case ScheduleThreeTerm, ScheduleFourTerm:
		return true
	}
	return false
}

// Bucket is one (year, semester) slot of a program and its course codes
type Bucket struct {
	Year        int
	Semester    int
	CourseCodes []string
}

// ProgramPolicy describes a degree program: its display data, its term
// schedule and the course list of every (year, semester) bucket.
type ProgramPolicy struct {
	Code     string
	Name     string
	College  string
	Schedule ScheduleKind
	Buckets  []Bucket
}

// Validate checks the policy is internally consistent
func (p ProgramPolicy) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return shared.NewDomainError("INVALID_PROGRAM", "Program code cannot be empty")
	}
	if !p.Schedule.IsValid() {
		return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s has unknown term schedule %q", p.Code, p.Schedule))
	}
	if len(p.Buckets) == 0 {
		return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s has no semesters", p.Code))
	}
	seen := make(map[[2]int]bool, len(p.Buckets))
	for _, b := range p.Buckets {
		if b.Year < 1 {
			return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s has invalid year %d", p.Code, b.Year))
		}
		if b.Semester != 1 && b.Semester != 2 {
			return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s has invalid semester %d", p.Code, b.Semester))
		}
		if len(b.CourseCodes) == 0 {
			return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s year %d semester %d has no courses", p.Code, b.Year, b.Semester))
		}
		key := [2]int{b.Year, b.Semester}
		if seen[key] {
			return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Program %s defines year %d semester %d twice", p.Code, b.Year, b.Semester))
		}
		seen[key] = true
	}
	return nil
}

// PolicyTable is the program -> policy configuration shared by the
// catalog builder and the ledger initializer.
type PolicyTable struct {
	programs map[string]ProgramPolicy
	order    []string
}

// NewPolicyTable builds a table from the given policies, in order
func NewPolicyTable(policies ...ProgramPolicy) (*PolicyTable, error) {
	t := &PolicyTable{programs: make(map[string]ProgramPolicy, len(policies))}
	for _, p := range policies {
		p.Code = NormalizeProgramCode(p.Code)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.programs[p.Code]; dup {
			return nil, shared.NewDomainError("INVALID_PROGRAM", "Duplicate program "+p.Code)
		}
		t.programs[p.Code] = p
		t.order = append(t.order, p.Code)
	}
	return t, nil
}

// Lookup returns the policy of a single program
func (t *PolicyTable) Lookup(code string) (ProgramPolicy, error) {
	p, ok := t.programs[NormalizeProgramCode(code)]
	if !ok {
		return ProgramPolicy{}, ErrProgramNotFound
	}
	return p, nil
}

// Resolve returns the policies selected by code, or all of them for "all"
func (t *PolicyTable) Resolve(code string) ([]ProgramPolicy, error) {
	if strings.EqualFold(strings.TrimSpace(code), AllPrograms) {
		out := make([]ProgramPolicy, 0, len(t.order))
		for _, c := range t.order {
			out = append(out, t.programs[c])
		}
		return out, nil
	}
	p, err := t.Lookup(code)
	if err != nil {
		return nil, err
	}
	return []ProgramPolicy{p}, nil
}

// Codes returns program codes in table order
func (t *PolicyTable) Codes() []string {
	return slices.Clone(t.order)
}

// Policies returns every policy in table order
func (t *PolicyTable) Policies() []ProgramPolicy {
	out, _ := t.Resolve(AllPrograms)
	return out
}

// Has reports whether the program is defined
func (t *PolicyTable) Has(code string) bool {
	_, ok := t.programs[NormalizeProgramCode(code)]
	return ok
}

// OverrideSchedule changes the term schedule of a program
func (t *PolicyTable) OverrideSchedule(code string, kind ScheduleKind) error {
	p, err := t.Lookup(code)
	if err != nil {
		return err
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_PROGRAM", fmt.Sprintf("Unknown term schedule %q", kind))
	}
	p.Schedule = kind
	t.programs[p.Code] = p
	return nil
}

// NormalizeProgramCode trims and upper-cases a program code
func NormalizeProgramCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultPolicyTable returns the built-in program table
func DefaultPolicyTable() *PolicyTable {
	t, err := NewPolicyTable(
		ProgramPolicy{
			Code:     "BSA",
			Name:     "Bachelor of Science in Accountancy",
			College:  "College of Business and Accountancy",
			Schedule: ScheduleFourTerm,
			Buckets: []Bucket{
				{Year: 1, Semester: 1, CourseCodes: []string{
					"PRIACC130", "UDSELF030", "READPH030", "ARTAPP030", "SCITES030",
					"LITERA03Z", "REEDFR1C0", "PAFIT1020", "ENRICH110", "NSTP**130",
				}},
				{Year: 1, Semester: 2, CourseCodes: []string{
					"COFRAC230", "INTONE230", "MAGECO130", "OPEMAN130", "ITAPPB13Z",
					"OBLICO130", "CWORLD030", "PURCOM030", "REVISA030", "PAFIT2120", "NSTP**230",
				}},
			},
		},
		ProgramPolicy{
			Code:     "BSHM",
			Name:     "Bachelor of Science in Hospitality Management",
			College:  "College of Hospitality Management",
			Schedule: ScheduleFourTerm,
			Buckets: []Bucket{
				{Year: 2, Semester: 1, CourseCodes: []string{
					"TORLAW230", "FODOPR23Q", "BUSTEC03S", "MULDIC030", "TORHMA230",
					"MATHMW030", "CWORLD030", "PAFIT322A",
				}},
				{Year: 2, Semester: 2, CourseCodes: []string{
					"QUASER230", "LODOPR23Q", "MENREV030", "ELECHM230", "TECWRI130",
					"ARTAPP030", "PAFIT4220", "REEDCG2C0",
				}},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}
