package catalog

import (
	"math/rand/v2"
	"sync"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
)

// FeeGenerator produces the fee entry of a course.
// There is no real fee table, so the default implementation synthesizes
// placeholder values within fixed bounds.
type FeeGenerator interface {
	Generate(courseCode string) (CourseFee, error)
}

// Bounds of synthesized fees, in whole currency units. Upper bounds are exclusive.
const (
	minUnits      = 1
	maxUnits      = 4
	minLectureFee = 1000
	maxLectureFee = 3000
	minLabFee     = 500
	maxLabFee     = 2500
)

// RandomFeeGenerator draws units and fees uniformly within the bounds;
// half of the courses get no laboratory fee.
type RandomFeeGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomFeeGenerator creates a generator; the same seed yields the same fees.
func NewRandomFeeGenerator(seed uint64) *RandomFeeGenerator {
	return &RandomFeeGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate implements FeeGenerator
func (g *RandomFeeGenerator) Generate(courseCode string) (CourseFee, error) {
	g.mu.Lock()
	units := minUnits + g.rng.IntN(maxUnits-minUnits+1)
	lecture := int64(minLectureFee + g.rng.IntN(maxLectureFee-minLectureFee))
	var lab int64
	if g.rng.Float64() >= 0.5 {
		lab = int64(minLabFee + g.rng.IntN(maxLabFee-minLabFee))
	}
	g.mu.Unlock()

	return NewCourseFee(courseCode, units, valueobject.NewMoneyFromInt(lecture), valueobject.NewMoneyFromInt(lab))
}

// Builder turns program policies into semester plans
type Builder struct {
	policies *PolicyTable
	fees     FeeGenerator
}

// NewBuilder creates a catalog builder
func NewBuilder(policies *PolicyTable, fees FeeGenerator) *Builder {
	return &Builder{policies: policies, fees: fees}
}

// Build creates one plan per (year, semester) bucket of the selected
// program, or of every program when programCode is "all".
// An unknown program returns ErrProgramNotFound.
func (b *Builder) Build(programCode string) ([]*SemesterPlan, error) {
	programs, err := b.policies.Resolve(programCode)
	if err != nil {
		return nil, err
	}

	plans := make([]*SemesterPlan, 0)
	for _, program := range programs {
		for _, bucket := range program.Buckets {
			courses := make([]CourseFee, 0, len(bucket.CourseCodes))
			for _, code := range bucket.CourseCodes {
				fee, err := b.fees.Generate(code)
				if err != nil {
					return nil, err
				}
				courses = append(courses, fee)
			}
			plan, err := NewSemesterPlan(program.Code, bucket.Year, bucket.Semester, courses)
			if err != nil {
				return nil, err
			}
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

// Policies exposes the table the builder was configured with
func (b *Builder) Policies() *PolicyTable {
	return b.policies
}
