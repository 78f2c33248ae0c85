package catalog

import (
	"errors"
	"testing"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyTable(t *testing.T) {
	table := DefaultPolicyTable()
	assert.Equal(t, []string{"BSA", "BSHM"}, table.Codes())

	bsa, err := table.Lookup("bsa")
	require.NoError(t, err)
	assert.Equal(t, ScheduleFourTerm, bsa.Schedule)
	require.Len(t, bsa.Buckets, 2)
	assert.Len(t, bsa.Buckets[0].CourseCodes, 10)
	assert.Len(t, bsa.Buckets[1].CourseCodes, 11)

	bshm, err := table.Lookup("BSHM")
	require.NoError(t, err)
	assert.Equal(t, 2, bshm.Buckets[0].Year)
}

func TestPolicyTable_Resolve(t *testing.T) {
	table := DefaultPolicyTable()

	t.Run("all returns every program", func(t *testing.T) {
		got, err := table.Resolve("ALL")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown program", func(t *testing.T) {
		_, err := table.Resolve("BSCS")
		assert.True(t, errors.Is(err, ErrProgramNotFound))
	})
}

func TestPolicyTable_OverrideSchedule(t *testing.T) {
	table := DefaultPolicyTable()
	require.NoError(t, table.OverrideSchedule("BSA", ScheduleThreeTerm))
	bsa, _ := table.Lookup("BSA")
	assert.Equal(t, ScheduleThreeTerm, bsa.Schedule)

	assert.Error(t, table.OverrideSchedule("BSA", "weekly"))
	assert.ErrorIs(t, table.OverrideSchedule("XYZ", ScheduleFourTerm), ErrProgramNotFound)
}

func TestNewPolicyTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		policy ProgramPolicy
	}{
		{"empty code", ProgramPolicy{Schedule: ScheduleFourTerm, Buckets: []Bucket{{Year: 1, Semester: 1, CourseCodes: []string{"A"}}}}},
		{"bad schedule", ProgramPolicy{Code: "X", Schedule: "monthly", Buckets: []Bucket{{Year: 1, Semester: 1, CourseCodes: []string{"A"}}}}},
		{"no buckets", ProgramPolicy{Code: "X", Schedule: ScheduleFourTerm}},
		{"bad semester", ProgramPolicy{Code: "X", Schedule: ScheduleFourTerm, Buckets: []Bucket{{Year: 1, Semester: 3, CourseCodes: []string{"A"}}}}},
		{"duplicate bucket", ProgramPolicy{Code: "X", Schedule: ScheduleFourTerm, Buckets: []Bucket{
			{Year: 1, Semester: 1, CourseCodes: []string{"A"}},
			{Year: 1, Semester: 1, CourseCodes: []string{"B"}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicyTable(tt.policy)
			assert.Error(t, err)
		})
	}
}

func TestNewSemesterPlan(t *testing.T) {
	c1, err := NewCourseFee("PRIACC130", 3, valueobject.NewMoneyFromInt(1500), valueobject.NewMoneyFromInt(0))
	require.NoError(t, err)
	c2, err := NewCourseFee("SCITES030", 2, valueobject.NewMoneyFromInt(2000), valueobject.NewMoneyFromInt(700))
	require.NoError(t, err)

	plan, err := NewSemesterPlan("bsa", 1, 1, []CourseFee{c1, c2})
	require.NoError(t, err)
	assert.Equal(t, "BSA", plan.ProgramCode)
	assert.Equal(t, 1, plan.Version)
	assert.Equal(t, "3500.00", plan.Totals().Lecture.String())
	assert.Equal(t, "700.00", plan.Totals().Laboratory.String())
	assert.Equal(t, "4200.00", plan.Totals().GrandTotal.String())
	assert.Equal(t, []string{"PRIACC130", "SCITES030"}, plan.CourseCodes())

	t.Run("set courses recomputes totals", func(t *testing.T) {
		require.NoError(t, plan.SetCourses([]CourseFee{c1}))
		assert.Equal(t, "1500.00", plan.Totals().GrandTotal.String())
		assert.Equal(t, 2, plan.Version)
	})

	t.Run("rejects tampered course total", func(t *testing.T) {
		bad := c1
		bad.TotalFee = valueobject.NewMoneyFromInt(1)
		assert.Error(t, plan.SetCourses([]CourseFee{bad}))
	})

	t.Run("rejects invalid semester", func(t *testing.T) {
		_, err := NewSemesterPlan("BSA", 1, 3, []CourseFee{c1})
		assert.Error(t, err)
	})
}

func TestRehydrateSemesterPlan(t *testing.T) {
	c1, _ := NewCourseFee("PRIACC130", 3, valueobject.NewMoneyFromInt(1500), valueobject.NewMoneyFromInt(500))
	base := shared.NewBaseAggregateRoot()

	t.Run("matching totals", func(t *testing.T) {
		plan, err := RehydrateSemesterPlan(base, "BSA", 1, 1, []CourseFee{c1}, ComputeTotals([]CourseFee{c1}))
		require.NoError(t, err)
		assert.Equal(t, base.ID, plan.ID)
	})

	t.Run("mismatched totals is an invariant violation", func(t *testing.T) {
		stored := ComputeTotals([]CourseFee{c1})
		stored.GrandTotal = valueobject.NewMoneyFromInt(9999)
		_, err := RehydrateSemesterPlan(base, "BSA", 1, 1, []CourseFee{c1}, stored)
		assert.ErrorIs(t, err, shared.ErrInvariantViolation)
	})
}

func TestRandomFeeGenerator_Bounds(t *testing.T) {
	gen := NewRandomFeeGenerator(42)
	sawZeroLab, sawLab := false, false
	for i := 0; i < 500; i++ {
		fee, err := gen.Generate("C")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fee.AcademicUnits, 1)
		assert.LessOrEqual(t, fee.AcademicUnits, 4)
		assert.GreaterOrEqual(t, fee.LectureFee.Cents(), int64(100000))
		assert.Less(t, fee.LectureFee.Cents(), int64(300000))
		if fee.LaboratoryFee.IsZero() {
			sawZeroLab = true
		} else {
			sawLab = true
			assert.GreaterOrEqual(t, fee.LaboratoryFee.Cents(), int64(50000))
			assert.Less(t, fee.LaboratoryFee.Cents(), int64(250000))
		}
		assert.True(t, fee.TotalFee.Equals(fee.LectureFee.Add(fee.LaboratoryFee)))
	}
	assert.True(t, sawZeroLab)
	assert.True(t, sawLab)
}

func TestRandomFeeGenerator_Deterministic(t *testing.T) {
	a, b := NewRandomFeeGenerator(7), NewRandomFeeGenerator(7)
	for i := 0; i < 20; i++ {
		fa, _ := a.Generate("C")
		fb, _ := b.Generate("C")
		assert.Equal(t, fa.TotalFee.String(), fb.TotalFee.String())
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(DefaultPolicyTable(), NewRandomFeeGenerator(1))

	t.Run("single program", func(t *testing.T) {
		plans, err := builder.Build("BSA")
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, 1, plans[0].Semester)
		assert.Equal(t, 2, plans[1].Semester)
		for _, p := range plans {
			sum := valueobject.Zero()
			for _, c := range p.Courses() {
				sum = sum.Add(c.TotalFee)
			}
			assert.True(t, p.Totals().GrandTotal.Equals(sum))
		}
	})

	t.Run("all programs", func(t *testing.T) {
		plans, err := builder.Build("all")
		require.NoError(t, err)
		assert.Len(t, plans, 4)
	})

	t.Run("unknown program", func(t *testing.T) {
		plans, err := builder.Build("NOPE")
		assert.ErrorIs(t, err, ErrProgramNotFound)
		assert.Nil(t, plans)
	})
}
