package models

// All returns every model in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&UserModel{},
		&SemesterPlanModel{},
		&CourseFeeModel{},
		&TuitionLedgerModel{},
		&TuitionSemesterModel{},
		&TuitionTermModel{},
		&PaymentRecordModel{},
		&PermitModel{},
	}
}
