// Package models contains the GORM persistence models of the portal.
// Domain types stay free of ORM tags; every model converts itself with
// ToDomain and a XxxModelFromDomain constructor.
//
// Tables:
//   - users: portal accounts (identity.go)
//   - semester_plans, semester_plan_courses: fee catalog (catalog.go)
//   - tuition_ledgers, tuition_semesters, tuition_terms: student ledgers (tuition.go)
//   - payment_records: submitted payments (payment.go)
//   - permits: issued examination permits (permit.go)
package models
