package persistence

import "strings"

// paymentOrderColumns whitelists the payment history sort columns
var paymentOrderColumns = map[string]bool{
	"created_at":     true,
	"submitted_at":   true,
	"verified_at":    true,
	"amount":         true,
	"status":         true,
	"email":          true,
	"transaction_id": true,
}

// orderClause builds an ORDER BY clause from user input. Columns outside
// allowed fall back to fallback; the direction defaults to DESC.
func orderClause(column, direction string, allowed map[string]bool, fallback string) string {
	column = strings.TrimSpace(column)
	if !allowed[column] {
		column = fallback
	}
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}
