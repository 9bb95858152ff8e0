package persistence

import "strings"

// SortColumns whitelists the columns a listing may be ordered by. Anything
// else from the query string falls back, so user input never reaches ORDER BY.
type SortColumns map[string]bool

// SalaryRecordSortColumns are the sortable salary_records columns.
// Line-item JSON columns are deliberately absent.
var SalaryRecordSortColumns = SortColumns{
	"created_at":   true,
	"updated_at":   true,
	"year":         true,
	"month":        true,
	"status":       true,
	"currency":     true,
	"basic_salary": true,
	"gross_salary": true,
	"net_salary":   true,
	"net_in_usd":   true,
	"net_in_cdf":   true,
	"payment_date": true,
}

// Column returns field if whitelisted, otherwise fallback
func (s SortColumns) Column(field, fallback string) string {
	field = strings.TrimSpace(field)
	if s[field] {
		return field
	}
	return fallback
}

// OrderClause returns "<column> ASC|DESC". Direction defaults to DESC.
func (s SortColumns) OrderClause(field, dir, fallback string) string {
	return s.Column(field, fallback) + " " + sortDirection(dir)
}

func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}
