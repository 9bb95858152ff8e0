package payroll

import (
	"context"
	"time"

	"github.com/repairshop/erp/internal/domain/payroll"
)

// Transactor runs fn inside a database transaction carried by the context.
// Nested calls run inside a savepoint of the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PeriodLocker serializes bulk generation for one tenant and period
type PeriodLocker interface {
	// Acquire returns false when another holder owns the key; the token
	// identifies this acquisition to Release
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// PayslipRenderer renders a printable payslip
type PayslipRenderer interface {
	Render(record *payroll.SalaryRecord, employee *payroll.Employee) ([]byte, error)
}
