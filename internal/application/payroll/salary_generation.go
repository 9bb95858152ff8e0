package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/repairshop/erp/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrGenerationInProgress is returned when another run holds the period lock
var ErrGenerationInProgress = shared.NewDomainError(shared.CodeConflict, "Payroll generation already in progress")

const (
	msgNoActiveEmployees = "No active employees found"
	msgAllSkipped        = "All active employees already have a salary record for this period"
)

// Generate creates a pending salary record for every active employee that
// has none for the period. Each employee is saved in its own savepoint so a
// failing row does not discard the rest of the batch.
func (s *SalaryService) Generate(ctx context.Context, tenantID, principal uuid.UUID, req GenerateRequest) (*GenerateResult, error) {
	period, err := payroll.ParsePeriod(req.Month, req.Year)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "salary", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, period.Key()))
	defer span.End()

	currency := s.config.DefaultCurrency
	if req.Currency != "" {
		currency, err = valueobject.ParseCurrency(req.Currency)
		if err != nil {
			return nil, shared.NewFieldError("currency", "Must be one of: USD CDF")
		}
	}
	rate := s.config.DefaultExchangeRate
	if req.ExchangeRate != nil {
		rate = *req.ExchangeRate
	}
	if !rate.IsPositive() {
		return nil, shared.NewFieldError("exchange_rate", "Must be greater than 0")
	}

	release, err := s.lockPeriod(ctx, tenantID, period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	employees, err := s.employeeReader.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return &GenerateResult{
			Message: "No salary records generated",
			Warning: msgNoActiveEmployees,
			Errors:  []string{},
		}, nil
	}

	existing, err := s.salaryRepo.FindEmployeeIDsForPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Errors: []string{}}
	var created []*payroll.SalaryRecord

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		for i := range employees {
			employee := &employees[i]
			if _, ok := existing[employee.ID]; ok {
				result.Skipped++
				continue
			}

			record, err := s.buildGeneratedRecord(txCtx, tenantID, principal, employee, period, req.PayrollPeriodID, currency, rate)
			if err == nil {
				err = s.transactor.WithinTransaction(txCtx, func(spCtx context.Context) error {
					return s.saveGuarded(spCtx, record, nil)
				})
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", employee.Name, errorMessage(err)))
				s.logger.Warn("Failed to generate salary record",
					zap.String("tenant_id", tenantID.String()),
					zap.String("employee_id", employee.ID.String()),
					zap.String("period", period.String()),
					zap.Error(err))
				continue
			}

			created = append(created, record)
			result.Count++
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Message = fmt.Sprintf("Generated %d salary records for %s", result.Count, period)
	if result.Count == 0 && result.Skipped == len(employees) {
		result.Warning = msgAllSkipped
	}

	s.logger.Info("Payroll generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period.String()),
		zap.Int("count", result.Count),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)))

	if s.payrollMetrics != nil {
		s.payrollMetrics.RecordPayrollGenerated(ctx, tenantID, result.Count, result.Skipped, len(result.Errors))
		for _, record := range created {
			s.payrollMetrics.RecordSalaryCreated(ctx, tenantID, record.Currency.String())
		}
	}
	for _, record := range created {
		s.publishEvents(ctx, record)
	}
	if s.eventPublisher != nil {
		event := payroll.NewPayrollGeneratedEvent(tenantID, period, result.Count, result.Skipped, len(result.Errors), principal)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish payroll generated event", zap.Error(err))
		}
	}

	return result, nil
}

// dailyRatePlaces matches the precision of the salary_records.daily_rate column
const dailyRatePlaces = 4

// buildGeneratedRecord prepares a pending record for a full month of
// attendance with the employee's compensation templates applied.
func (s *SalaryService) buildGeneratedRecord(
	ctx context.Context,
	tenantID, principal uuid.UUID,
	employee *payroll.Employee,
	period payroll.Period,
	payrollPeriodID *uuid.UUID,
	currency valueobject.Currency,
	rate decimal.Decimal,
) (*payroll.SalaryRecord, error) {
	components, err := s.compensationReader.FindActiveForEmployee(ctx, tenantID, employee.ID)
	if err != nil {
		return nil, err
	}
	allowances, deductions := payroll.SplitComponents(components, employee.BasicSalary)

	workingDays := s.config.WorkingDaysPerMonth
	input := payroll.CalculationInput{
		BasicSalary: employee.BasicSalary,
		Attendance: payroll.Attendance{
			DailyRate:   employee.BasicSalary.Div(decimal.NewFromInt(int64(workingDays))).Round(dailyRatePlaces),
			TotalDays:   workingDays,
			DaysPresent: workingDays,
		},
		Allowances:   allowances,
		Deductions:   deductions,
		Currency:     currency,
		ExchangeRate: rate,
	}

	return payroll.NewSalaryRecord(tenantID, employee.ID, payroll.SalaryDetails{
		Period:          period,
		Input:           input,
		Status:          payroll.SalaryStatusPending,
		PayrollPeriodID: payrollPeriodID,
	}, principal)
}

// lockPeriod acquires the generation lock and returns its release function
func (s *SalaryService) lockPeriod(ctx context.Context, tenantID uuid.UUID, period payroll.Period) (func(), error) {
	if s.periodLocker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("payroll:generate:%s:%s", tenantID, period.Key())
	token, acquired, err := s.periodLocker.Acquire(ctx, key, s.config.GenerationLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire payroll generation lock: %w", err)
	}
	if !acquired {
		return nil, ErrGenerationInProgress
	}

	return func() {
		// Release must outlive a cancelled request context.
		if err := s.periodLocker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Failed to release payroll generation lock",
				zap.String("key", key),
				zap.Error(err))
		}
	}, nil
}

func errorMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
