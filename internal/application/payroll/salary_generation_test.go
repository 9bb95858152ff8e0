package payroll

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSalaryService_Generate(t *testing.T) {
	tenantID := uuid.New()
	principal := uuid.New()
	january := payroll.Period{Month: "January", Year: 2024}

	t.Run("creates missing records, skips existing ones and collects failures", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		locker := new(MockPeriodLocker)
		f.service.SetPeriodLocker(locker)

		alice := testEmployee(tenantID, "Alice")
		bob := testEmployee(tenantID, "Bob")
		carol := testEmployee(tenantID, "Carol")

		lockKey := "payroll:generate:" + tenantID.String() + ":2024-01"
		locker.On("Acquire", mock.Anything, lockKey, f.service.config.GenerationLockTTL).Return("run-1", true, nil)
		locker.On("Release", mock.Anything, lockKey, "run-1").Return(nil)

		f.employees.On("FindActiveForTenant", mock.Anything, tenantID).Return([]payroll.Employee{*alice, *bob, *carol}, nil)
		f.repo.On("FindEmployeeIDsForPeriod", mock.Anything, tenantID, january).
			Return(map[uuid.UUID]struct{}{carol.ID: {}}, nil)
		f.components.On("FindActiveForEmployee", mock.Anything, tenantID, alice.ID).Return([]payroll.CompensationComponent{
			{Kind: payroll.ComponentAllowance, Name: "Transport", CalculationType: payroll.CalculationFixed, Value: decimal.NewFromInt(50), IsActive: true},
			{Kind: payroll.ComponentDeduction, Name: "Pension", CalculationType: payroll.CalculationPercentage, Value: decimal.NewFromInt(5), IsActive: true},
		}, nil)
		f.components.On("FindActiveForEmployee", mock.Anything, tenantID, bob.ID).Return([]payroll.CompensationComponent{}, nil)
		f.repo.On("ExistsForPeriod", mock.Anything, tenantID, mock.Anything, january, (*uuid.UUID)(nil)).Return(false, nil)

		var saved *payroll.SalaryRecord
		f.repo.On("Save", mock.Anything, mock.MatchedBy(func(r *payroll.SalaryRecord) bool { return r.EmployeeID == bob.ID })).
			Return(errors.New("connection reset"))
		f.repo.On("Save", mock.Anything, mock.MatchedBy(func(r *payroll.SalaryRecord) bool { return r.EmployeeID == alice.ID })).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*payroll.SalaryRecord) }).
			Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "January", Year: 2024})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Count)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, []string{"Bob: connection reset"}, result.Errors)
		assert.Empty(t, result.Warning)

		require.NotNil(t, saved)
		assert.Equal(t, payroll.SalaryStatusPending, saved.Status)
		assert.Equal(t, 26, saved.TotalDays)
		assert.Equal(t, 26, saved.DaysPresent)
		assert.Equal(t, "20", saved.DailyRate.String())
		assert.Equal(t, "544.00", saved.NetSalary.StringFixed(2))
		require.Len(t, saved.Allowances, 1)
		assert.Equal(t, "Transport", saved.Allowances[0].Description)
		require.Len(t, saved.Deductions, 1)
		assert.Equal(t, "26", saved.Deductions[0].Amount.String())

		// one outer transaction plus one savepoint per attempted employee
		assert.Equal(t, 3, f.tx.calls)
		locker.AssertExpectations(t)

		f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			if len(events) != 1 {
				return false
			}
			generated, ok := events[0].(*payroll.PayrollGeneratedEvent)
			return ok && generated.Count == 1 && generated.Skipped == 1 && generated.Failed == 1
		}))
	})

	t.Run("a held lock rejects the run", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		locker := new(MockPeriodLocker)
		f.service.SetPeriodLocker(locker)
		locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return("", false, nil)

		_, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "jan", Year: 2024})
		require.ErrorIs(t, err, ErrGenerationInProgress)
		assert.ErrorIs(t, err, shared.ErrConflict)
		f.employees.AssertNotCalled(t, "FindActiveForTenant", mock.Anything, mock.Anything)
		locker.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no active employees sets a warning", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		f.employees.On("FindActiveForTenant", mock.Anything, tenantID).Return([]payroll.Employee{}, nil)

		result, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "January", Year: 2024})
		require.NoError(t, err)
		assert.Zero(t, result.Count)
		assert.Equal(t, msgNoActiveEmployees, result.Warning)
	})

	t.Run("a second run for the period creates nothing", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		alice := testEmployee(tenantID, "Alice")
		f.employees.On("FindActiveForTenant", mock.Anything, tenantID).Return([]payroll.Employee{*alice}, nil)
		f.repo.On("FindEmployeeIDsForPeriod", mock.Anything, tenantID, january).
			Return(map[uuid.UUID]struct{}{alice.ID: {}}, nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "January", Year: 2024})
		require.NoError(t, err)
		assert.Zero(t, result.Count)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, msgAllSkipped, result.Warning)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("daily rate is stored at column precision", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		dave := testEmployee(tenantID, "Dave")
		dave.BasicSalary = decimal.NewFromInt(500)
		f.employees.On("FindActiveForTenant", mock.Anything, tenantID).Return([]payroll.Employee{*dave}, nil)
		f.repo.On("FindEmployeeIDsForPeriod", mock.Anything, tenantID, january).Return(map[uuid.UUID]struct{}{}, nil)
		f.components.On("FindActiveForEmployee", mock.Anything, tenantID, dave.ID).Return([]payroll.CompensationComponent{}, nil)
		f.repo.On("ExistsForPeriod", mock.Anything, tenantID, dave.ID, january, (*uuid.UUID)(nil)).Return(false, nil)

		var saved *payroll.SalaryRecord
		f.repo.On("Save", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*payroll.SalaryRecord) }).
			Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "January", Year: 2024})
		require.NoError(t, err)
		require.Equal(t, 1, result.Count)

		require.NotNil(t, saved)
		// 500 / 26 = 19.230769...
		assert.Equal(t, "19.2308", saved.DailyRate.String())
		assert.Equal(t, "500.00", saved.RealSalary.StringFixed(2))
	})

	t.Run("invalid period is rejected", func(t *testing.T) {
		f := newServiceFixture(payroll.ParseLenient)
		_, err := f.service.Generate(context.Background(), tenantID, principal, GenerateRequest{Month: "Smarch", Year: 2024})
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "month")
	})
}
