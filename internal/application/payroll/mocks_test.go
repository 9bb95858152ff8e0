package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockSalaryRecordRepository is a mock implementation of SalaryRecordRepository
type MockSalaryRecordRepository struct {
	mock.Mock
}

func (m *MockSalaryRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalaryRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryRecord), args.Error(1)
}

func (m *MockSalaryRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SalaryRecordFilter) ([]payroll.SalaryRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]payroll.SalaryRecord), args.Error(1)
}

func (m *MockSalaryRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SalaryRecordFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalaryRecordRepository) ExistsForPeriod(ctx context.Context, tenantID, employeeID uuid.UUID, period payroll.Period, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, employeeID, period, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSalaryRecordRepository) FindEmployeeIDsForPeriod(ctx context.Context, tenantID uuid.UUID, period payroll.Period) (map[uuid.UUID]struct{}, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]struct{}), args.Error(1)
}

func (m *MockSalaryRecordRepository) SummarizePeriod(ctx context.Context, tenantID uuid.UUID, period payroll.Period) (*payroll.PeriodSummary, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PeriodSummary), args.Error(1)
}

func (m *MockSalaryRecordRepository) Save(ctx context.Context, record *payroll.SalaryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSalaryRecordRepository) Delete(ctx context.Context, record *payroll.SalaryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockEmployeeReader is a mock implementation of EmployeeReader
type MockEmployeeReader struct {
	mock.Mock
}

func (m *MockEmployeeReader) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.Employee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.Employee), args.Error(1)
}

func (m *MockEmployeeReader) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]payroll.Employee, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).(map[uuid.UUID]payroll.Employee), args.Error(1)
}

func (m *MockEmployeeReader) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]payroll.Employee, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]payroll.Employee), args.Error(1)
}

// MockCompensationReader is a mock implementation of CompensationReader
type MockCompensationReader struct {
	mock.Mock
}

func (m *MockCompensationReader) FindActiveForEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]payroll.CompensationComponent, error) {
	args := m.Called(ctx, tenantID, employeeID)
	return args.Get(0).([]payroll.CompensationComponent), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPeriodLocker is a mock implementation of PeriodLocker
type MockPeriodLocker struct {
	mock.Mock
}

func (m *MockPeriodLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockPeriodLocker) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

// MockPayslipRenderer is a mock implementation of PayslipRenderer
type MockPayslipRenderer struct {
	mock.Mock
}

func (m *MockPayslipRenderer) Render(record *payroll.SalaryRecord, employee *payroll.Employee) ([]byte, error) {
	args := m.Called(record, employee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// fakeTransactor runs fn directly and counts the calls, nested ones included
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}
