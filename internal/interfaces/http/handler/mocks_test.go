package handler

import (
	"context"

	"github.com/google/uuid"
	payrollapp "github.com/repairshop/erp/internal/application/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockSalaryService is a mock implementation of SalaryService
type MockSalaryService struct {
	mock.Mock
}

func (m *MockSalaryService) Create(ctx context.Context, tenantID, principal uuid.UUID, req payrollapp.SalaryRequest) (*payrollapp.SalaryResponse, error) {
	args := m.Called(ctx, tenantID, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.SalaryResponse), args.Error(1)
}

func (m *MockSalaryService) Update(ctx context.Context, tenantID, id, principal uuid.UUID, req payrollapp.SalaryRequest) (*payrollapp.SalaryResponse, error) {
	args := m.Called(ctx, tenantID, id, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.SalaryResponse), args.Error(1)
}

func (m *MockSalaryService) MarkAsPaid(ctx context.Context, tenantID, id, principal uuid.UUID, req payrollapp.MarkPaidRequest) (*payrollapp.SalaryResponse, error) {
	args := m.Called(ctx, tenantID, id, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.SalaryResponse), args.Error(1)
}

func (m *MockSalaryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*payrollapp.SalaryResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.SalaryResponse), args.Error(1)
}

func (m *MockSalaryService) List(ctx context.Context, tenantID uuid.UUID, filter payrollapp.SalaryListFilter) (*shared.Paginated[payrollapp.SalaryResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[payrollapp.SalaryResponse]), args.Error(1)
}

func (m *MockSalaryService) Delete(ctx context.Context, tenantID, id, principal uuid.UUID) error {
	return m.Called(ctx, tenantID, id, principal).Error(0)
}

func (m *MockSalaryService) Calculate(ctx context.Context, tenantID uuid.UUID, req payrollapp.CalculateSalaryRequest) (*payrollapp.BreakdownResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.BreakdownResponse), args.Error(1)
}

func (m *MockSalaryService) Summary(ctx context.Context, tenantID uuid.UUID, month string, year int) (*payrollapp.SummaryResponse, error) {
	args := m.Called(ctx, tenantID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.SummaryResponse), args.Error(1)
}

func (m *MockSalaryService) Payslip(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockSalaryService) Generate(ctx context.Context, tenantID, principal uuid.UUID, req payrollapp.GenerateRequest) (*payrollapp.GenerateResult, error) {
	args := m.Called(ctx, tenantID, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payrollapp.GenerateResult), args.Error(1)
}
