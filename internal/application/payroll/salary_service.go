package payroll

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/repairshop/erp/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceConfig contains configuration for the salary service
type ServiceConfig struct {
	LineItemMode        payroll.ParseMode
	WorkingDaysPerMonth int
	DefaultCurrency     valueobject.Currency
	DefaultExchangeRate decimal.Decimal
	GenerationLockTTL   time.Duration
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		LineItemMode:        payroll.ParseLenient,
		WorkingDaysPerMonth: 26,
		DefaultCurrency:     valueobject.USD,
		DefaultExchangeRate: decimal.NewFromInt(2800),
		GenerationLockTTL:   5 * time.Minute,
	}
}

// SalaryService handles salary record operations
type SalaryService struct {
	salaryRepo         payroll.SalaryRecordRepository
	employeeReader     payroll.EmployeeReader
	compensationReader payroll.CompensationReader
	transactor         Transactor
	config             ServiceConfig
	logger             *zap.Logger

	eventPublisher  shared.EventPublisher
	periodLocker    PeriodLocker
	payslipRenderer PayslipRenderer
	payrollMetrics  *telemetry.PayrollMetrics
}

// NewSalaryService creates a new salary service
func NewSalaryService(
	salaryRepo payroll.SalaryRecordRepository,
	employeeReader payroll.EmployeeReader,
	compensationReader payroll.CompensationReader,
	transactor Transactor,
	config ServiceConfig,
	logger *zap.Logger,
) *SalaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.WorkingDaysPerMonth <= 0 {
		config.WorkingDaysPerMonth = DefaultServiceConfig().WorkingDaysPerMonth
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = valueobject.DefaultCurrency
	}
	return &SalaryService{
		salaryRepo:         salaryRepo,
		employeeReader:     employeeReader,
		compensationReader: compensationReader,
		transactor:         transactor,
		config:             config,
		logger:             logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *SalaryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPeriodLocker sets the lock used to serialize bulk generation
func (s *SalaryService) SetPeriodLocker(locker PeriodLocker) {
	s.periodLocker = locker
}

// SetPayslipRenderer sets the payslip renderer
func (s *SalaryService) SetPayslipRenderer(renderer PayslipRenderer) {
	s.payslipRenderer = renderer
}

// SetPayrollMetrics sets the payroll metrics recorder
func (s *SalaryService) SetPayrollMetrics(m *telemetry.PayrollMetrics) {
	s.payrollMetrics = m
}

// Create creates a salary record for an employee and period
func (s *SalaryService) Create(ctx context.Context, tenantID, principal uuid.UUID, req SalaryRequest) (*SalaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary", "create",
		telemetry.WithAttribute(telemetry.SpanAttrEmployeeID, req.EmployeeID.String()))
	defer span.End()

	details, err := s.buildDetails(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	employee, err := s.employeeReader.FindByIDForTenant(ctx, tenantID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	record, err := payroll.NewSalaryRecord(tenantID, employee.ID, details, principal)
	if err != nil {
		return nil, err
	}

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.saveGuarded(txCtx, record, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Salary record created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("salary_id", record.ID.String()),
		zap.String("employee_id", record.EmployeeID.String()),
		zap.String("period", record.Period().String()))

	if s.payrollMetrics != nil {
		s.payrollMetrics.RecordSalaryCreated(ctx, tenantID, record.Currency.String())
		if record.IsPaid() {
			s.payrollMetrics.RecordSalaryPaid(ctx, tenantID, record.Currency.String(), record.NetInUSD)
		}
	}
	s.publishEvents(ctx, record)

	resp := ToSalaryResponse(record, employee)
	return &resp, nil
}

// Update replaces the content of a salary record and recomputes it
func (s *SalaryService) Update(ctx context.Context, tenantID, id, principal uuid.UUID, req SalaryRequest) (*SalaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary", "update",
		telemetry.WithAttribute(telemetry.SpanAttrSalaryID, id.String()))
	defer span.End()

	details, err := s.buildDetails(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	employee, err := s.employeeReader.FindByIDForTenant(ctx, tenantID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	var record *payroll.SalaryRecord
	var becamePaid bool
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.salaryRepo.FindByIDForTenant(txCtx, tenantID, id)
		if err != nil {
			return err
		}
		wasPaid := record.IsPaid()

		record.EmployeeID = employee.ID
		if err := record.Update(details, principal); err != nil {
			return err
		}
		becamePaid = !wasPaid && record.IsPaid()
		return s.saveGuarded(txCtx, record, &record.ID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Salary record updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("salary_id", record.ID.String()),
		zap.String("status", record.Status.String()))

	if becamePaid && s.payrollMetrics != nil {
		s.payrollMetrics.RecordSalaryPaid(ctx, tenantID, record.Currency.String(), record.NetInUSD)
	}
	s.publishEvents(ctx, record)

	resp := ToSalaryResponse(record, employee)
	return &resp, nil
}

// MarkAsPaid moves a salary record into paid
func (s *SalaryService) MarkAsPaid(ctx context.Context, tenantID, id, principal uuid.UUID, req MarkPaidRequest) (*SalaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary", "mark_paid",
		telemetry.WithAttribute(telemetry.SpanAttrSalaryID, id.String()))
	defer span.End()

	var record *payroll.SalaryRecord
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.salaryRepo.FindByIDForTenant(txCtx, tenantID, id)
		if err != nil {
			return err
		}
		if err := record.MarkAsPaid(principal, req.PaymentDate); err != nil {
			return err
		}
		return s.salaryRepo.Save(txCtx, record)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Salary record marked as paid",
		zap.String("tenant_id", tenantID.String()),
		zap.String("salary_id", record.ID.String()),
		zap.String("paid_by", principal.String()))

	if s.payrollMetrics != nil {
		s.payrollMetrics.RecordSalaryPaid(ctx, tenantID, record.Currency.String(), record.NetInUSD)
	}
	s.publishEvents(ctx, record)

	return s.toResponse(ctx, tenantID, record), nil
}

// GetByID retrieves a salary record with its employee
func (s *SalaryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*SalaryResponse, error) {
	record, err := s.salaryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, tenantID, record), nil
}

// List retrieves a page of salary records
func (s *SalaryService) List(ctx context.Context, tenantID uuid.UUID, filter SalaryListFilter) (*shared.Paginated[SalaryResponse], error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}

	records, err := s.salaryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.salaryRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].EmployeeID)
	}
	employees, err := s.employeeReader.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]SalaryResponse, 0, len(records))
	for i := range records {
		var employee *payroll.Employee
		if e, ok := employees[records[i].EmployeeID]; ok {
			employee = &e
		}
		items = append(items, ToSalaryResponse(&records[i], employee))
	}

	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Delete soft-deletes a salary record
func (s *SalaryService) Delete(ctx context.Context, tenantID, id, principal uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrSalaryID, id.String()))
	defer span.End()

	var record *payroll.SalaryRecord
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.salaryRepo.FindByIDForTenant(txCtx, tenantID, id)
		if err != nil {
			return err
		}
		if err := record.Delete(principal); err != nil {
			return err
		}
		return s.salaryRepo.Delete(txCtx, record)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Salary record deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("salary_id", id.String()),
		zap.String("deleted_by", principal.String()))

	s.publishEvents(ctx, record)
	return nil
}

// Calculate previews the breakdown of a salary without persisting it
func (s *SalaryService) Calculate(ctx context.Context, tenantID uuid.UUID, req CalculateSalaryRequest) (*BreakdownResponse, error) {
	errs := shared.ValidationErrors{}
	input := s.buildInput(ctx, tenantID, uuid.Nil, req.SalaryInput, errs)
	errs.Merge(input.Validate())
	if errs.HasErrors() {
		return nil, errs
	}

	breakdown, err := payroll.Calculate(input)
	if err != nil {
		return nil, err
	}
	resp := ToBreakdownResponse(breakdown)
	return &resp, nil
}

// Summary aggregates the salary records of one period
func (s *SalaryService) Summary(ctx context.Context, tenantID uuid.UUID, month string, year int) (*SummaryResponse, error) {
	period, err := payroll.ParsePeriod(month, year)
	if err != nil {
		return nil, err
	}

	summary, err := s.salaryRepo.SummarizePeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	byStatus := map[string]int64{
		payroll.SalaryStatusPending.String():    0,
		payroll.SalaryStatusProcessing.String(): 0,
		payroll.SalaryStatusPaid.String():       0,
	}
	for status, n := range summary.CountByStatus {
		byStatus[status.String()] = n
	}

	return &SummaryResponse{
		Month:         period.Month,
		Year:          period.Year,
		Count:         summary.Count,
		CountByStatus: byStatus,
		TotalNetUSD:   summary.TotalNetUSD.Round(2),
		TotalNetCDF:   summary.TotalNetCDF.Round(2),
		TotalGross:    summary.TotalGross.Round(2),
	}, nil
}

// Payslip renders the payslip PDF of a salary record
func (s *SalaryService) Payslip(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	if s.payslipRenderer == nil {
		return nil, "", shared.NewDomainError("PAYSLIP_UNAVAILABLE", "Payslip rendering is not configured")
	}

	record, err := s.salaryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	employee, err := s.employeeReader.FindByIDForTenant(ctx, tenantID, record.EmployeeID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, "", err
	}

	pdf, err := s.payslipRenderer.Render(record, employee)
	if err != nil {
		s.logger.Error("Failed to render payslip",
			zap.String("salary_id", id.String()),
			zap.Error(err))
		return nil, "", err
	}
	return pdf, payslipFilename(record, employee), nil
}

// saveGuarded runs the period guard and persists the record. Must be called
// inside a transaction.
func (s *SalaryService) saveGuarded(ctx context.Context, record *payroll.SalaryRecord, excludeID *uuid.UUID) error {
	exists, err := s.salaryRepo.ExistsForPeriod(ctx, record.TenantID, record.EmployeeID, record.Period(), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return periodConflict(record.Period())
	}
	return s.salaryRepo.Save(ctx, record)
}

func periodConflict(period payroll.Period) error {
	return shared.NewDomainError(shared.CodeConflict,
		"A salary record already exists for this employee for "+period.String())
}

func (s *SalaryService) buildDetails(ctx context.Context, tenantID uuid.UUID, req SalaryRequest) (payroll.SalaryDetails, error) {
	errs := shared.ValidationErrors{}

	period, err := payroll.ParsePeriod(req.Month, req.Year)
	mergeValidation(errs, err)

	status, err := payroll.ParseSalaryStatus(req.Status)
	mergeValidation(errs, err)

	input := s.buildInput(ctx, tenantID, req.EmployeeID, req.SalaryInput, errs)
	errs.Merge(input.Validate())

	if errs.HasErrors() {
		return payroll.SalaryDetails{}, errs
	}
	return payroll.SalaryDetails{
		Period:          period,
		Input:           input,
		Status:          status,
		PaymentDate:     req.PaymentDate,
		PayrollPeriodID: req.PayrollPeriodID,
		Notes:           req.Notes,
	}, nil
}

// buildInput converts request fields into a calculation input, adding any
// field errors to errs.
func (s *SalaryService) buildInput(ctx context.Context, tenantID, employeeID uuid.UUID, req SalaryInput, errs shared.ValidationErrors) payroll.CalculationInput {
	input := payroll.CalculationInput{
		Bonus:              req.Bonus,
		QualityBonus:       req.QualityBonus,
		OvertimeHours:      req.OvertimeHours,
		OvertimeRate:       req.OvertimeRate,
		Regularization:     req.Regularization,
		TransportDeduction: req.TransportDeduction,
		AdvanceSalary:      req.AdvanceSalary,
		ProductLoss:        req.ProductLoss,
		ExchangeRate:       s.config.DefaultExchangeRate,
		Currency:           s.config.DefaultCurrency,
	}
	if req.BasicSalary != nil {
		input.BasicSalary = *req.BasicSalary
	}
	if req.DailyRate != nil {
		input.Attendance.DailyRate = *req.DailyRate
	}
	input.Attendance.TotalDays = req.TotalDays
	if req.DaysPresent != nil {
		input.Attendance.DaysPresent = *req.DaysPresent
	}
	if req.ExchangeRate != nil {
		input.ExchangeRate = *req.ExchangeRate
	}

	if strings.TrimSpace(req.Currency) != "" {
		currency, err := valueobject.ParseCurrency(req.Currency)
		if err != nil {
			errs.Add("currency", "Must be one of: USD CDF")
		} else {
			input.Currency = currency
		}
	}

	parse := func(field string, raw json.RawMessage) payroll.LineItems {
		return s.parseLineItems(ctx, tenantID, employeeID, field, raw, errs)
	}
	input.Allowances = parse("allowances", req.Allowances)
	input.Deductions = parse("deductions", req.Deductions)
	input.DisciplinaryDeductions = parse("disciplinary_deductions", req.DisciplinaryDeductions)
	input.OtherAllowances = parse("other_allowances", req.OtherAllowances)
	input.OtherDeductions = parse("other_deductions", req.OtherDeductions)

	return input
}

// parseLineItems parses one line-item field. Recoverable failures are logged
// and degrade to an empty list; strict failures become field errors.
func (s *SalaryService) parseLineItems(ctx context.Context, tenantID, employeeID uuid.UUID, field string, raw json.RawMessage, errs shared.ValidationErrors) payroll.LineItems {
	items, err := payroll.ParseLineItems(raw, s.config.LineItemMode)
	if err == nil {
		return items
	}

	if s.payrollMetrics != nil {
		s.payrollMetrics.RecordLineItemParseFailure(ctx, tenantID, field)
	}

	var parseErr *payroll.ParseError
	if errors.As(err, &parseErr) && parseErr.Recoverable() {
		s.logger.Warn("Ignoring malformed line items",
			zap.String("field", field),
			zap.String("tenant_id", tenantID.String()),
			zap.String("employee_id", employeeID.String()),
			zap.Error(err))
		return payroll.LineItems{}
	}

	errs.Add(field, "Must be a list of objects with description and amount")
	return payroll.LineItems{}
}

func (s *SalaryService) toDomainFilter(filter SalaryListFilter) (payroll.SalaryRecordFilter, error) {
	f := payroll.SalaryRecordFilter{
		Filter:          shared.DefaultFilter(),
		EmployeeID:      filter.EmployeeID,
		Year:            filter.Year,
		Currency:        strings.ToUpper(strings.TrimSpace(filter.Currency)),
		PayrollPeriodID: filter.PayrollPeriodID,
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = min(filter.PageSize, shared.MaxPageSize)
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = strings.ToLower(filter.OrderDir)
	}

	errs := shared.ValidationErrors{}
	if filter.Month != "" {
		month, ok := payroll.CanonicalMonth(filter.Month)
		if !ok {
			errs.Add("month", "Must be a month name or a number between 1 and 12")
		}
		f.Month = month
	}
	if filter.Status != "" {
		status, err := payroll.ParseSalaryStatus(filter.Status)
		mergeValidation(errs, err)
		f.Status = status
	}
	return f, errs.Err()
}

func (s *SalaryService) toResponse(ctx context.Context, tenantID uuid.UUID, record *payroll.SalaryRecord) *SalaryResponse {
	employee, err := s.employeeReader.FindByIDForTenant(ctx, tenantID, record.EmployeeID)
	if err != nil {
		s.logger.Debug("Employee not found for salary record",
			zap.String("salary_id", record.ID.String()),
			zap.String("employee_id", record.EmployeeID.String()),
			zap.Error(err))
		employee = nil
	}
	resp := ToSalaryResponse(record, employee)
	return &resp
}

// publishEvents dispatches and clears the pending domain events of the record.
// Failures are logged; the change is already committed.
func (s *SalaryService) publishEvents(ctx context.Context, record *payroll.SalaryRecord) {
	events := record.GetDomainEvents()
	record.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish salary events",
			zap.String("salary_id", record.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err))
	}
}

// mergeValidation folds field errors into errs and keeps other errors as a
// generic message on the "_" key.
func mergeValidation(errs shared.ValidationErrors, err error) {
	if err == nil {
		return
	}
	var verrs shared.ValidationErrors
	if errors.As(err, &verrs) {
		errs.Merge(verrs)
		return
	}
	errs.Add("_", err.Error())
}

func payslipFilename(record *payroll.SalaryRecord, employee *payroll.Employee) string {
	name := record.EmployeeID.String()
	if employee != nil && employee.Code != "" {
		name = employee.Code
	}
	return "payslip-" + name + "-" + record.Period().Key() + ".pdf"
}
