package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// NetSalaryBuckets are histogram boundaries for net salaries in USD.
var NetSalaryBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000}

// PayrollMetrics records payroll activity
type PayrollMetrics struct {
	salaryCreated      *Counter
	salaryPaid         *Counter
	generatedRecords   *Counter
	lineItemParseFails *Counter
	netSalaryUSD       *Histogram
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPayrollMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewPayrollMetrics creates the payroll instruments on meter
func NewPayrollMetrics(meter metric.Meter) (*PayrollMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	pm := &PayrollMetrics{}
	var err error

	if pm.salaryCreated, err = NewCounter(meter,
		"payroll_salary_created_total", "Total number of salary records created", "{records}"); err != nil {
		return nil, err
	}
	if pm.salaryPaid, err = NewCounter(meter,
		"payroll_salary_paid_total", "Total number of salary records marked as paid", "{records}"); err != nil {
		return nil, err
	}
	if pm.generatedRecords, err = NewCounter(meter,
		"payroll_generation_records_total", "Employees processed by bulk generation by outcome", "{records}"); err != nil {
		return nil, err
	}
	if pm.lineItemParseFails, err = NewCounter(meter,
		"payroll_line_item_parse_failures_total", "Malformed line-item inputs", "{inputs}"); err != nil {
		return nil, err
	}
	if pm.netSalaryUSD, err = NewHistogram(meter,
		"payroll_net_salary_usd", "Net salary paid, in USD", "USD", NetSalaryBuckets...); err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordSalaryCreated counts a created salary record
func (pm *PayrollMetrics) RecordSalaryCreated(ctx context.Context, tenantID uuid.UUID, currency string) {
	pm.salaryCreated.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordSalaryPaid counts a payment and records its USD net amount
func (pm *PayrollMetrics) RecordSalaryPaid(ctx context.Context, tenantID uuid.UUID, currency string, netUSD decimal.Decimal) {
	pm.salaryPaid.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
	pm.netSalaryUSD.Record(ctx, netUSD.InexactFloat64(), AttrCurrency.String(currency))
}

// RecordPayrollGenerated records the outcome counts of one generation run
func (pm *PayrollMetrics) RecordPayrollGenerated(ctx context.Context, tenantID uuid.UUID, created, skipped, failed int) {
	tenant := AttrTenantID.String(tenantID.String())
	pm.generatedRecords.Add(ctx, int64(created), tenant, AttrOutcome.String("created"))
	pm.generatedRecords.Add(ctx, int64(skipped), tenant, AttrOutcome.String("skipped"))
	pm.generatedRecords.Add(ctx, int64(failed), tenant, AttrOutcome.String("failed"))
}

// RecordLineItemParseFailure counts a malformed line-item field
func (pm *PayrollMetrics) RecordLineItemParseFailure(ctx context.Context, tenantID uuid.UUID, field string) {
	pm.lineItemParseFails.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrField.String(field),
	)
}
