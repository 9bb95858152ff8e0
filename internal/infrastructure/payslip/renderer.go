// Package payslip renders salary records as single-page PDF payslips.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// RenderError wraps a gofpdf failure
type RenderError struct {
	SalaryID string
	Cause    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render payslip %s: %v", e.SalaryID, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Option configures a Renderer
type Option func(*Renderer)

// WithCompany sets the company name printed in the header
func WithCompany(name string) Option {
	return func(r *Renderer) {
		r.company = name
	}
}

// WithCompression toggles PDF stream compression
func WithCompression(enabled bool) Option {
	return func(r *Renderer) {
		r.compress = enabled
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// Renderer produces A4 payslips with gofpdf core fonts
type Renderer struct {
	company  string
	compress bool
	now      func() time.Time
}

// NewRenderer creates a payslip renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		company:  "Payroll",
		compress: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const (
	labelWidth  = 120.0
	amountWidth = 60.0
	lineHeight  = 7.0
)

// Render draws the payslip. employee may be nil when the employee was removed.
func (r *Renderer) Render(record *payroll.SalaryRecord, employee *payroll.Employee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.now())
	pdf.SetTitle(fmt.Sprintf("Payslip %s", record.Period().String()), true)
	pdf.SetAuthor(r.company, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	currency := string(record.Currency)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr("Payslip for "+record.Period().String()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	name, code := "Unknown employee", ""
	if employee != nil {
		name, code = employee.Name, employee.Code
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, lineHeight, tr("Employee: "+name), "", 1, "L", false, 0, "")
	if code != "" {
		pdf.CellFormat(0, lineHeight, tr("Code: "+code), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, lineHeight, "Status: "+title(string(record.Status)), "", 1, "L", false, 0, "")
	if record.PaymentDate != nil {
		pdf.CellFormat(0, lineHeight, "Payment date: "+record.PaymentDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	row := func(label string, amount decimal.Decimal) {
		pdf.CellFormat(labelWidth, lineHeight, tr(label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, lineHeight, formatMoney(amount, currency), "B", 1, "R", false, 0, "")
	}
	section := func(heading string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, lineHeight, heading, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	items := func(list payroll.LineItems) {
		for _, item := range list {
			row("  "+item.Description, item.Amount)
		}
	}

	section("Attendance")
	pdf.CellFormat(labelWidth, lineHeight,
		fmt.Sprintf("Days present %d of %d (absent %d)", record.DaysPresent, record.TotalDays, record.DaysAbsent),
		"B", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, formatMoney(record.DailyRate, currency)+" / day", "B", 1, "R", false, 0, "")

	section("Earnings")
	row("Basic salary", record.BasicSalary)
	row("Salary for days worked", record.RealSalary)
	items(record.Allowances)
	items(record.OtherAllowances)
	optional := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Bonus", record.Bonus},
		{"Quality bonus", record.QualityBonus},
		{"Overtime", record.OvertimeHours.Mul(record.OvertimeRate)},
		{"Regularization", record.Regularization},
	}
	for _, o := range optional {
		if !o.amount.IsZero() {
			row(o.label, o.amount)
		}
	}
	row("Total allowances", record.TotalAllowances)

	section("Deductions")
	row("Absence", record.DaysDeduction)
	items(record.Deductions)
	items(record.DisciplinaryDeductions)
	items(record.OtherDeductions)
	for _, o := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Transport", record.TransportDeduction},
		{"Salary advance", record.AdvanceSalary},
		{"Product loss", record.ProductLoss},
	} {
		if !o.amount.IsZero() {
			row(o.label, o.amount)
		}
	}
	row("Total deductions", record.TotalDeductions)

	section("Summary")
	row("Gross salary", record.GrossSalary)
	pdf.SetFont("Helvetica", "B", 11)
	row("Net salary", record.NetSalary)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(labelWidth, lineHeight, "Net in USD", "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, formatMoney(record.NetInUSD, "USD"), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelWidth, lineHeight, "Net in CDF", "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, formatMoney(record.NetInCDF, "CDF"), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelWidth, lineHeight, "Exchange rate (CDF per USD)", "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, record.ExchangeRate.String(), "", 1, "R", false, 0, "")

	if record.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(record.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{SalaryID: record.ID.String(), Cause: err}
	}
	return buf.Bytes(), nil
}
