package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar
	CDF Currency = "CDF" // Congolese Franc
)

// DefaultCurrency is the default currency for payroll
const DefaultCurrency = USD

var (
	ErrUnsupportedCurrency = errors.New("currency must be one of USD, CDF")
	ErrInvalidExchangeRate = errors.New("exchange rate must be greater than zero")
)

// ParseCurrency parses a currency code case-insensitively
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", ErrUnsupportedCurrency
	}
	return c, nil
}

// IsValid reports whether c is a supported payroll currency
func (c Currency) IsValid() bool {
	return c == USD || c == CDF
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Money is a value object representing monetary amounts.
// It is immutable: all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, ErrUnsupportedCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// ExchangeRate is the number of CDF per one USD
type ExchangeRate struct {
	rate decimal.Decimal
}

// NewExchangeRate validates and wraps a CDF-per-USD rate
func NewExchangeRate(rate decimal.Decimal) (ExchangeRate, error) {
	if !rate.IsPositive() {
		return ExchangeRate{}, ErrInvalidExchangeRate
	}
	return ExchangeRate{rate: rate}, nil
}

// Convert projects m into the target currency. Amounts are not rounded.
func (r ExchangeRate) Convert(m Money, target Currency) (Money, error) {
	if !target.IsValid() {
		return Money{}, ErrUnsupportedCurrency
	}
	if !r.rate.IsPositive() {
		return Money{}, ErrInvalidExchangeRate
	}
	switch {
	case m.currency == target:
		return m, nil
	case m.currency == USD && target == CDF:
		return Money{amount: m.amount.Mul(r.rate), currency: CDF}, nil
	case m.currency == CDF && target == USD:
		return Money{amount: m.amount.Div(r.rate), currency: USD}, nil
	}
	return Money{}, ErrUnsupportedCurrency
}

// DualAmount is one amount expressed in both payroll currencies
type DualAmount struct {
	USD decimal.Decimal
	CDF decimal.Decimal
}

// ConvertNet expresses net, denominated in currency, in both USD and CDF.
// Results are unrounded so the caller can round once at output.
func ConvertNet(net decimal.Decimal, currency Currency, rate ExchangeRate) (DualAmount, error) {
	m, err := NewMoney(net, currency)
	if err != nil {
		return DualAmount{}, err
	}
	usd, err := rate.Convert(m, USD)
	if err != nil {
		return DualAmount{}, err
	}
	cdf, err := rate.Convert(m, CDF)
	if err != nil {
		return DualAmount{}, err
	}
	return DualAmount{USD: usd.Amount(), CDF: cdf.Amount()}, nil
}

// Value implements driver.Valuer for database storage
func (c Currency) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner for database retrieval
func (c *Currency) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = DefaultCurrency
	case string:
		*c = Currency(v)
	case []byte:
		*c = Currency(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Currency", value)
	}
	return nil
}
