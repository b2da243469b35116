// Package core provides money parsing and handling utilities.
//
// This file contains the Money value used for purchase prices and report
// totals. Amounts are exact decimals; binary floating point is never used.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a price carries no currency code.
const DefaultCurrency = "EUR"

// moneyScale is the number of fraction digits of prices and totals.
const moneyScale = 2

// Money is an amount tagged with a three-letter currency code.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney creates a Money value. An empty currency defaults to EUR.
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}
}

// Euro creates a Money value in euros.
func Euro(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// ParseMoney converts a price string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional currency code after the amount. At most two fraction digits are
// allowed; a sub-cent price is rejected rather than rounded.
//
// Examples:
//
//	ParseMoney("12.34")      -> 12.34 EUR
//	ParseMoney("95,50 EUR")  -> 95.50 EUR
//	ParseMoney("120 CHF")    -> 120 CHF
func ParseMoney(s string) (Money, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Money{}, ErrInvalidAmount
	}

	currency := DefaultCurrency
	if len(fields) == 2 {
		currency = fields[1]
		if !isCurrencyCode(currency) {
			return Money{}, ErrInvalidCurrency
		}
	}

	amount, err := parseAmount(fields[0])
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: currency}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Prices are never negative
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if len(parts) == 2 && len(parts[1]) > moneyScale {
		return decimal.Zero, ErrAmountPrecision
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Add returns the exact sum of two amounts. The receiver's currency wins
// unless it is empty.
func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: currency}
}

// Rounded returns the amount rounded half away from zero to two digits.
// Sums are rounded once, when they are complete.
func (m Money) Rounded() Money {
	return Money{Amount: m.Amount.Round(moneyScale), Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Cmp compares amounts only; currencies are not converted.
func (m Money) Cmp(other Money) int {
	return m.Amount.Cmp(other.Amount)
}

// String renders the amount with two fraction digits and the currency code.
func (m Money) String() string {
	currency := m.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return m.Amount.StringFixed(moneyScale) + " " + currency
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}
