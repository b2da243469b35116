package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in       string
		amount   string
		currency string
		ok       bool
	}{
		{"1", "1", "EUR", true},
		{"1.23", "1.23", "EUR", true},
		{"1,23", "1.23", "EUR", true},
		{"95,50 EUR", "95.5", "EUR", true},
		{"120 CHF", "120", "CHF", true},
		{" 2.50 ", "2.5", "EUR", true},
		{"0", "0", "EUR", true},
		{"12,3", "12.3", "EUR", true},
		{"1.005", "", "", false},
		{"0,004 EUR", "", "", false},
		{"-1", "", "", false},
		{"+1", "", "", false},
		{"abc", "", "", false},
		{"1.2.3", "", "", false},
		{"12 eur", "", "", false},
		{"12 EUR extra", "", "", false},
		{".", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if !got.Amount.Equal(decimal.RequireFromString(tc.amount)) || got.Currency != tc.currency {
			t.Fatalf("%q expected %s %s, got %s", tc.in, tc.amount, tc.currency, got)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Euro(decimal.RequireFromString("95.5")), "95.50 EUR"},
		{NewMoney(decimal.RequireFromString("100069.99"), ""), "100069.99 EUR"},
		{NewMoney(decimal.Zero, "CHF"), "0.00 CHF"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestParseMoneyRejectsSubCent(t *testing.T) {
	for _, in := range []string{"0,004 EUR", "1.005", "19,999"} {
		if _, err := ParseMoney(in); !errors.Is(err, ErrAmountPrecision) {
			t.Errorf("ParseMoney(%q) error = %v, want ErrAmountPrecision", in, err)
		}
	}
	if _, err := ParseMoney("1.2x5"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("malformed fraction should be ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyAddAndRounded(t *testing.T) {
	cases := []struct {
		amounts []string
		exact   string
		rounded string
	}{
		{[]string{"0.1", "0.2"}, "0.3", "0.3"},
		{[]string{"50.00", "20.00"}, "70", "70"},
		{[]string{"99999.99", "50"}, "100049.99", "100049.99"},
		// rounding each addition would give 0.02
		{[]string{"0.005", "0.005"}, "0.01", "0.01"},
		{[]string{"0.004", "0.004", "0.004"}, "0.012", "0.01"},
		{[]string{"1.005"}, "1.005", "1.01"},
	}
	for _, tc := range cases {
		sum := ZeroMoney("EUR")
		for _, a := range tc.amounts {
			sum = sum.Add(Euro(decimal.RequireFromString(a)))
		}
		if !sum.Amount.Equal(decimal.RequireFromString(tc.exact)) {
			t.Errorf("sum of %v = %s, want exact %s", tc.amounts, sum.Amount, tc.exact)
		}
		if got := sum.Rounded(); !got.Amount.Equal(decimal.RequireFromString(tc.rounded)) || got.Currency != "EUR" {
			t.Errorf("sum of %v rounded = %s, want %s EUR", tc.amounts, got, tc.rounded)
		}
	}

	if got := NewMoney(decimal.Zero, "").Add(NewMoney(decimal.NewFromInt(1), "CHF")); got.Currency != "EUR" {
		t.Errorf("receiver currency should win, got %s", got.Currency)
	}
}
