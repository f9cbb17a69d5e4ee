package words

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRupees(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zero", "0", "Rupees Zero Only"},
		{"single digit", "7", "Rupees Seven Only"},
		{"teen", "19", "Rupees Nineteen Only"},
		{"round tens", "40", "Rupees Forty Only"},
		{"hyphenated tens", "99", "Rupees Ninety-Nine Only"},
		{"hundred", "100", "Rupees One Hundred Only"},
		{"hundred and", "105", "Rupees One Hundred and Five Only"},
		{"thousand", "1000", "Rupees One Thousand Only"},
		{"thousand and", "1001", "Rupees One Thousand and One Only"},
		{"one lakh", "100000", "Rupees One Lakh Only"},
		{"one crore", "10000000", "Rupees One Crore Only"},
		{"mixed groups", "1234567", "Rupees Twelve Lakh Thirty-Four Thousand Five Hundred and Sixty-Seven Only"},
		{"largest", "999999999", "Rupees Ninety-Nine Crore Ninety-Nine Lakh Ninety-Nine Thousand Nine Hundred and Ninety-Nine Only"},
		{"paise", "10.50", "Rupees Ten and Fifty Paise Only"},
		{"paise only", "0.05", "Rupees Zero and Five Paise Only"},
		{"paise rounding", "2.999", "Rupees Three Only"},
		{"negative", "-25", "Rupees Minus Twenty-Five Only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rupees(decimal.RequireFromString(tt.in))
			if err != nil {
				t.Fatalf("Rupees(%s) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Rupees(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRupeesOverflow(t *testing.T) {
	for _, in := range []string{"1000000000", "1234567890.12", "999999999.996"} {
		_, err := Rupees(decimal.RequireFromString(in))
		if !errors.Is(err, ErrAmountOverflow) {
			t.Fatalf("Rupees(%s) error = %v, want ErrAmountOverflow", in, err)
		}
	}
}

func TestRupeesAlwaysNamesCurrency(t *testing.T) {
	for n := int64(0); n < 100_000; n += 37 {
		got, err := Rupees(decimal.NewFromInt(n))
		if err != nil {
			t.Fatalf("Rupees(%d) error: %v", n, err)
		}
		if !strings.HasPrefix(got, "Rupees ") || !strings.HasSuffix(got, " Only") {
			t.Fatalf("Rupees(%d) = %q", n, got)
		}
		if strings.Contains(got, "  ") {
			t.Fatalf("Rupees(%d) has a double space: %q", n, got)
		}
	}
}

func TestInteger(t *testing.T) {
	if got := Integer(0); got != "Zero" {
		t.Fatalf("Integer(0) = %q", got)
	}
	if got := Integer(20_00_00_000); got != "Twenty Crore" {
		t.Fatalf("Integer(20 crore) = %q", got)
	}
	if got := Integer(1_500_00_00_000); got != "One Thousand Five Hundred Crore" {
		t.Fatalf("Integer(1500 crore) = %q", got)
	}
}
