package cli

import (
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1234.5, "1,234.50"},
		{-1234.5, "-1,234.50"},
		{999.999, "1,000.00"},
		{-0.001, "0.00"},
		{1e6, "1,000,000.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	if got := FormatSignedAmount(12.5); got != "+12.50" {
		t.Errorf("FormatSignedAmount(12.5) = %q", got)
	}
	if got := FormatSignedAmount(0); got != "0.00" {
		t.Errorf("FormatSignedAmount(0) = %q", got)
	}
	if got := FormatSignedWhole(-1500.4); got != "-1,500" {
		t.Errorf("FormatSignedWhole(-1500.4) = %q", got)
	}
	if got := FormatSignedWhole(20000); got != "+20,000" {
		t.Errorf("FormatSignedWhole(20000) = %q", got)
	}
}

func TestFormatDeltaPct(t *testing.T) {
	if got := FormatDeltaPct(nil); got != "n/a" {
		t.Errorf("FormatDeltaPct(nil) = %q, want n/a", got)
	}
	v := -0.256
	if got := FormatDeltaPct(&v); got != "-25.6%" {
		t.Errorf("FormatDeltaPct(-0.256) = %q, want -25.6%%", got)
	}
	w := 2.0
	if got := FormatDeltaPct(&w); got != "+200.0%" {
		t.Errorf("FormatDeltaPct(2) = %q, want +200.0%%", got)
	}
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", -1234567: "-1,234,567"} {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDateAndTruncate(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(&d); got != "2024-03-01" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(nil); got != "" {
		t.Errorf("FormatDate(nil) = %q", got)
	}
	if got := Truncate("Büromaterial", 5); got != "Büro…" {
		t.Errorf("Truncate = %q, want Büro…", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}
