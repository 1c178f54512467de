package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1200", -120000, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{0.1, 10},
		{12.345, 1235},
		{-12.345, -1235},
		{1199.99, 119999},
		{-0.005, -1},
	}
	for _, tc := range cases {
		if got := MoneyFromFloat(tc.in); got.Cents != tc.out {
			t.Errorf("MoneyFromFloat(%v) = %d, want %d", tc.in, got.Cents, tc.out)
		}
	}
}

func TestAmountFromHours(t *testing.T) {
	if got := AmountFromHours(7.5, 13.33); got.Cents != 9998 {
		t.Fatalf("expected 9998 cents, got %d", got.Cents)
	}
	if got := AmountFromHours(0, 20); !got.IsZero() {
		t.Fatalf("expected zero, got %d", got.Cents)
	}
}

func TestMoneyJSON(t *testing.T) {
	var rec struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
		D Money `json:"d"`
		E Money `json:"e"`
	}
	in := `{"a": -1200, "b": "12.5", "c": null, "d": "n/a", "e": {"x": 1}}`
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.A.Cents != -120000 || rec.B.Cents != 1250 {
		t.Fatalf("unexpected values a=%d b=%d", rec.A.Cents, rec.B.Cents)
	}
	if !rec.C.IsZero() || !rec.D.IsZero() || !rec.E.IsZero() {
		t.Fatalf("missing or non-numeric amounts should be zero, got c=%d d=%d e=%d", rec.C.Cents, rec.D.Cents, rec.E.Cents)
	}

	out, err := json.Marshal(Money{Cents: -5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "-0.05" {
		t.Fatalf("expected -0.05, got %s", out)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(Money{Cents: 1234}, "EUR"); !strings.Contains(got, "12.34") {
		t.Fatalf("expected formatted amount to contain 12.34, got %q", got)
	}
	if got := FormatMoney(Money{Cents: 1234}, "bogus"); got != "bogus 12.34" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
