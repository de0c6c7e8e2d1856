package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParam(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query url.Values
		want  time.Month
		year  int
	}{
		{"absent uses now", url.Values{}, time.March, 2024},
		{"valid month", url.Values{"month": {"2023-11"}}, time.November, 2023},
		{"malformed uses now", url.Values{"month": {"11/2023"}}, time.March, 2024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMonthParam(tt.query, now)
			if got.Month() != tt.want || got.Year() != tt.year {
				t.Errorf("ParseMonthParam() = %v, want %d-%02d", got, tt.year, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("amount=12.5&category=bills&note=%20hi%00%20"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("form body reported as JSON")
	}
	if got := p.Get("amount"); got != "12.5" {
		t.Errorf("amount = %q", got)
	}
	if got := p.Get("note"); got != "hi" {
		t.Errorf("note = %q, want control characters stripped", got)
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"amount": 12.5, "category": "food", "expense_date": "2024-01-05", "nested": {"x": 1}}`
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Fatal("expected JSON")
	}
	v := p.Values()
	if v.Get("amount") != "12.5" || v.Get("category") != "food" || v.Get("expense_date") != "2024-01-05" {
		t.Errorf("Values() = %v", v)
	}
	if v.Has("nested") {
		t.Error("nested objects should be ignored")
	}
}

func TestRequestBodyParser_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("{not json"))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Error("expected error for malformed JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("note="+big))
	p = NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil || !p.TooLarge() {
		t.Errorf("expected too-large error, got %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":      "plain",
		"a\x00b\x07c":    "abc",
		"line\nbreak\tx": "line\nbreak\tx",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
