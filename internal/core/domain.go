package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the textual form of an expense date.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Expense is a single recorded spending event owned by one user.
	Expense struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		ExpenseDate Date      `json:"expense_date"`
		Note        *string   `json:"note"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	// CreateExpenseData is the payload sent to the store on creation.
	CreateExpenseData struct {
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		ExpenseDate Date    `json:"expense_date"`
		Note        *string `json:"note,omitempty"`
	}

	// UpdateExpenseData replaces the non-nil fields of the row keyed by ID.
	UpdateExpenseData struct {
		ID          string   `json:"id"`
		Amount      *float64 `json:"amount,omitempty"`
		Category    *string  `json:"category,omitempty"`
		ExpenseDate *Date    `json:"expense_date,omitempty"`
		Note        *string  `json:"note,omitempty"`
	}

	// User is an account that owns expenses.
	User struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Session binds an opaque token to a user until ExpiresAt.
	Session struct {
		Token     string    `json:"token"`
		UserID    string    `json:"user_id"`
		ExpiresAt time.Time `json:"expires_at"`
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrEmptyCategory    = errors.New("category is required")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyID          = errors.New("expense id is required")
	ErrNotFound         = errors.New("expense not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the YYYY-MM-DD form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NoteText returns the note or "" when absent.
func (e Expense) NoteText() string {
	if e.Note == nil {
		return ""
	}
	return *e.Note
}

func (c CreateExpenseData) Validate() error {
	if !ValidAmount(c.Amount) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	return c.ExpenseDate.Validate()
}

func (u UpdateExpenseData) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	if u.Amount != nil && !ValidAmount(*u.Amount) {
		return ErrInvalidAmount
	}
	if u.Category != nil && strings.TrimSpace(*u.Category) == "" {
		return ErrEmptyCategory
	}
	if u.ExpenseDate != nil {
		return u.ExpenseDate.Validate()
	}
	return nil
}

// Apply copies the set fields of u onto e.
func (u UpdateExpenseData) Apply(e *Expense) {
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.ExpenseDate != nil {
		e.ExpenseDate = *u.ExpenseDate
	}
	if u.Note != nil {
		if *u.Note == "" {
			e.Note = nil
		} else {
			n := *u.Note
			e.Note = &n
		}
	}
}
