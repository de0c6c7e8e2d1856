// Package form turns expense dialog input into store payloads.
package form

import (
	"errors"
	"net/url"
	"strings"

	"spendwise/internal/core"
)

// Mode tells whether a form creates a new expense or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Field names as submitted by the dialog.
const (
	FieldID       = "id"
	FieldAmount   = "amount"
	FieldCategory = "category"
	FieldDate     = "expense_date"
	FieldNote     = "note"
)

// ErrInvalid is wrapped by every validation failure returned from Submit.
var ErrInvalid = errors.New("invalid expense form")

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{FieldAmount, FieldCategory, FieldDate} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "invalid expense form: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Form is the state of the create/edit dialog. All values are kept as the
// raw text typed by the user until Submit.
type Form struct {
	Mode     Mode
	ID       string
	Amount   string
	Category string
	Date     string
	Note     string
	Errors   map[string]string
}

// Payload is the outcome of a successful Submit. Exactly one of Create and
// Update is set.
type Payload struct {
	Create *core.CreateExpenseData
	Update *core.UpdateExpenseData
}

// NewCreate returns an empty form with the date defaulted to today.
func NewCreate(today core.Date) *Form {
	return &Form{Mode: ModeCreate, Date: today.String()}
}

// NewEdit returns a form pre-populated from e.
func NewEdit(e core.Expense) *Form {
	return &Form{
		Mode:     ModeEdit,
		ID:       e.ID,
		Amount:   core.AmountString(e.Amount),
		Category: e.Category,
		Date:     e.ExpenseDate.String(),
		Note:     e.NoteText(),
	}
}

// FromValues rebuilds a submitted form. A non-empty id selects edit mode.
// A missing date falls back to today.
func FromValues(id string, v url.Values, today core.Date) *Form {
	f := &Form{
		Mode:     ModeCreate,
		Amount:   strings.TrimSpace(v.Get(FieldAmount)),
		Category: strings.TrimSpace(v.Get(FieldCategory)),
		Date:     strings.TrimSpace(v.Get(FieldDate)),
		Note:     v.Get(FieldNote),
	}
	if id = strings.TrimSpace(id); id != "" {
		f.Mode = ModeEdit
		f.ID = id
	}
	if f.Date == "" {
		f.Date = today.String()
	}
	return f
}

func (f *Form) IsEdit() bool { return f.Mode == ModeEdit }

// Title is the dialog heading.
func (f *Form) Title() string {
	if f.IsEdit() {
		return "Edit Expense"
	}
	return "Add New Expense"
}

// SubmitLabel is the text of the submit button.
func (f *Form) SubmitLabel() string {
	if f.IsEdit() {
		return "Update Expense"
	}
	return "Add Expense"
}

// CanSubmit reports whether the submit button is enabled.
func (f *Form) CanSubmit() bool {
	return strings.TrimSpace(f.Amount) != "" && strings.TrimSpace(f.Category) != ""
}

// Submit validates the form and builds the store payload. On failure the
// returned error is a *ValidationError and f.Errors is populated.
func (f *Form) Submit() (Payload, error) {
	f.Errors = nil
	errs := make(map[string]string)

	amount, err := core.ParseAmountFloat(f.Amount)
	if err != nil {
		errs[FieldAmount] = "Amount must be a positive number"
	}
	category := strings.TrimSpace(f.Category)
	if category == "" {
		errs[FieldCategory] = "Select a category"
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		errs[FieldDate] = "Enter a valid date"
	}
	if f.IsEdit() && strings.TrimSpace(f.ID) == "" {
		errs[FieldID] = "Missing expense id"
	}
	if len(errs) > 0 {
		f.Errors = errs
		return Payload{}, &ValidationError{Fields: errs}
	}

	var note *string
	if n := strings.TrimSpace(f.Note); n != "" {
		note = &n
	}

	if f.IsEdit() {
		return Payload{Update: &core.UpdateExpenseData{
			ID:          f.ID,
			Amount:      &amount,
			Category:    &category,
			ExpenseDate: &date,
			Note:        note,
		}}, nil
	}
	return Payload{Create: &core.CreateExpenseData{
		Amount:      amount,
		Category:    category,
		ExpenseDate: date,
		Note:        note,
	}}, nil
}
