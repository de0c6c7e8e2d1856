package http

import (
	"context"
	"errors"
	"net/http"

	"spendwise/internal/auth"
	"spendwise/internal/categories"
	"spendwise/internal/core"
	"spendwise/internal/form"
	"spendwise/internal/log"
	"spendwise/internal/presenter"
)

// Toast titles shown after mutations.
const (
	msgAdded        = "Expense added successfully!"
	msgUpdated      = "Expense updated successfully!"
	msgDeleted      = "Expense deleted successfully!"
	msgAddFailed    = "Error adding expense"
	msgUpdateFailed = "Error updating expense"
	msgDeleteFailed = "Error deleting expense"
)

type formView struct {
	Form       *form.Form
	Categories []categories.Category
	Action     string
}

type deleteView struct {
	ID  string
	Row presenter.ExpenseRow
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, f *form.Form) {
	action := "/expenses"
	if f.IsEdit() {
		action = "/expenses/" + f.ID
	}
	s.render(w, r, status, "expense_form", formView{Form: f, Categories: categories.All(), Action: action})
}

func (s *Server) handleNewExpenseDialog(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, form.NewCreate(s.today()))
}

func (s *Server) handleEditExpenseDialog(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, form.NewEdit(e))
}

// readForm parses the submitted body into a dialog form. It answers the
// request itself and returns nil when the body is unreadable.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request, id string) (*form.Form, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		if p.TooLarge() {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
			return nil, false
		}
		BadRequestError("Invalid request format").Write(w)
		return nil, false
	}
	return form.FromValues(id, p.Values(), s.today()), p.IsJSON()
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	f, asJSON := s.readForm(w, r, "")
	if f == nil {
		return
	}
	payload, err := f.Submit()
	if err != nil {
		s.invalidForm(w, r, f, asJSON, err)
		return
	}

	e, err := s.expenses.Create(r.Context(), auth.UserID(r.Context()), *payload.Create)
	if err != nil {
		s.mutationFailed(w, r, msgAddFailed, err, asJSON)
		return
	}
	if asJSON {
		writeJSON(w, r, http.StatusCreated, e)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification(msgAdded).
		TriggerExpensesChanged("created", e.ID).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	f, asJSON := s.readForm(w, r, r.PathValue("id"))
	if f == nil {
		return
	}
	payload, err := f.Submit()
	if err != nil {
		s.invalidForm(w, r, f, asJSON, err)
		return
	}

	e, err := s.expenses.Update(r.Context(), auth.UserID(r.Context()), *payload.Update)
	if err != nil {
		s.mutationFailed(w, r, msgUpdateFailed, err, asJSON)
		return
	}
	if asJSON {
		writeJSON(w, r, http.StatusOK, e)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification(msgUpdated).
		TriggerExpensesChanged("updated", e.ID).
		Write(w)
}

// handleStageDelete remembers the id and asks for confirmation. Nothing is
// deleted here.
func (s *Server) handleStageDelete(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	s.flows.get(flowKey(r)).Stage(e.ID)
	s.render(w, r, http.StatusOK, "delete_dialog", deleteView{ID: e.ID, Row: presenter.Row(e)})
}

// handleConfirmDelete deletes the staged expense. The path id must match
// what was staged; with nothing staged the request is a no-op.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	deleted, err := s.flows.get(flowKey(r)).ConfirmID(r.Context(), r.PathValue("id"),
		func(ctx context.Context, id string) error {
			return s.expenses.Delete(ctx, userID, id)
		})
	switch {
	case errors.Is(err, presenter.ErrNotStaged):
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerErrorNotification(msgDeleteFailed, err.Error()).
			Write(w)
		return
	case err != nil:
		s.mutationFailed(w, r, msgDeleteFailed, err, false)
		return
	case deleted == "":
		NewHTMXResponse().TriggerDialogClosed().Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification(msgDeleted).
		TriggerExpensesChanged("deleted", deleted).
		Write(w)
}

func (s *Server) handleDismissDelete(w http.ResponseWriter, r *http.Request) {
	s.flows.get(flowKey(r)).Dismiss()
	NewHTMXResponse().TriggerDialogClosed().Write(w)
}

// invalidForm answers 422 without touching the store.
func (s *Server) invalidForm(w http.ResponseWriter, r *http.Request, f *form.Form, asJSON bool, err error) {
	if asJSON {
		writeJSON(w, r, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "fields": f.Errors})
		return
	}
	s.renderForm(w, r, http.StatusUnprocessableEntity, f)
}

// mutationFailed reports a failed store call as an error toast carrying
// the underlying message.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, title string, err error, asJSON bool) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), title,
		log.FieldUserID, auth.UserID(r.Context()),
		log.FieldPath, r.URL.Path,
		log.FieldError, err)

	if asJSON {
		writeJSON(w, r, status, map[string]string{"error": err.Error()})
		return
	}
	ErrorResponse(status, title+": "+err.Error()).
		TriggerErrorNotification(title, err.Error()).
		Write(w)
}

func (s *Server) lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("Expense not found").Write(w)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load expense", log.FieldError, err)
	ErrorResponse(http.StatusBadGateway, "Could not load expense. Please retry.").Write(w)
}
