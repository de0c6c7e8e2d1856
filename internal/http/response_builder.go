package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events raised through HX-Trigger.
const (
	EventExpensesChanged  = "expenses:changed"
	EventShowNotification = "show-notification"
	EventDialogClosed     = "dialog:closed"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerExpensesChanged makes every dashboard partial refetch.
func (b *HTMXResponseBuilder) TriggerExpensesChanged(op, id string) *HTMXResponseBuilder {
	return b.Trigger(EventExpensesChanged, map[string]string{"op": op, "id": id})
}

// TriggerDialogClosed tells the page the modal was dismissed.
func (b *HTMXResponseBuilder) TriggerDialogClosed() *HTMXResponseBuilder {
	return b.Trigger(EventDialogClosed, struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is the payload of a show-notification event.
type Notification struct {
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Duration    int              `json:"duration"`
}

// TriggerNotification adds a show-notification toast.
func (b *HTMXResponseBuilder) TriggerNotification(n Notification) *HTMXResponseBuilder {
	return b.Trigger(EventShowNotification, n)
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(title string) *HTMXResponseBuilder {
	return b.TriggerNotification(Notification{Type: NotificationSuccess, Title: title, Duration: 3000})
}

// TriggerErrorNotification shows title with the underlying error message.
func (b *HTMXResponseBuilder) TriggerErrorNotification(title string, detail ...string) *HTMXResponseBuilder {
	n := Notification{Type: NotificationError, Title: title, Duration: 5000}
	if len(detail) > 0 {
		n.Description = detail[0]
	}
	return b.TriggerNotification(n)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
