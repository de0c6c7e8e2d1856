package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes bounds every submitted form or JSON body.
const maxBodyBytes = 64 << 10

// MonthLayout is the form of the month query parameter.
const MonthLayout = "2006-01"

// ParseMonthParam returns a moment inside the month named by the "month"
// query parameter (YYYY-MM), or now when it is absent or malformed.
func ParseMonthParam(query url.Values, now time.Time) time.Time {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return now
	}
	m, err := time.ParseInLocation(MonthLayout, v, now.Location())
	if err != nil {
		return now
	}
	return m.AddDate(0, 0, 14)
}

// RequestBodyParser reads a request body once and exposes it as form
// values, whether it was sent form-encoded or as a JSON object.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when the content type or the first byte
// says so, and as a form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(p.contentType)
	if mediaType == "application/json" || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Values returns every top-level scalar field as sanitized form values.
func (p *RequestBodyParser) Values() url.Values {
	out := url.Values{}
	for k, v := range p.formData {
		for _, s := range v {
			out.Add(k, sanitizeInput(s))
		}
	}
	for k, v := range p.jsonData {
		if s, ok := stringValue(v); ok {
			out.Set(k, sanitizeInput(s))
		}
	}
	return out
}

// Get returns a sanitized value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return p.Values().Get(key)
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TooLarge reports whether reading stopped at maxBodyBytes.
func (p *RequestBodyParser) TooLarge() bool {
	var maxErr *http.MaxBytesError
	return errors.As(p.err, &maxErr)
}

// stringValue converts a decoded JSON scalar to its text form.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
