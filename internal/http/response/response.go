package response

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data, Meta: meta(r)})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
		Meta:    meta(r),
	})
}

// Fields writes a flat object of field name to value with status 200.
// Client-facing account and license routes use this shape so existing
// clients can decrypt each field independently.
func Fields(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusOK, fields)
}

func meta(r *http.Request) Meta {
	m := Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if r != nil {
		m.RequestID = chimiddleware.GetReqID(r.Context())
		if m.RequestID == "" {
			m.RequestID = r.Header.Get(chimiddleware.RequestIDHeader)
		}
	}
	return m
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
