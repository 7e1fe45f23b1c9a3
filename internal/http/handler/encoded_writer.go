package handler

import (
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/http/response"
)

const (
	msgDuplicateUsername = "This username already exists."
	msgInvalidLicense    = "Invalid license."
	msgAccountNotFound   = "Unable to locate that account."
)

// encodedWriter renders business outcomes as flat encrypted field maps.
// Store faults and encryption failures fall back to the plain error envelope.
type encodedWriter struct {
	enc    *codec.ResponseEncoder
	logger *slog.Logger
}

func (e encodedWriter) success(w http.ResponseWriter, r *http.Request) {
	e.write(w, r, e.enc.Success)
}

func (e encodedWriter) failure(w http.ResponseWriter, r *http.Request) {
	e.write(w, r, e.enc.Failure)
}

// invalid answers malformed requests with the masked failure code.
func (e encodedWriter) invalid(w http.ResponseWriter, r *http.Request, err error) {
	e.logger.DebugContext(r.Context(), "invalid request parameters", "fields", invalidFields(err))
	e.failure(w, r)
}

func (e encodedWriter) message(w http.ResponseWriter, r *http.Request, text string) {
	e.write(w, r, func() (map[string]string, error) { return e.enc.Message(text) })
}

func (e encodedWriter) fields(w http.ResponseWriter, r *http.Request, plain map[string]string) {
	e.write(w, r, func() (map[string]string, error) { return e.enc.Fields(plain) })
}

func (e encodedWriter) write(w http.ResponseWriter, r *http.Request, build func() (map[string]string, error)) {
	out, err := build()
	if err != nil {
		e.logger.ErrorContext(r.Context(), "encrypt response failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	response.Fields(w, out)
}

func (e encodedWriter) storeFault(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.logger.ErrorContext(r.Context(), "store operation failed", "operation", op, "error", err)
	response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
