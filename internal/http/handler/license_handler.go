package handler

import (
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

type LicenseHandler struct {
	licenses service.LicenseIssuer
	out      encodedWriter
}

func NewLicenseHandler(licenses service.LicenseIssuer, enc *codec.ResponseEncoder, logger *slog.Logger) *LicenseHandler {
	if logger == nil {
		logger = observability.NewLogger()
	}
	return &LicenseHandler{licenses: licenses, out: encodedWriter{enc: enc, logger: logger}}
}

func (h *LicenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	lic, err := h.licenses.Generate(r.Context())
	if err != nil {
		h.out.storeFault(w, r, "license.create", err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "license.create",
		Actor:      auditActor(r),
		TargetType: "license",
		Action:     "generate",
		Outcome:    "success",
	})
	h.out.fields(w, r, map[string]string{
		"license":      lic.Key,
		"date_created": lic.DateCreated,
	})
}
