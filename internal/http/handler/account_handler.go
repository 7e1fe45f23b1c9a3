package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/http/middleware"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

type AccountHandler struct {
	accounts service.AccountDirectoryService
	auth     service.LoginAuthorizer
	out      encodedWriter
}

func NewAccountHandler(accounts service.AccountDirectoryService, auth service.LoginAuthorizer, enc *codec.ResponseEncoder, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = observability.NewLogger()
	}
	return &AccountHandler{accounts: accounts, auth: auth, out: encodedWriter{enc: enc, logger: logger}}
}

// Login answers with a success or failure status code only. The failure
// reason is never exposed to the caller.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	p, err := parseLogin(r)
	if err != nil {
		observability.RecordLoginAttempt(r.Context(), "failure", string(service.ReasonInvalidInput))
		h.out.invalid(w, r, err)
		return
	}
	outcome, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: p.Username,
		Password: p.Password,
		HWID:     p.HWID,
		ClientIP: observability.ClientIP(r),
	})
	if err != nil {
		h.out.storeFault(w, r, "login", err)
		return
	}
	if !outcome.OK() {
		if outcome.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(max(int(outcome.RetryAfter.Seconds()), 1)))
		}
		h.out.failure(w, r)
		return
	}
	h.out.success(w, r)
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := parseRegister(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	_, err = h.accounts.Register(r.Context(), p.Username, p.Password, p.License)
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		h.audit(r, "account.create", p.Username, "rejected", "duplicate")
		h.out.message(w, r, msgDuplicateUsername)
	case errors.Is(err, service.ErrInvalidLicense):
		h.audit(r, "account.create", p.Username, "rejected", "invalid_license")
		h.out.message(w, r, msgInvalidLicense)
	case errors.Is(err, service.ErrInvalidInput):
		h.out.failure(w, r)
	case err != nil:
		h.out.storeFault(w, r, "register", err)
	default:
		h.audit(r, "account.create", p.Username, "success", "")
		h.out.success(w, r)
	}
}

// Fetch returns the account record with every field encrypted. The bound
// hardware id is never included.
func (h *AccountHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	p, err := parseUsername(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	acct, err := h.accounts.Fetch(r.Context(), p.Username)
	if errors.Is(err, service.ErrAccountNotFound) {
		h.out.failure(w, r)
		return
	}
	if err != nil {
		h.out.storeFault(w, r, "fetch", err)
		return
	}
	h.out.fields(w, r, map[string]string{
		"username":     acct.Username,
		"password":     acct.Password,
		"hwid_resets":  strconv.Itoa(acct.HWIDResets),
		"note":         acct.Note,
		"date_created": acct.DateCreated,
	})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := parseUsername(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	h.mutation(w, r, "account.delete", p.Username, h.accounts.Delete(r.Context(), p.Username))
}

func (h *AccountHandler) ResetHWID(w http.ResponseWriter, r *http.Request) {
	p, err := parseUsername(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	h.mutation(w, r, "account.hwid_reset", p.Username, h.accounts.ResetHardwareID(r.Context(), p.Username))
}

func (h *AccountHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	p, err := parsePassword(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	h.mutation(w, r, "account.password_reset", p.Username, h.accounts.SetPassword(r.Context(), p.Username, p.Password))
}

func (h *AccountHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	p, err := parseNote(r)
	if err != nil {
		h.out.invalid(w, r, err)
		return
	}
	h.mutation(w, r, "account.note_set", p.Username, h.accounts.SetNote(r.Context(), p.Username, p.Note))
}

func (h *AccountHandler) mutation(w http.ResponseWriter, r *http.Request, event, username string, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		h.audit(r, event, username, "rejected", "not_found")
		h.out.message(w, r, msgAccountNotFound)
	case errors.Is(err, service.ErrInvalidInput):
		h.out.failure(w, r)
	case err != nil:
		h.out.storeFault(w, r, event, err)
	default:
		h.audit(r, event, username, "success", "")
		h.out.success(w, r)
	}
}

func (h *AccountHandler) audit(r *http.Request, event, username, outcome, reason string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  event,
		Actor:      auditActor(r),
		TargetType: "account",
		TargetID:   username,
		Action:     event,
		Outcome:    outcome,
		Reason:     reason,
	})
}

func auditActor(r *http.Request) string {
	if tier, ok := middleware.TierFromContext(r.Context()); ok {
		return string(tier)
	}
	return "unknown"
}
