package observability

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const auditEventVersion = 1

type AuditInput struct {
	EventName  string
	Actor      string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

// AuditEvent is the versioned record written for every administrative or
// login decision. It never carries passwords or hardware ids.
type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventID      string `json:"event_id"`
	EventName    string `json:"event_name"`
	Actor        string `json:"actor"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TS           string `json:"ts"`
}

func (e AuditEvent) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"event_id":    e.EventID,
		"event_name":  e.EventName,
		"actor":       e.Actor,
		"target_type": e.TargetType,
		"action":      e.Action,
		"outcome":     e.Outcome,
		"ts":          e.TS,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if e.EventVersion != auditEventVersion {
		return errors.New("audit event: unsupported event_version")
	}
	if len(missing) > 0 {
		return errors.New("audit event: missing " + strings.Join(missing, ","))
	}
	return nil
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	requestID := r.Header.Get(chimiddleware.RequestIDHeader)
	if requestID == "" {
		requestID = chimiddleware.GetReqID(r.Context())
	}
	reason := in.Reason
	if reason == "" {
		reason = in.Outcome
	}
	return AuditEvent{
		EventVersion: auditEventVersion,
		EventID:      uuid.NewString(),
		EventName:    in.EventName,
		Actor:        in.Actor,
		ActorIP:      clientIP(r),
		TargetType:   in.TargetType,
		TargetID:     in.TargetID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       reason,
		RequestID:    requestID,
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

// EmitAudit logs an audit line. Invalid events are still written, flagged
// with audit_invalid, so nothing is silently dropped.
func EmitAudit(r *http.Request, in AuditInput, attrs ...any) {
	ev := BuildAuditEvent(r, in)
	base := []any{
		"event_version", ev.EventVersion,
		"event_id", ev.EventID,
		"event_name", ev.EventName,
		"actor", ev.Actor,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if err := ev.Validate(); err != nil {
		base = append(base, "audit_invalid", err.Error())
	}
	NewLogger().InfoContext(r.Context(), "audit", append(base, attrs...)...)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP returns the caller address after RealIP rewriting.
func ClientIP(r *http.Request) string {
	return clientIP(r)
}

