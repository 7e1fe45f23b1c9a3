package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
)

type LoginInput struct {
	Username string
	Password string
	HWID     string
	ClientIP string
}

// AuthorizationEngine validates logins and enforces hardware binding.
// An account is UNBOUND while hardware_id is empty; the first login with a
// matching password binds it and every later login must present the same id
// until an administrator resets it.
type AuthorizationEngine struct {
	accounts  repository.AccountRepository
	passwords security.PasswordStore
	guard     LoginGuard
	logger    *slog.Logger
}

func NewAuthorizationEngine(
	accounts repository.AccountRepository,
	passwords security.PasswordStore,
	guard LoginGuard,
	logger *slog.Logger,
) *AuthorizationEngine {
	if guard == nil {
		guard = NoopLoginGuard{}
	}
	if logger == nil {
		logger = observability.NewLogger()
	}
	return &AuthorizationEngine{accounts: accounts, passwords: passwords, guard: guard, logger: logger}
}

// Login returns an error only for store faults. Every business decision is
// reported through the Outcome.
func (e *AuthorizationEngine) Login(ctx context.Context, in LoginInput) (Outcome, error) {
	ctx, span := observability.StartSpan(ctx, "auth.login")
	defer span.End()

	if in.Username == "" || in.Password == "" || in.HWID == "" {
		return e.finish(ctx, Failure(ReasonInvalidInput)), nil
	}

	if wait := e.checkGuard(ctx, in); wait > 0 {
		out := Failure(ReasonThrottled)
		out.RetryAfter = wait
		return e.finish(ctx, out), nil
	}

	acct, err := e.accounts.FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		e.passwords.VerifyDummy(in.Password)
		return e.fail(ctx, in, ReasonInvalidCredentials), nil
	}
	if err != nil {
		return Outcome{}, e.fault(ctx, err)
	}
	if !e.passwords.Verify(acct.Password, in.Password) {
		return e.fail(ctx, in, ReasonInvalidCredentials), nil
	}

	if acct.Bound() {
		if !security.ConstantTimeEqual(acct.HardwareID, in.HWID) {
			observability.RecordHWIDBind(ctx, "mismatch")
			return e.fail(ctx, in, ReasonHWIDMismatch), nil
		}
		observability.RecordHWIDBind(ctx, "match")
		return e.succeed(ctx, in), nil
	}

	bound, err := e.accounts.BindHardwareID(ctx, in.Username, in.HWID)
	if err != nil {
		return Outcome{}, e.fault(ctx, err)
	}
	if bound {
		observability.RecordHWIDBind(ctx, "bound")
		return e.succeed(ctx, in), nil
	}

	// Another login bound the account between the read and the write, or an
	// admin deleted it. Re-read and admit only a caller presenting the winner's id.
	acct, err = e.accounts.FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return e.fail(ctx, in, ReasonInvalidCredentials), nil
	}
	if err != nil {
		return Outcome{}, e.fault(ctx, err)
	}
	if acct.Bound() && security.ConstantTimeEqual(acct.HardwareID, in.HWID) {
		observability.RecordHWIDBind(ctx, "race_match")
		return e.succeed(ctx, in), nil
	}
	observability.RecordHWIDBind(ctx, "race_lost")
	return e.fail(ctx, in, ReasonHWIDMismatch), nil
}

func (e *AuthorizationEngine) checkGuard(ctx context.Context, in LoginInput) time.Duration {
	wait, err := e.guard.Check(ctx, in.Username, in.ClientIP)
	if err != nil {
		observability.RecordLoginGuardEvent(ctx, "check", "error")
		e.logger.WarnContext(ctx, "login guard check failed", "error", err)
		return 0
	}
	if wait > 0 {
		observability.RecordLoginGuardEvent(ctx, "check", "throttled")
		observability.RecordLoginGuardCooldown(ctx, "check", wait)
		return wait
	}
	observability.RecordLoginGuardEvent(ctx, "check", "allowed")
	return 0
}

func (e *AuthorizationEngine) fail(ctx context.Context, in LoginInput, reason FailureReason) Outcome {
	cooldown, err := e.guard.RegisterFailure(ctx, in.Username, in.ClientIP)
	if err != nil {
		observability.RecordLoginGuardEvent(ctx, "failure", "error")
		e.logger.WarnContext(ctx, "login guard failure tracking failed", "error", err)
	} else if cooldown > 0 {
		observability.RecordLoginGuardCooldown(ctx, "failure", cooldown)
	}
	return e.finish(ctx, Failure(reason))
}

func (e *AuthorizationEngine) succeed(ctx context.Context, in LoginInput) Outcome {
	if err := e.guard.Reset(ctx, in.Username, in.ClientIP); err != nil {
		observability.RecordLoginGuardEvent(ctx, "reset", "error")
		e.logger.WarnContext(ctx, "login guard reset failed", "error", err)
	}
	return e.finish(ctx, Success())
}

func (e *AuthorizationEngine) fault(ctx context.Context, err error) error {
	observability.RecordLoginAttempt(ctx, "error", "store")
	observability.AnnotateSpan(ctx, "error", err)
	return err
}

func (e *AuthorizationEngine) finish(ctx context.Context, out Outcome) Outcome {
	if out.OK() {
		observability.RecordLoginAttempt(ctx, "success", "ok")
		observability.AnnotateSpan(ctx, "success", nil)
	} else {
		observability.RecordLoginAttempt(ctx, "failure", string(out.Reason))
		observability.AnnotateSpan(ctx, string(out.Reason), nil)
	}
	return out
}
