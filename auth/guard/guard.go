// Package guard decides, per request, whether a route may run.
//
// Public routes pass without inspection. Every other route needs a bearer
// token that verifies, has not expired, and names a principal that still
// exists. Rejections all look the same to the caller; the reason is only
// logged and counted.
package guard

import (
	"context"
	stderrors "errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
)

// Outcome is the reason behind a guard decision.
type Outcome string

const (
	OutcomePublic           Outcome = "public"
	OutcomeAuthenticated    Outcome = "authenticated"
	OutcomeMissingToken     Outcome = "missing_token"
	OutcomeInvalidToken     Outcome = "invalid_token"
	OutcomeExpiredToken     Outcome = "expired_token"
	OutcomeUnknownPrincipal Outcome = "unknown_principal"
	OutcomeStoreError       Outcome = "store_error"
)

// Decision is the result of a check. Principal is set only when Outcome is
// OutcomeAuthenticated.
type Decision struct {
	Outcome   Outcome
	Principal *credential.Principal
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomePublic || d.Outcome == OutcomeAuthenticated
}

// PrincipalLookup resolves a principal id against the credential store.
type PrincipalLookup interface {
	FindByID(ctx context.Context, id int64) (*credential.Record, error)
}

// Guard holds the verifier and store used for every check.
type Guard struct {
	tokens  auth.TokenVerifier
	lookup  PrincipalLookup
	log     *logger.Logger
	metrics *observability.AuthMetrics
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the guard logger.
func WithLogger(log *logger.Logger) Option {
	return func(g *Guard) { g.log = log.WithComponent("guard") }
}

// WithMetrics sets the decision counter.
func WithMetrics(m *observability.AuthMetrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// New creates a guard.
func New(tokens auth.TokenVerifier, lookup PrincipalLookup, opts ...Option) *Guard {
	g := &Guard{tokens: tokens, lookup: lookup, log: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check runs the decision for one request. authorization is the raw
// Authorization header value.
//
// The returned error is nil when the request may proceed,
// errors.Unauthenticated() for every rejection, and errors.DatabaseError
// when the store could not answer.
func (g *Guard) Check(ctx context.Context, public bool, authorization string) (Decision, error) {
	if public {
		// Public routes never touch the token, even a malformed one.
		g.record(ctx, OutcomePublic, nil)
		return Decision{Outcome: OutcomePublic}, nil
	}

	ctx, op := observability.StartOperation(ctx, observability.SpanAuthGuard)
	decision, err := g.authenticate(ctx, authorization)
	if decision.Principal != nil {
		op.SetAttributes(attribute.Int64(observability.AttrPrincipalID, decision.Principal.ID))
	}
	op.End(string(decision.Outcome), err)
	g.record(ctx, decision.Outcome, err)
	return decision, err
}

func (g *Guard) authenticate(ctx context.Context, authorization string) (Decision, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return Decision{Outcome: OutcomeMissingToken}, errors.Unauthenticated()
	}

	id, err := g.tokens.Verify(token)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return Decision{Outcome: OutcomeExpiredToken}, errors.Unauthenticated()
		}
		return Decision{Outcome: OutcomeInvalidToken}, errors.Unauthenticated()
	}

	// The token alone is not enough: the principal must still exist.
	rec, err := g.lookup.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, credential.ErrNotFound) {
			return Decision{Outcome: OutcomeUnknownPrincipal}, errors.Unauthenticated()
		}
		if app, ok := errors.AsAppError(err); ok {
			return Decision{Outcome: OutcomeStoreError}, app
		}
		return Decision{Outcome: OutcomeStoreError}, errors.DatabaseError(err)
	}

	p := rec.Principal()
	return Decision{Outcome: OutcomeAuthenticated, Principal: &p}, nil
}

func (g *Guard) record(ctx context.Context, outcome Outcome, err error) {
	g.metrics.RecordGuard(ctx, string(outcome))

	fields := logger.Fields(logger.FieldOutcome, string(outcome))
	log := g.log.WithContext(ctx)
	switch outcome {
	case OutcomePublic, OutcomeAuthenticated:
		log.Debug("Request admitted", fields)
	case OutcomeStoreError:
		fields[logger.FieldError] = err.Error()
		log.Error("Principal lookup failed", fields)
	default:
		log.Info("Request rejected", fields)
	}
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively; anything else counts as no token.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
