package auth

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/validation"
)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput is the login request body. UsernameOrEmail matches either field.
type LoginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
}

// Result is returned by a successful register or login.
type Result struct {
	AccessToken string               `json:"accessToken"`
	User        credential.Principal `json:"user"`
}

// Outcomes logged and counted per operation.
const (
	outcomeSuccess      = observability.OutcomeSuccess
	outcomeInvalidInput = observability.OutcomeInvalid
	outcomeConflict     = "conflict"
	outcomeNotFound     = "not_found"
	outcomeUnauthorized = "unauthorized"
	outcomeError        = observability.OutcomeFailure
)

// Service registers principals and issues tokens for them.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store   credential.Store
	hasher  password.Hasher
	tokens  TokenIssuer
	log     *logger.Logger
	metrics *observability.AuthMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.log = log.WithComponent("auth") }
}

// WithMetrics sets the counters recorded for each operation.
func WithMetrics(m *observability.AuthMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the auth service.
func NewService(store credential.Store, hasher password.Hasher, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a principal and returns an access token for it.
//
// Uniqueness is checked before hashing so a taken username or email costs no
// hash. The store enforces the same rule on insert; losing that race also
// yields Conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanAuthRegister)
	res, outcome, err := s.register(ctx, in)
	s.finish(ctx, op, "register", outcome, res, err)
	s.metrics.RecordRegister(ctx, outcome)
	return res, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (*Result, string, error) {
	if err := validation.Validate(in); err != nil {
		return nil, outcomeInvalidInput, err
	}

	existing, err := s.store.FindByIdentity(ctx, in.Username, in.Email, 0)
	switch {
	case err == nil:
		return nil, outcomeConflict, errors.Conflict(credential.ConflictField(existing, in.Username, in.Email))
	case !stderrors.Is(err, credential.ErrNotFound):
		return nil, outcomeError, storeError(err)
	}

	start := time.Now()
	hash, err := s.hasher.Hash(in.Password)
	s.metrics.RecordPassword(ctx, "hash", time.Since(start))
	if err != nil {
		return nil, outcomeError, errors.Internal(err)
	}

	rec, err := s.store.Insert(ctx, in.Username, in.Email, hash)
	if err != nil {
		var dup *credential.DuplicateError
		if stderrors.As(err, &dup) {
			return nil, outcomeConflict, errors.Conflict(dup.Field)
		}
		return nil, outcomeError, storeError(err)
	}

	res, err := s.issue(rec)
	if err != nil {
		return nil, outcomeError, err
	}
	return res, outcomeSuccess, nil
}

// Login verifies a password and returns an access token.
// An unknown identifier is NotFound; a wrong password is Unauthorized.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanAuthLogin)
	res, outcome, err := s.login(ctx, in)
	s.finish(ctx, op, "login", outcome, res, err)
	s.metrics.RecordLogin(ctx, outcome)
	return res, err
}

func (s *Service) login(ctx context.Context, in LoginInput) (*Result, string, error) {
	if err := validation.Validate(in); err != nil {
		return nil, outcomeInvalidInput, err
	}

	rec, err := s.store.FindByUsernameOrEmail(ctx, in.UsernameOrEmail, 0)
	if err != nil {
		if stderrors.Is(err, credential.ErrNotFound) {
			return nil, outcomeNotFound, errors.NotFound()
		}
		return nil, outcomeError, storeError(err)
	}

	start := time.Now()
	ok := s.hasher.Verify(in.Password, rec.PasswordHash)
	s.metrics.RecordPassword(ctx, "verify", time.Since(start))
	if !ok {
		return nil, outcomeUnauthorized, errors.Unauthorized()
	}

	res, err := s.issue(rec)
	if err != nil {
		return nil, outcomeError, err
	}
	return res, outcomeSuccess, nil
}

// Principal returns the public view of the principal with the given id.
func (s *Service) Principal(ctx context.Context, id int64) (credential.Principal, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, credential.ErrNotFound) {
			return credential.Principal{}, errors.NotFound()
		}
		return credential.Principal{}, storeError(err)
	}
	return rec.Principal(), nil
}

func (s *Service) issue(rec *credential.Record) (*Result, error) {
	token, err := s.tokens.Issue(rec.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &Result{AccessToken: token, User: rec.Principal()}, nil
}

// finish ends the span and logs the outcome. Inputs are never logged.
func (s *Service) finish(ctx context.Context, op *observability.Operation, operation, outcome string, res *Result, err error) {
	fields := logger.Fields(
		logger.FieldOperation, operation,
		logger.FieldOutcome, outcome,
		logger.FieldDuration, op.Duration().Milliseconds(),
	)
	if res != nil {
		op.SetAttributes(attribute.Int64(observability.AttrPrincipalID, res.User.ID))
		fields[logger.FieldPrincipalID] = res.User.ID
	}
	op.End(outcome, err)

	log := s.log.WithContext(ctx)
	switch outcome {
	case outcomeSuccess:
		log.Info("Credential issued", fields)
	case outcomeError:
		fields[logger.FieldError] = err.Error()
		log.Error("Credential operation failed", fields)
	default:
		if app, ok := errors.AsAppError(err); ok && app.Details["field"] != nil {
			fields["field"] = app.Details["field"]
		}
		log.Warn("Credential request rejected", fields)
	}
}

// storeError maps a store failure to an AppError, keeping ones the store
// already translated.
func storeError(err error) *errors.AppError {
	if app, ok := errors.AsAppError(err); ok {
		return app
	}
	return errors.DatabaseError(err)
}
