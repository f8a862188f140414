package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calculator/internal/config"
	"calculator/pkg/calculator"
	"calculator/pkg/domain"
	"calculator/pkg/logger"
	"calculator/pkg/metrics"
	"calculator/pkg/serrors"
	"calculator/pkg/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxKeysPerRequest is used when Options.MaxKeysPerRequest is not positive.
const DefaultMaxKeysPerRequest = 256

// Options configure how sessions accept input.
type Options struct {
	// MaxKeysPerRequest is the largest batch of inputs a single Press may carry.
	MaxKeysPerRequest int
	// Now returns the current time. It defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxKeysPerRequest: cfg.Calculator.MaxKeysPerRequest,
	}
}

// Deps are the collaborators of the session manager.
type Deps struct {
	Storage storage.SessionStorage
	// Metrics may be nil, in which case nothing is recorded.
	Metrics *metrics.Calculator
}

var errNotOwner = errors.New("session belongs to another user")

// manager is the concrete implementation of the Manager interface.
type manager struct {
	options Options
	deps    Deps
	tracer  trace.Tracer
}

// New creates a Manager backed by the storage in deps.
func New(deps Deps, options Options) Manager {
	if options.MaxKeysPerRequest <= 0 {
		options.MaxKeysPerRequest = DefaultMaxKeysPerRequest
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &manager{
		options: options,
		deps:    deps,
		tracer:  otel.Tracer("calculator/internal/session"),
	}
}

func (m *manager) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(attrs...)) //nolint: spancheck
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// storageError maps storage failures to semantic kinds.
func storageError(err error, msg string) error {
	if errors.Is(err, storage.ErrFull) || errors.Is(err, storage.ErrClosed) {
		return serrors.Wrap(serrors.ErrUnavailable, err, "%s", msg)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func notFound() error {
	return serrors.With(serrors.ErrNotFound, "session not found")
}

// Create opens a new session in the initial calculator state.
func (m *manager) Create(ctx context.Context, owner domain.UserID) (_ *domain.Session, err error) {
	ctx, span := m.start(ctx, "session.Create", attribute.String("user.id", owner.String()))
	defer func() { endSpan(span, err) }()

	now := m.options.Now()
	s, err := m.deps.Storage.StoreSession(ctx, domain.Session{
		ID:        domain.NewSessionID(),
		Owner:     owner,
		State:     calculator.InitialState(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storageError(err, "could not store session")
	}

	logger.Debug(ctx, "calculator session created",
		zap.Stringer("sessionID", s.ID),
		zap.Stringer("userID", owner))

	return s, nil
}

// Get returns the session when it exists and belongs to owner. Sessions of
// other users are reported as not found.
func (m *manager) Get(ctx context.Context, owner domain.UserID, ID domain.SessionID) (_ *domain.Session, err error) {
	ctx, span := m.start(ctx, "session.Get", attribute.String("session.id", ID.String()))
	defer func() { endSpan(span, err) }()

	s, err := m.deps.Storage.SessionByID(ctx, ID)
	if err != nil {
		return nil, storageError(err, "could not get session")
	}
	if s == nil || s.Owner != owner {
		return nil, notFound()
	}

	return s, nil
}

// Press applies inputs in order to the session's calculator. Either every input
// is valid and all of them are applied, or none is.
func (m *manager) Press(ctx context.Context,
	owner domain.UserID,
	ID domain.SessionID,
	inputs []calculator.Input) (_ *domain.Session, err error) {
	ctx, span := m.start(ctx, "session.Press",
		attribute.String("session.id", ID.String()),
		attribute.Int("inputs", len(inputs)))
	defer func() { endSpan(span, err) }()

	if len(inputs) > m.options.MaxKeysPerRequest {
		return nil, serrors.With(serrors.ErrBadRequest,
			"too many keys: %d, at most %d are accepted at once", len(inputs), m.options.MaxKeysPerRequest)
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid input %d", i)
		}
	}

	start := time.Now()
	s, err := m.deps.Storage.UpdateSession(ctx, ID, func(s *domain.Session) error {
		if s.Owner != owner {
			return errNotOwner
		}

		machine := calculator.FromState(s.State)
		for _, in := range inputs {
			before := machine.State()
			if err := machine.Apply(in); err != nil {
				return fmt.Errorf("could not apply %s: %w", in, err)
			}
			m.deps.Metrics.Input(ctx, in.Kind.String())
			if !before.HasError() && machine.HasError() {
				m.deps.Metrics.Error(ctx, before.Operation.String())
				logger.Debug(ctx, "calculation ended in error",
					zap.Stringer("sessionID", s.ID),
					zap.String("previous", before.Previous),
					zap.String("current", before.Current),
					zap.Stringer("operation", before.Operation))
			}
		}

		s.State = machine.State()
		s.Inputs += uint(len(inputs))
		s.UpdatedAt = m.options.Now()

		return nil
	})
	m.deps.Metrics.PressDuration(ctx, time.Since(start).Seconds())

	switch {
	case errors.Is(err, errNotOwner):
		return nil, notFound()
	case err != nil:
		return nil, storageError(err, "could not update session")
	case s == nil:
		return nil, notFound()
	}

	span.SetAttributes(attribute.Bool("calculator.error", s.State.HasError()))

	return s, nil
}

// Delete closes the session. Sessions of other users are reported as not found.
func (m *manager) Delete(ctx context.Context, owner domain.UserID, ID domain.SessionID) (err error) {
	ctx, span := m.start(ctx, "session.Delete", attribute.String("session.id", ID.String()))
	defer func() { endSpan(span, err) }()

	// ownership is checked under the session's lock before removal
	s, err := m.deps.Storage.UpdateSession(ctx, ID, func(s *domain.Session) error {
		if s.Owner != owner {
			return errNotOwner
		}

		return nil
	})
	switch {
	case errors.Is(err, errNotOwner):
		return notFound()
	case err != nil:
		return storageError(err, "could not delete session")
	case s == nil:
		return notFound()
	}

	if _, err := m.deps.Storage.DeleteSession(ctx, ID); err != nil {
		return storageError(err, "could not delete session")
	}

	logger.Debug(ctx, "calculator session deleted", zap.Stringer("sessionID", ID))

	return nil
}
