// Package session wraps the pure interpreter in a stateful client session:
// it threads (contract, state) across transactions, resolves merkleized
// disclosures from a continuation store, and adds structured logging and
// tracing around the pure core. The core itself stays free of I/O.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mindburn-Labs/accord/pkg/advisor"
	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
	"github.com/Mindburn-Labs/accord/pkg/store"
)

const tracerName = "accord.session"

// Session holds one contract instance between transactions. Methods are not
// safe for concurrent use; a session is a single client's view.
type Session struct {
	contract contract.Contract
	state    semantics.State
	store    store.ContinuationStore
	logger   *slog.Logger
	tracer   trace.Tracer
	maxSteps int
}

// Option configures a session.
type Option func(*Session)

// WithStore attaches a continuation store used to resolve merkleized
// disclosures whose input names a hash without a body.
func WithStore(s store.ContinuationStore) Option {
	return func(sess *Session) { sess.store = s }
}

// WithLogger overrides the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) { sess.logger = l }
}

// WithMaxSteps bounds internal reduction steps per transaction.
func WithMaxSteps(n int) Option {
	return func(sess *Session) { sess.maxSteps = n }
}

// New creates a session over an initial (contract, state) pair.
func New(c contract.Contract, s semantics.State, opts ...Option) *Session {
	sess := &Session{
		contract: c,
		state:    s.Clone(),
		logger:   slog.Default().With("component", "session"),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess
}

// Contract returns the session's current contract.
func (s *Session) Contract() contract.Contract { return s.contract }

// State returns a copy of the session's current state.
func (s *Session) State() semantics.State { return s.state.Clone() }

func (s *Session) semanticsOptions() []semantics.Option {
	if s.maxSteps > 0 {
		return []semantics.Option{semantics.WithStepBound(s.maxSteps)}
	}
	return nil
}

// resolveDisclosures fills in continuation bodies for inputs that disclose a
// hash without a contract, using the attached store. Inputs that already
// carry a body pass through untouched.
func (s *Session) resolveDisclosures(ctx context.Context, inputs []contract.Input) ([]contract.Input, error) {
	out := make([]contract.Input, len(inputs))
	copy(out, inputs)
	for i, in := range out {
		if in.Continuation == nil || in.Continuation.Contract != nil {
			continue
		}
		if s.store == nil {
			return nil, fmt.Errorf("session: input %d discloses hash %s but no store is attached",
				i, in.Continuation.Hash)
		}
		resolved, err := s.store.Get(ctx, in.Continuation.Hash)
		if err != nil {
			return nil, fmt.Errorf("session: resolving continuation %s: %w", in.Continuation.Hash, err)
		}
		out[i].Continuation = &contract.MerkleizedContinuation{
			Hash:     in.Continuation.Hash,
			Contract: resolved,
		}
	}
	return out, nil
}

// Apply runs one transaction against the session: interval fixing, input
// application, and quiescence reduction. On success the session advances to
// the new (contract, state); on failure it is unchanged.
func (s *Session) Apply(ctx context.Context, interval semantics.TimeInterval, inputs []contract.Input) (semantics.TransactionOutput, error) {
	ctx, span := s.tracer.Start(ctx, "session.apply",
		trace.WithAttributes(
			attribute.Int64("accord.interval.from", interval.From),
			attribute.Int64("accord.interval.to", interval.To),
			attribute.Int("accord.inputs", len(inputs)),
		))
	defer span.End()

	resolved, err := s.resolveDisclosures(ctx, inputs)
	if err != nil {
		span.RecordError(err)
		return semantics.TransactionOutput{}, err
	}

	out, err := semantics.ComputeTransaction(interval, s.state, s.contract, resolved, s.semanticsOptions()...)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "transaction rejected", "error", err)
		return semantics.TransactionOutput{}, err
	}

	s.contract = out.Contract
	s.state = out.State
	for _, w := range out.Warnings {
		s.logger.InfoContext(ctx, "transaction warning", "kind", w.Kind(), "warning", fmt.Sprint(w))
	}
	s.logger.InfoContext(ctx, "transaction applied",
		"inputs", len(inputs),
		"payments", len(out.Payments),
		"warnings", len(out.Warnings))
	span.SetAttributes(
		attribute.Int("accord.payments", len(out.Payments)),
		attribute.Int("accord.warnings", len(out.Warnings)),
	)
	return out, nil
}

// Advise enumerates the actions currently applicable for the interval,
// without advancing the session.
func (s *Session) Advise(ctx context.Context, interval semantics.TimeInterval) (advisor.Advice, error) {
	_, span := s.tracer.Start(ctx, "session.advise")
	defer span.End()

	env, fixed, err := semantics.FixInterval(interval, s.state)
	if err != nil {
		span.RecordError(err)
		return advisor.Advice{}, err
	}
	return advisor.Available(env, fixed, s.contract, s.semanticsOptions()...)
}
