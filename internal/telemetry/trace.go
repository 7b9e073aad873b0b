package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

const tracerName = "github.com/felixgeelhaar/sessionkit"

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "login")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartOperationSpan creates a client span for a session transport call.
func StartOperationSpan(ctx context.Context, tp trace.TracerProvider, kind session.OperationKind) (context.Context, trace.Span) {
	ctx, span := tp.Tracer(tracerName).Start(ctx, "session."+kind.String(),
		trace.WithSpanKind(trace.SpanKindClient))

	span.SetAttributes(
		attribute.String("session.operation", kind.String()),
		attribute.String("component", "transport"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status. Session
// errors also carry their kind.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
	if kind := session.KindOf(err); kind != "" {
		span.SetAttributes(attribute.String("session.error_kind", string(kind)))
	}
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(
		attribute.Int64(name+"_ms", duration.Milliseconds()),
	)
}

// TracingTransport wraps a session.Transport with one span per call.
type TracingTransport struct {
	next session.Transport
	tp   trace.TracerProvider
}

var _ session.Transport = (*TracingTransport)(nil)

// NewTracingTransport wraps next. A nil tp uses the provider installed by
// InitProvider.
func NewTracingTransport(next session.Transport, tp trace.TracerProvider) *TracingTransport {
	if tp == nil {
		tp = GetTracerProvider()
	}
	return &TracingTransport{next: next, tp: tp}
}

// Login implements session.Transport.
func (t *TracingTransport) Login(ctx context.Context, creds session.Credentials) (session.State, error) {
	return t.traceState(ctx, session.OperationLogin, func(ctx context.Context) (session.State, error) {
		return t.next.Login(ctx, creds)
	})
}

// Register implements session.Transport.
func (t *TracingTransport) Register(ctx context.Context, profile session.Profile) (session.State, error) {
	return t.traceState(ctx, session.OperationRegister, func(ctx context.Context) (session.State, error) {
		return t.next.Register(ctx, profile)
	})
}

// Logout implements session.Transport.
func (t *TracingTransport) Logout(ctx context.Context) error {
	_, err := t.traceState(ctx, session.OperationLogout, func(ctx context.Context) (session.State, error) {
		return session.State{}, t.next.Logout(ctx)
	})
	return err
}

// FetchCurrentSession implements session.Transport.
func (t *TracingTransport) FetchCurrentSession(ctx context.Context) (session.State, error) {
	return t.traceState(ctx, session.OperationRestore, t.next.FetchCurrentSession)
}

func (t *TracingTransport) traceState(ctx context.Context, kind session.OperationKind, call func(context.Context) (session.State, error)) (session.State, error) {
	ctx, span := StartOperationSpan(ctx, t.tp, kind)
	defer span.End()

	state, err := call(ctx)
	if err != nil {
		RecordError(span, err)
		return state, err
	}

	RecordSuccess(span,
		attribute.Bool("session.authenticated", state.Authenticated()),
		attribute.String("session.onboarding", state.Onboarding().String()),
	)
	return state, nil
}
