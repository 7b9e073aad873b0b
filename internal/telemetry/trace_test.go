package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// setupTestTracer creates a test tracer recording spans in memory
func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(recorder),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	return tp, recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

type fakeTransport struct {
	state session.State
	err   error
	ctxs  []context.Context
}

func (f *fakeTransport) Login(ctx context.Context, _ session.Credentials) (session.State, error) {
	f.ctxs = append(f.ctxs, ctx)
	return f.state, f.err
}

func (f *fakeTransport) Register(ctx context.Context, _ session.Profile) (session.State, error) {
	f.ctxs = append(f.ctxs, ctx)
	return f.state, f.err
}

func (f *fakeTransport) Logout(ctx context.Context) error {
	f.ctxs = append(f.ctxs, ctx)
	return f.err
}

func (f *fakeTransport) FetchCurrentSession(ctx context.Context) (session.State, error) {
	f.ctxs = append(f.ctxs, ctx)
	return f.state, f.err
}

func TestStartCommandSpan(t *testing.T) {
	tp, recorder := setupTestTracer(t)

	providerMu.Lock()
	globalProvider = tp
	providerMu.Unlock()
	t.Cleanup(func() {
		providerMu.Lock()
		globalProvider = nil
		providerMu.Unlock()
	})

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "login")
	if spanCtx == ctx {
		t.Error("expected new context with span, got same context")
	}
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "command.login" {
		t.Errorf("span name = %q, want %q", spans[0].Name(), "command.login")
	}
	if v, ok := attrValue(spans[0].Attributes(), "component"); !ok || v.AsString() != "cli" {
		t.Errorf("component = %v, want cli", v.AsString())
	}
}

func TestTracingTransportSuccess(t *testing.T) {
	tp, recorder := setupTestTracer(t)

	state := session.Authenticated(session.Identity{ID: "u1"},
		session.WithOnboarding(session.OnboardingPending))
	inner := &fakeTransport{state: state}
	transport := NewTracingTransport(inner, tp)

	ctx := context.Background()
	got, err := transport.Register(ctx, session.Profile{DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !got.Equal(state) {
		t.Errorf("Register() state = %v, want %v", got, state)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name() != "session.register" {
		t.Errorf("span name = %q, want %q", span.Name(), "session.register")
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", span.SpanKind())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
	if v, ok := attrValue(span.Attributes(), "session.authenticated"); !ok || !v.AsBool() {
		t.Error("expected session.authenticated=true")
	}
	if v, ok := attrValue(span.Attributes(), "session.onboarding"); !ok || v.AsString() != "pending" {
		t.Errorf("session.onboarding = %q, want pending", v.AsString())
	}

	// the wrapped transport sees the span context
	if !trace.SpanContextFromContext(inner.ctxs[0]).Equal(span.SpanContext()) {
		t.Error("inner transport did not receive the span context")
	}
}

func TestTracingTransportErrors(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*TracingTransport) error
		err      error
		wantSpan string
		wantKind string
	}{
		{
			name: "login invalid credentials",
			call: func(tr *TracingTransport) error {
				_, err := tr.Login(context.Background(), session.Credentials{Email: "a@x.com"})
				return err
			},
			err:      session.NewError(session.KindInvalidCredentials, "wrong password", nil),
			wantSpan: "session.login",
			wantKind: "invalid_credentials",
		},
		{
			name: "logout unreachable",
			call: func(tr *TracingTransport) error {
				return tr.Logout(context.Background())
			},
			err:      session.ErrTransportUnavailable,
			wantSpan: "session.logout",
			wantKind: "transport_unavailable",
		},
		{
			name: "restore plain error",
			call: func(tr *TracingTransport) error {
				_, err := tr.FetchCurrentSession(context.Background())
				return err
			},
			err:      errors.New("boom"),
			wantSpan: "session.restore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, recorder := setupTestTracer(t)
			transport := NewTracingTransport(&fakeTransport{err: tt.err}, tp)

			if err := tt.call(transport); !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			span := spans[0]

			if span.Name() != tt.wantSpan {
				t.Errorf("span name = %q, want %q", span.Name(), tt.wantSpan)
			}
			if span.Status().Code != codes.Error {
				t.Errorf("status = %v, want Error", span.Status().Code)
			}
			if len(span.Events()) == 0 {
				t.Error("expected recorded error event")
			}

			v, ok := attrValue(span.Attributes(), "session.error_kind")
			if tt.wantKind == "" {
				if ok {
					t.Errorf("unexpected session.error_kind %q", v.AsString())
				}
				return
			}
			if !ok || v.AsString() != tt.wantKind {
				t.Errorf("session.error_kind = %q, want %q", v.AsString(), tt.wantKind)
			}
		})
	}
}

func TestRecordHelpers(t *testing.T) {
	tp, recorder := setupTestTracer(t)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, nil)
	RecordDuration(span, "transport", 1500*time.Millisecond)
	span.End()

	spans := recorder.Ended()
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("nil error changed status to %v", spans[0].Status().Code)
	}
	if v, ok := attrValue(spans[0].Attributes(), "transport_ms"); !ok || v.AsInt64() != 1500 {
		t.Errorf("transport_ms = %d, want 1500", v.AsInt64())
	}
}
