// Package tracing records simulation runs as OpenTelemetry spans.
//
// Each run becomes one span. Scaling actions and blocked requests are added
// as span events by subscribing to the simulation event bus, and the header
// and summary are attached as span attributes. Spans are exported as JSON to
// a file through the stdouttrace exporter.
package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Iron-Ham/lbsim/internal/event"
	"github.com/Iron-Ham/lbsim/internal/logging"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

// DefaultServiceName is the service.name resource attribute when Config
// leaves it empty.
const DefaultServiceName = "lbsim"

const instrumentationName = "github.com/Iron-Ham/lbsim/internal/tracing"

// Config governs how tracing is initialised.
type Config struct {
	// File receives the exported spans. Empty disables tracing.
	File        string
	ServiceName string
}

// Enabled reports whether spans will be exported.
func (c Config) Enabled() bool {
	return c.File != ""
}

// Provider owns a tracer provider and whatever must be flushed and closed
// when the program exits.
type Provider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// Disabled returns a Provider whose spans are discarded.
func Disabled() *Provider {
	return &Provider{
		provider: noop.NewTracerProvider(),
		shutdown: func(context.Context) error { return nil },
	}
}

// FromSDK wraps an already configured SDK tracer provider.
func FromSDK(tp *sdktrace.TracerProvider) *Provider {
	return &Provider{provider: tp, shutdown: tp.Shutdown}
}

// New builds a Provider from cfg. A disabled cfg yields a noop provider;
// otherwise spans are written as JSON to cfg.File on fs.
func New(ctx context.Context, fs afero.Fs, cfg Config, logger *logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("tracing")

	if !cfg.Enabled() {
		logger.Debug("tracing disabled; using noop tracer provider")
		return Disabled(), nil
	}

	f, err := fs.Create(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	service := cfg.ServiceName
	if service == "" {
		service = DefaultServiceName
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", service)),
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	logger.Info("tracing enabled", "file", cfg.File, "service_name", service)

	return &Provider{
		provider: tp,
		shutdown: closeAfter(tp.Shutdown, f),
	}, nil
}

// TracerProvider returns the underlying provider, for registration as the
// global provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.provider
}

// Tracer returns the tracer used for run spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.provider.Tracer(instrumentationName)
}

// Shutdown flushes pending spans and releases the export file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// ShutdownWithTimeout calls Shutdown with a bounded timeout and logs rather
// than returns any failure.
func (p *Provider) ShutdownWithTimeout(ctx context.Context, logger *logging.Logger) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
}

func closeAfter(shutdown func(context.Context) error, c io.Closer) func(context.Context) error {
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close trace file: %w", cerr)
		}
		return err
	}
}

// RunSpan is the span covering one simulation run.
type RunSpan struct {
	span trace.Span
	bus  *event.Bus
	subs []string
}

// StartRun starts the run span and subscribes it to bus. The returned
// context carries the span.
func StartRun(ctx context.Context, tracer trace.Tracer, bus *event.Bus, runID string) (context.Context, *RunSpan) {
	ctx, span := tracer.Start(ctx, "lbsim.run",
		trace.WithAttributes(attribute.String("lbsim.run_id", runID)),
	)
	r := &RunSpan{span: span, bus: bus}
	if bus != nil {
		r.subs = []string{
			bus.Subscribe(event.TypeHeader, r.handle),
			bus.Subscribe(event.TypePoolScaled, r.handle),
			bus.Subscribe(event.TypeRequestBlocked, r.handle),
			bus.Subscribe(event.TypeSummary, r.handle),
		}
	}
	return ctx, r
}

// Span returns the underlying span.
func (r *RunSpan) Span() trace.Span {
	return r.span
}

func (r *RunSpan) handle(e event.Event) {
	switch ev := e.(type) {
	case event.HeaderEvent:
		r.span.SetAttributes(
			attribute.Int("lbsim.initial_workers", ev.Header.InitialWorkers),
			attribute.Int("lbsim.total_cycles", ev.Header.TotalCycles),
			attribute.Int("lbsim.initial_queue", ev.Header.InitialQueue),
			attribute.Int("lbsim.blocked_ranges", len(ev.Header.Blocked)),
		)
	case event.PoolScaledEvent:
		name, ok := scaleEventName(ev.Action)
		if !ok {
			return
		}
		r.span.AddEvent(name, trace.WithAttributes(
			attribute.Int("lbsim.cycle", ev.Cycle()),
			attribute.String("lbsim.reason", ev.Reason),
		))
	case event.RequestBlockedEvent:
		r.span.AddEvent("request.blocked", trace.WithAttributes(
			attribute.Int("lbsim.cycle", ev.Cycle()),
			attribute.String("lbsim.source", ev.Request.Source),
		))
	case event.SummaryEvent:
		r.span.SetAttributes(summaryAttributes(ev.Summary)...)
	}
}

// End unsubscribes from the bus, records err when non-nil and ends the span.
func (r *RunSpan) End(err error) {
	if r.bus != nil {
		for _, id := range r.subs {
			r.bus.Unsubscribe(id)
		}
		r.subs = nil
	}
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	} else {
		r.span.SetStatus(codes.Ok, "")
	}
	r.span.End()
}

func summaryAttributes(s sim.Summary) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("lbsim.cycles", s.Cycles),
		attribute.Int("lbsim.final_workers", s.FinalWorkers),
		attribute.Int("lbsim.final_queue", s.FinalQueue),
		attribute.Bool("lbsim.cancelled", s.Cancelled),
	}
}

// scaleEventName maps a scaling action to its span event name.
func scaleEventName(a scaling.Action) (string, bool) {
	switch a {
	case scaling.ActionScaleUp:
		return "scale.up", true
	case scaling.ActionScaleDown:
		return "scale.down", true
	default:
		return "", false
	}
}
