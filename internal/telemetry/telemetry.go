package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

var tracerName = "github.com/unkn0wn-root/tinyscript/internal/telemetry"

const (
	PhaseParse = "script.parse"
	PhaseRun   = "script.run"
)

type Instrumenter interface {
	Start(ctx context.Context, info ExecStart) (context.Context, ExecSpan)
	Shutdown(ctx context.Context) error
}

type ExecStart struct {
	Path    string
	Mode    string
	Session string
	Bytes   int
}

type ExecResult struct {
	Err        error
	Statements int
	Steps      int
	Exited     bool
	ExitCode   int
}

// ExecSpan covers one Exec call. Phase opens a child span and returns the
// function that ends it.
type ExecSpan interface {
	Phase(name string) func(err error)
	End(result ExecResult)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, err
		}
	}

	var tpOpts []sdktrace.TracerProviderOption
	tpOpts = append(tpOpts, sdktrace.WithResource(res))
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) Start(ctx context.Context, info ExecStart) (context.Context, ExecSpan) {
	ctx, span := m.tracer.Start(
		ctx,
		spanNameFor(info),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(buildSpanAttributes(info)...),
	)
	return ctx, &execSpan{ctx: ctx, tracer: m.tracer, span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type execSpan struct {
	ctx    context.Context
	tracer trace.Tracer
	span   trace.Span
}

func (es *execSpan) Phase(name string) func(error) {
	if es == nil || es.tracer == nil {
		return func(error) {}
	}
	_, child := es.tracer.Start(es.ctx, name)
	started := time.Now()
	return func(err error) {
		child.SetAttributes(
			attribute.Int64("tinyscript.phase.duration_us", time.Since(started).Microseconds()),
		)
		if err != nil {
			child.RecordError(err)
			child.SetStatus(codes.Error, err.Error())
		}
		child.End()
	}
}

func (es *execSpan) End(result ExecResult) {
	if es == nil || es.span == nil {
		return
	}

	es.span.SetAttributes(
		attribute.Int("tinyscript.statements", result.Statements),
		attribute.Int("tinyscript.steps", result.Steps),
	)
	if result.Exited {
		es.span.SetAttributes(attribute.Int("tinyscript.exit_code", result.ExitCode))
	}

	if result.Err != nil {
		es.span.RecordError(result.Err)
		es.span.SetStatus(codes.Error, result.Err.Error())
	} else {
		es.span.SetStatus(codes.Ok, "OK")
	}
	es.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) Start(ctx context.Context, _ ExecStart) (context.Context, ExecSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) Phase(string) func(error) { return func(error) {} }

func (noopSpan) End(ExecResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(userAgent(cfg))),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func userAgent(cfg Config) string {
	if v := strings.TrimSpace(cfg.Version); v != "" {
		return "tinyscript/" + v
	}
	return "tinyscript"
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
	}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func buildSpanAttributes(info ExecStart) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int("tinyscript.source.bytes", info.Bytes),
	}
	if info.Path != "" {
		attrs = append(attrs, semconv.CodeFilepath(info.Path))
	}
	if info.Mode != "" {
		attrs = append(attrs, attribute.String("tinyscript.mode", info.Mode))
	}
	if info.Session != "" {
		attrs = append(attrs, attribute.String("tinyscript.session", info.Session))
	}
	return attrs
}

func spanNameFor(info ExecStart) string {
	if info.Mode != "" {
		return "script.exec " + info.Mode
	}
	return "script.exec"
}
