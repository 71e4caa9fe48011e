package atom

import (
	"github.com/viant/x"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/model/types"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/approval"
	"github.com/atomhq/atom/service/cache"
	"github.com/atomhq/atom/service/catalog"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/event"
	"github.com/atomhq/atom/service/executor"
	"github.com/atomhq/atom/service/messaging"
	"github.com/atomhq/atom/service/report"
	"github.com/atomhq/atom/tracing"
)

// Option customises the platform service.
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithApprovalService sets the approval service
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.runtime.approval = svc }
}

// WithEventService sets the event service attached to every invocation
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.runtime.eventService = service }
}

// WithPolicy sets the governance policy applied to every invocation
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.runtime.policy = p }
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) { s.extensionTypes = types }
}

// WithExtensionServices sets the extension services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) { s.extensionServices = services }
}

// WithQueue sets the invocation queue
func WithQueue(queue messaging.Queue[invocation.Invocation]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithInvocationDAO sets the invocation store
func WithInvocationDAO(dao dao.Service[string, invocation.Invocation]) Option {
	return func(s *Service) { s.runtime.invocationDAO = dao }
}

// WithCatalogService sets the catalog service
func WithCatalogService(service *catalog.Service) Option {
	return func(s *Service) { s.catalogService = service }
}

// WithReportService sets the report service
func WithReportService(service *report.Service) Option {
	return func(s *Service) { s.runtime.reports = service }
}

// WithDetector sets the service detector
func WithDetector(detector *intelligence.Detector) Option {
	return func(s *Service) { s.detector = detector }
}

// WithResponseCache sets the connector response cache
func WithResponseCache(responses *cache.Cache) Option {
	return func(s *Service) { s.responses = responses }
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. attaching a listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times, the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
