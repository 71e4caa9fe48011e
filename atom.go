package atom

import (
	"context"

	"github.com/viant/afs"
	"github.com/viant/x"

	"github.com/atomhq/atom/extension"
	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/model/types"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/action/connector"
	"github.com/atomhq/atom/service/action/detect"
	aexec "github.com/atomhq/atom/service/action/exec"
	"github.com/atomhq/atom/service/action/logger"
	"github.com/atomhq/atom/service/action/nop"
	areport "github.com/atomhq/atom/service/action/report"
	asecret "github.com/atomhq/atom/service/action/secret"
	astorage "github.com/atomhq/atom/service/action/storage"
	"github.com/atomhq/atom/service/action/transform"
	amemory "github.com/atomhq/atom/service/approval/memory"
	"github.com/atomhq/atom/service/cache"
	"github.com/atomhq/atom/service/catalog"
	dmemory "github.com/atomhq/atom/service/dao/invocation/memory"
	"github.com/atomhq/atom/service/executor"
	"github.com/atomhq/atom/service/messaging"
	mmemory "github.com/atomhq/atom/service/messaging/memory"
	"github.com/atomhq/atom/service/processor"
	"github.com/atomhq/atom/service/report"
	"github.com/atomhq/atom/service/scheduler"
)

// Service is the high level facade wiring detection, catalogs, governance and
// the invocation engine together.
type Service struct {
	runtime           *Runtime
	config            *Config
	actions           *extension.Actions
	extensionTypes    []*x.Type
	extensionServices []types.Service
	executorOptions   []executor.Option
	catalogService    *catalog.Service
	detector          *intelligence.Detector
	responses         *cache.Cache
	queue             messaging.Queue[invocation.Invocation]
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.actions = extension.NewActions(s.extensionTypes...)

	if s.runtime.approval == nil {
		s.runtime.approval = amemory.New(s.runtime.invocationDAO, amemory.WithInvocationQueue(s.queue))
	}
	executorOptions := append([]executor.Option{executor.WithApproval(s.runtime.approval)}, s.executorOptions...)
	s.runtime.executor = executor.NewService(s.actions, executorOptions...)
	s.runtime.processor, _ = processor.New(
		processor.WithExecutor(s.runtime.executor),
		processor.WithMessageQueue(s.queue),
		processor.WithInvocationDAO(s.runtime.invocationDAO),
		processor.WithConfig(processor.Config{
			WorkerCount: s.config.Processor.WorkerCount,
			MaxRetries:  s.config.Processor.MaxRetries,
			RetryDelay:  s.config.Processor.RetryDelay,
		}),
		processor.WithRetryResolver(s.connectorRetry))
	s.runtime.scheduler = scheduler.New(s.runtime.invocationDAO, s.queue,
		scheduler.Config{PollingInterval: s.config.Scheduler.PollingInterval})
	s.runtime.queue = s.queue
	s.runtime.detector = s.detector

	s.actions.Register(nop.New())
	s.actions.Register(logger.New())
	s.actions.Register(transform.New())
	s.actions.Register(detect.New(s.detector))
	s.actions.Register(asecret.New())
	s.actions.Register(astorage.New())
	s.actions.Register(aexec.New())
	s.actions.Register(connector.New(s.catalogService, connector.WithResponseCache(s.responses)))
	s.actions.Register(areport.New(s.runtime.reports))
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if s.config.Processor.WorkerCount <= 0 {
		s.config.Processor.WorkerCount = defaults.Processor.WorkerCount
	}
	if s.config.Processor.RetryDelay <= 0 {
		s.config.Processor.RetryDelay = defaults.Processor.RetryDelay
	}
	if s.config.Scheduler.PollingInterval <= 0 {
		s.config.Scheduler.PollingInterval = defaults.Scheduler.PollingInterval
	}
	if s.config.Cache.TTL <= 0 {
		s.config.Cache.TTL = defaults.Cache.TTL
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[invocation.Invocation](mmemory.DefaultConfig())
	}
	if s.runtime.invocationDAO == nil {
		s.runtime.invocationDAO = dmemory.New()
	}
	if s.catalogService == nil {
		s.catalogService = catalog.New(afs.New(), s.config.CatalogBaseURL)
	}
	if s.runtime.reports == nil {
		baseURL := s.config.ReportBaseURL
		if baseURL == "" {
			baseURL = "mem://localhost/atom"
		}
		s.runtime.reports = report.New(afs.New(), baseURL)
	}
	if s.detector == nil {
		s.detector = intelligence.NewDetector()
	}
	if s.responses == nil {
		s.responses = cache.New(s.config.Cache.TTL, s.config.Cache.SweepInterval)
	}
}

// Runtime returns the invocation runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Catalog returns the catalog service.
func (s *Service) Catalog() *catalog.Service {
	return s.catalogService
}

// Detector returns the shared service detector.
func (s *Service) Detector() *intelligence.Detector {
	return s.detector
}

// Actions returns the action registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// RegisterExtensionTypes registers additional data types.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices registers additional action services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// UseCatalog loads the named catalog and applies its detection vocabulary and,
// when no explicit policy was configured, its governance defaults.
func (s *Service) UseCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	aCatalog, err := s.catalogService.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(aCatalog.Mappings) > 0 {
		s.detector.Reload(aCatalog.Mappings)
	}
	if aCatalog.Policy != nil && s.runtime.policy == nil {
		s.runtime.policy = policy.FromConfig(aCatalog.Policy)
	}
	return aCatalog, nil
}

// connectorRetry resolves the retry policy of connector invocations from the
// catalog profile they target.
func (s *Service) connectorRetry(anInvocation *invocation.Invocation) *processor.Retry {
	if anInvocation == nil || anInvocation.Service != "connector" {
		return nil
	}
	var catalogName, profileName string
	switch input := anInvocation.Input.(type) {
	case *connector.CallInput:
		catalogName, profileName = input.Catalog, input.Service
	case map[string]interface{}:
		catalogName, _ = input["catalog"].(string)
		profileName, _ = input["service"].(string)
	}
	if profileName == "" {
		return nil
	}
	if catalogName == "" {
		catalogName = "default"
	}
	aCatalog, err := s.catalogService.Load(context.Background(), catalogName)
	if err != nil {
		return nil
	}
	profile := aCatalog.Profile(profileName)
	if profile == nil || profile.Retry == nil {
		return nil
	}
	return &processor.Retry{
		Type:       "fixed",
		MaxRetries: profile.Retry.MaxRetries,
		Delay:      profile.Retry.Delay.String(),
	}
}

// New creates the platform service.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
