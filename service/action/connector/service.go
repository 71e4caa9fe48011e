package connector

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/viant/scy"

	"github.com/atomhq/atom/model/types"
	"github.com/atomhq/atom/service/cache"
	"github.com/atomhq/atom/service/catalog"
)

const name = "connector"

const defaultCatalog = "default"

// Service executes vendor API calls described by catalog profiles.  It knows
// nothing about any vendor schema: the profile supplies the base URL, auth
// secret and operation shapes, and the caller supplies arguments.
type Service struct {
	catalog   *catalog.Service
	secrets   *scy.Service
	client    *http.Client
	responses *cache.Cache
}

// CallInput selects a catalog operation and its arguments.
type CallInput struct {
	Catalog string                 `json:"catalog,omitempty" description:"Catalog name (default: 'default')"`
	Service string                 `json:"service" required:"true" description:"Connector profile name, e.g. 'zendesk'"`
	Method  string                 `json:"method" required:"true" description:"Operation name within the profile"`
	Args    map[string]interface{} `json:"args,omitempty" description:"Operation arguments"`
}

// CallOutput carries the HTTP response.
type CallOutput struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Cached     bool        `json:"cached,omitempty"`
}

// New creates a connector service backed by the supplied catalog.
func New(catalogService *catalog.Service, opts ...Option) *Service {
	s := &Service{
		catalog: catalogService,
		secrets: scy.New(),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.responses == nil {
		s.responses = cache.New(time.Minute, 0)
	}
	return s
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "call",
			Description: "Calls a catalog operation against a vendor API.",
			Input:       reflect.TypeOf(&CallInput{}),
			Output:      reflect.TypeOf(&CallOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "call":
		return s.call, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) call(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CallInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*CallOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Call(ctx, input, output)
}
