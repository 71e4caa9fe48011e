package connector

import (
	"net/http"

	"github.com/viant/scy"

	"github.com/atomhq/atom/service/cache"
)

// Option customizes the connector service
type Option func(*Service)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithSecrets overrides the secret service used for profile auth
func WithSecrets(secrets *scy.Service) Option {
	return func(s *Service) {
		s.secrets = secrets
	}
}

// WithResponseCache overrides the GET response cache
func WithResponseCache(responses *cache.Cache) Option {
	return func(s *Service) {
		s.responses = responses
	}
}
