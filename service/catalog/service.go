package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/atomhq/atom/internal/yml"
	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/catalog/parameters"
)

// Service loads YAML catalogs from an afs location and caches parsed results
// until Refresh is called.
type Service struct {
	fs      afs.Service
	baseURL string
	mux     sync.RWMutex
	cache   map[string]*Catalog
}

// New creates a catalog service rooted at baseURL.
func New(fs afs.Service, baseURL string) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{
		fs:      fs,
		baseURL: baseURL,
		cache:   make(map[string]*Catalog),
	}
}

// Refresh drops all cached catalogs so the next Load re-reads the source.
func (s *Service) Refresh() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cache = make(map[string]*Catalog)
}

// Load returns the named catalog, reading and parsing it on first use.
func (s *Service) Load(ctx context.Context, name string) (*Catalog, error) {
	s.mux.RLock()
	cached, ok := s.cache[name]
	s.mux.RUnlock()
	if ok {
		return cached, nil
	}

	URL := name
	if !strings.Contains(URL, "://") && s.baseURL != "" {
		URL = strings.TrimRight(s.baseURL, "/") + "/" + name
	}
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", URL, err)
	}
	catalog, err := s.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog from %s: %w", URL, err)
	}
	if catalog.Name == "" {
		base := filepath.Base(URL)
		catalog.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	s.mux.Lock()
	s.cache[name] = catalog
	s.mux.Unlock()
	return catalog, nil
}

// DecodeYAML parses a catalog document.  Mapping entries keep their authored
// order and every scalar goes through ${env.KEY} expansion.
func (s *Service) DecodeYAML(encoded []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(encoded, &doc); err != nil {
		return nil, err
	}
	root := yml.Root(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog document should be a mapping")
	}

	catalog := &Catalog{Profiles: map[string]*Profile{}}
	err := root.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			catalog.Name = valueNode.Value
		case "mappings":
			return valueNode.Items(func(_ int, itemNode *yml.Node) error {
				mapping, err := parseMapping(itemNode)
				if err != nil {
					return err
				}
				catalog.Mappings = append(catalog.Mappings, mapping)
				return nil
			})
		case "profiles":
			return valueNode.Pairs(func(profileName string, profileNode *yml.Node) error {
				profile, err := parseProfile(profileName, profileNode)
				if err != nil {
					return err
				}
				catalog.Profiles[profileName] = profile
				return nil
			})
		case "policy":
			config := &policy.Config{}
			if err := (*yaml.Node)(valueNode).Decode(config); err != nil {
				return fmt.Errorf("failed to parse policy: %w", err)
			}
			catalog.Policy = config
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func parseMapping(node *yml.Node) (*intelligence.Mapping, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("mapping entry should be a mapping")
	}
	mapping := &intelligence.Mapping{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "service":
			mapping.Service = valueNode.Value
		case "keywords":
			mapping.Keywords = valueNode.Strings()
		case "phrases":
			mapping.Phrases = valueNode.Strings()
		case "priority":
			priority, ok := valueNode.Interface().(float64)
			if !ok {
				if i, isInt := valueNode.Interface().(int); isInt {
					priority = float64(i)
				} else {
					return fmt.Errorf("priority should be a number")
				}
			}
			mapping.Priority = priority
		case "methodhints":
			mapping.MethodHints = map[string]string{}
			return valueNode.Pairs(func(intent string, hintNode *yml.Node) error {
				mapping.MethodHints[intent] = hintNode.Value
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if mapping.Service == "" {
		return nil, fmt.Errorf("mapping entry requires a service name")
	}
	return mapping, nil
}

func parseProfile(name string, node *yml.Node) (*Profile, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("profile %s should be a mapping", name)
	}
	profile := &Profile{Name: name, Operations: map[string]*Operation{}}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "baseurl":
			profile.BaseURL = expandEnvExpr(valueNode.Value)
		case "authsecreturl":
			profile.AuthSecretURL = expandEnvExpr(valueNode.Value)
		case "authkind":
			profile.AuthKind = valueNode.Value
		case "cachettl":
			ttl, err := time.ParseDuration(valueNode.Value)
			if err != nil {
				return fmt.Errorf("invalid cacheTTL on profile %s: %w", name, err)
			}
			profile.CacheTTL = ttl
		case "retry":
			retry, err := parseRetry(valueNode)
			if err != nil {
				return fmt.Errorf("invalid retry on profile %s: %w", name, err)
			}
			profile.Retry = retry
		case "operations":
			return valueNode.Pairs(func(operationName string, operationNode *yml.Node) error {
				operation, err := parseOperation(operationName, operationNode)
				if err != nil {
					return err
				}
				profile.Operations[operationName] = operation
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func parseRetry(node *yml.Node) (*Retry, error) {
	retry := &Retry{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "maxretries":
			count, ok := valueNode.Interface().(int)
			if !ok {
				return fmt.Errorf("maxRetries should be an integer")
			}
			retry.MaxRetries = count
		case "delay":
			delay, err := time.ParseDuration(valueNode.Value)
			if err != nil {
				return err
			}
			retry.Delay = delay
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return retry, nil
}

func parseOperation(name string, node *yml.Node) (*Operation, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("operation %s should be a mapping", name)
	}
	operation := &Operation{Name: name}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "method":
			operation.Method = strings.ToUpper(valueNode.Value)
		case "path":
			operation.Path = expandEnvExpr(valueNode.Value)
		case "parameters":
			return valueNode.Items(func(_ int, itemNode *yml.Node) error {
				parameter, err := parameters.Parse([]byte(itemNode.Value))
				if err != nil {
					return fmt.Errorf("invalid parameter %q on operation %s: %w", itemNode.Value, name, err)
				}
				operation.Parameters = append(operation.Parameters, parameter)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return operation, nil
}
