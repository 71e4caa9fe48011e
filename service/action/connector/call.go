package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"

	"github.com/atomhq/atom/service/catalog"
)

// Call resolves the catalog operation, builds the HTTP request and executes
// it with the profile's auth, cache and retry settings.
func (s *Service) Call(ctx context.Context, input *CallInput, output *CallOutput) error {
	catalogName := input.Catalog
	if catalogName == "" {
		catalogName = defaultCatalog
	}
	if input.Service == "" {
		return fmt.Errorf("service was empty")
	}
	if input.Method == "" {
		return fmt.Errorf("method was empty")
	}
	aCatalog, err := s.catalog.Load(ctx, catalogName)
	if err != nil {
		return err
	}
	profile := aCatalog.Profile(input.Service)
	if profile == nil {
		return fmt.Errorf("unknown service %q in catalog %s", input.Service, catalogName)
	}
	operation := profile.Operation(input.Method)
	if operation == nil {
		return fmt.Errorf("unknown operation %q on service %q", input.Method, input.Service)
	}

	request, err := s.buildRequest(ctx, profile, operation, input.Args)
	if err != nil {
		return err
	}

	cacheKey := ""
	if request.Method == http.MethodGet && profile.CacheTTL > 0 {
		cacheKey = request.URL.String()
		if cached, ok := s.responses.Get(cacheKey); ok {
			if previous, ok := cached.(*CallOutput); ok {
				output.StatusCode = previous.StatusCode
				output.Data = previous.Data
				output.Cached = true
				return nil
			}
		}
	}

	response, err := s.doWithRetry(ctx, request, profile.Retry)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	output.StatusCode = response.StatusCode
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", request.URL, err)
	}
	output.Data = decodeBody(response.Header.Get("Content-Type"), data)
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s returned status %d", request.Method, request.URL, response.StatusCode)
	}
	if cacheKey != "" {
		s.responses.SetWithTTL(cacheKey, &CallOutput{StatusCode: output.StatusCode, Data: output.Data}, profile.CacheTTL)
	}
	return nil
}

func (s *Service) buildRequest(ctx context.Context, profile *catalog.Profile, operation *catalog.Operation, args map[string]interface{}) (*http.Request, error) {
	method := operation.Method
	if method == "" {
		method = http.MethodGet
	}
	used := map[string]bool{}

	path, err := expandPath(operation.Path, args, used)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", operation.Name, err)
	}
	URL := strings.TrimRight(profile.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	query := url.Values{}
	header := http.Header{}
	body := map[string]interface{}{}
	for _, parameter := range operation.Parameters {
		value, ok := args[parameter.Name]
		if !ok {
			if parameter.Default != nil {
				value = parameter.Default
			} else if parameter.Required {
				return nil, fmt.Errorf("operation %s: required parameter %q was missing", operation.Name, parameter.Name)
			} else {
				continue
			}
		}
		used[parameter.Name] = true
		wireName := parameter.Name
		kind := ""
		if parameter.Location != nil {
			kind = parameter.Location.Kind
			if parameter.Location.In != "" {
				wireName = parameter.Location.In
			}
		}
		switch kind {
		case "query":
			query.Set(wireName, fmt.Sprintf("%v", value))
		case "header":
			header.Set(wireName, fmt.Sprintf("%v", value))
		case "path":
			// already consumed by expandPath
		default:
			if method == http.MethodGet {
				query.Set(wireName, fmt.Sprintf("%v", value))
			} else {
				body[wireName] = value
			}
		}
	}
	// undeclared arguments ride along: query for GET, body otherwise
	for name, value := range args {
		if used[name] {
			continue
		}
		if method == http.MethodGet {
			query.Set(name, fmt.Sprintf("%v", value))
		} else {
			body[name] = value
		}
	}

	var reader io.Reader
	if method != http.MethodGet && len(body) > 0 {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("operation %s: failed to marshal body: %w", operation.Name, err)
		}
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, URL, reader)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if len(query) > 0 {
		request.URL.RawQuery = query.Encode()
	}
	if err = s.authorize(ctx, request, profile); err != nil {
		return nil, err
	}
	return request, nil
}

// expandPath replaces {name} segments with argument values.
func expandPath(path string, args map[string]interface{}, used map[string]bool) (string, error) {
	result := path
	for {
		start := strings.Index(result, "{")
		if start == -1 {
			return result, nil
		}
		end := strings.Index(result[start:], "}")
		if end == -1 {
			return "", fmt.Errorf("unterminated path template in %q", path)
		}
		name := result[start+1 : start+end]
		value, ok := args[name]
		if !ok {
			return "", fmt.Errorf("path parameter %q was missing", name)
		}
		used[name] = true
		result = result[:start] + url.PathEscape(fmt.Sprintf("%v", value)) + result[start+end+1:]
	}
}

func (s *Service) authorize(ctx context.Context, request *http.Request, profile *catalog.Profile) error {
	kind := strings.ToLower(profile.AuthKind)
	if profile.AuthSecretURL == "" || kind == "none" {
		return nil
	}
	switch kind {
	case "", "bearer":
		resource := scy.NewResource(nil, profile.AuthSecretURL, "")
		secret, err := s.secrets.Load(ctx, resource)
		if err != nil {
			return fmt.Errorf("failed to load auth secret for %s: %w", profile.Name, err)
		}
		request.Header.Set("Authorization", "Bearer "+strings.TrimSpace(secret.String()))
	case "basic":
		targetType, err := cred.TargetType("basic")
		if err != nil {
			return err
		}
		resource := scy.NewResource(targetType, profile.AuthSecretURL, "")
		secret, err := s.secrets.Load(ctx, resource)
		if err != nil {
			return fmt.Errorf("failed to load auth secret for %s: %w", profile.Name, err)
		}
		basic, ok := secret.Target.(*cred.Basic)
		if !ok {
			return fmt.Errorf("auth secret for %s was not basic credentials", profile.Name)
		}
		request.SetBasicAuth(basic.Username, basic.Password)
	default:
		return fmt.Errorf("unsupported auth kind %q on profile %s", profile.AuthKind, profile.Name)
	}
	return nil
}

func (s *Service) doWithRetry(ctx context.Context, request *http.Request, retry *catalog.Retry) (*http.Response, error) {
	attempts := 1
	delay := time.Duration(0)
	if retry != nil {
		attempts += retry.MaxRetries
		delay = retry.Delay
	}
	var response *http.Response
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if request.Body != nil {
				// request bodies are built from byte readers, GetBody is always set
				if request.Body, err = request.GetBody(); err != nil {
					return nil, err
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		response, err = s.client.Do(request)
		if err != nil {
			continue
		}
		if response.StatusCode < http.StatusInternalServerError {
			return response, nil
		}
		if attempt+1 < attempts {
			_ = response.Body.Close()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", request.URL, err)
	}
	return response, nil
}

func decodeBody(contentType string, data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	looksJSON := len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
	if strings.Contains(contentType, "json") || looksJSON {
		var decoded interface{}
		if err := json.Unmarshal(trimmed, &decoded); err == nil {
			return decoded
		}
	}
	return string(data)
}
