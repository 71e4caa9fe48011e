package catalog

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

const catalogYAML = `name: default
mappings:
  - service: acme
    keywords: [acme, widget]
    phrases: ["widget order"]
    priority: 1.5
    methodHints:
      create: createWidget
profiles:
  acme:
    baseURL: ${env.ACME_BASE_URL}
    authSecretURL: mem://secrets/acme.json
    authKind: bearer
    cacheTTL: 30s
    retry:
      maxRetries: 2
      delay: 50ms
    operations:
      createWidget:
        method: post
        path: /v1/widgets
        parameters:
          - name[string](body/widget.name)
          - count:int
policy:
  maturity: supervised
  actionMinimum:
    connector.call: supervised
`

func TestService_Load(t *testing.T) {
	_ = os.Setenv("ACME_BASE_URL", "https://api.acme.test")
	ctx := context.Background()
	fs := afs.New()
	err := fs.Upload(ctx, "mem://localhost/catalog/default.yaml", 0644, strings.NewReader(catalogYAML))
	require.NoError(t, err)

	srv := New(fs, "mem://localhost/catalog")
	catalog, err := srv.Load(ctx, "default")
	require.NoError(t, err)

	assert.Equal(t, "default", catalog.Name)

	require.Len(t, catalog.Mappings, 1)
	mapping := catalog.Mappings[0]
	assert.Equal(t, "acme", mapping.Service)
	assert.Equal(t, []string{"acme", "widget"}, mapping.Keywords)
	assert.Equal(t, []string{"widget order"}, mapping.Phrases)
	assert.Equal(t, 1.5, mapping.Priority)
	assert.Equal(t, "createWidget", mapping.MethodHints["create"])

	profile := catalog.Profile("acme")
	require.NotNil(t, profile)
	assert.Equal(t, "https://api.acme.test", profile.BaseURL)
	assert.Equal(t, "bearer", profile.AuthKind)
	assert.Equal(t, 30*time.Second, profile.CacheTTL)
	require.NotNil(t, profile.Retry)
	assert.Equal(t, 2, profile.Retry.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, profile.Retry.Delay)

	operation := profile.Operation("createWidget")
	require.NotNil(t, operation)
	assert.Equal(t, "POST", operation.Method)
	assert.Equal(t, "/v1/widgets", operation.Path)
	require.Len(t, operation.Parameters, 2)
	assert.Equal(t, "name", operation.Parameters[0].Name)
	assert.Equal(t, "body", operation.Parameters[0].Location.Kind)
	assert.Equal(t, "widget.name", operation.Parameters[0].Location.In)
	assert.Equal(t, "count", operation.Parameters[1].Name)
	assert.Equal(t, "int", operation.Parameters[1].DataType)

	require.NotNil(t, catalog.Policy)
	assert.Equal(t, "supervised", catalog.Policy.Maturity)
	assert.Equal(t, "supervised", catalog.Policy.ActionMinimum["connector.call"])
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	err := fs.Upload(ctx, "mem://localhost/refresh/cat.yaml", 0644, strings.NewReader("name: v1\n"))
	require.NoError(t, err)

	srv := New(fs, "mem://localhost/refresh")
	catalog, err := srv.Load(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "v1", catalog.Name)

	err = fs.Upload(ctx, "mem://localhost/refresh/cat.yaml", 0644, strings.NewReader("name: v2\n"))
	require.NoError(t, err)

	// cached until refreshed
	catalog, err = srv.Load(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "v1", catalog.Name)

	srv.Refresh()
	catalog, err = srv.Load(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "v2", catalog.Name)
}

func TestService_DecodeYAMLErrors(t *testing.T) {
	srv := New(nil, "")
	_, err := srv.DecodeYAML([]byte("- just\n- a\n- list\n"))
	assert.Error(t, err)

	_, err = srv.DecodeYAML([]byte("mappings:\n  - keywords: [a]\n"))
	assert.Error(t, err)
}
