package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomhq/atom"
	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/approval"
	"github.com/atomhq/atom/service/report"
)

func newTestGateway(t *testing.T, options ...atom.Option) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	service := atom.New(options...)
	require.NoError(t, service.Runtime().Start(ctx))
	t.Cleanup(func() { _ = service.Runtime().Shutdown(ctx) })

	gw := New(service, ":0")
	server := httptest.NewServer(gw.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	response, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return response
}

func decodeBody(t *testing.T, response *http.Response, target interface{}) {
	t.Helper()
	defer response.Body.Close()
	require.NoError(t, json.NewDecoder(response.Body).Decode(target))
}

func TestServer_Health(t *testing.T) {
	server := newTestGateway(t)
	response, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	var status map[string]string
	decodeBody(t, response, &status)
	assert.Equal(t, "up", status["status"])
}

func TestServer_Detect(t *testing.T) {
	server := newTestGateway(t)

	response := postJSON(t, server.URL+"/v1/detect", map[string]string{
		"text": "create a support ticket in zendesk",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var detection intelligence.Detection
	decodeBody(t, response, &detection)
	require.NotEmpty(t, detection.Candidates)
	assert.Equal(t, "zendesk", detection.Candidates[0].Service)

	t.Run("missing text", func(t *testing.T) {
		response := postJSON(t, server.URL+"/v1/detect", map[string]string{})
		defer response.Body.Close()
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}

func TestServer_InvocationLifecycle(t *testing.T) {
	server := newTestGateway(t)

	response := postJSON(t, server.URL+"/v1/invocations?wait=true", map[string]interface{}{
		"service": "transform",
		"method":  "pick",
		"input": map[string]interface{}{
			"data": map[string]interface{}{"id": 1, "name": "ticket", "noise": true},
			"keys": []string{"id", "name"},
		},
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var anInvocation invocation.Invocation
	decodeBody(t, response, &anInvocation)
	assert.Equal(t, invocation.StateCompleted, anInvocation.State)
	require.NotEmpty(t, anInvocation.ID)

	t.Run("get by id", func(t *testing.T) {
		response, err := http.Get(server.URL + "/v1/invocations/" + anInvocation.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, response.StatusCode)
		var stored invocation.Invocation
		decodeBody(t, response, &stored)
		assert.Equal(t, anInvocation.ID, stored.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		response, err := http.Get(server.URL + "/v1/invocations/no-such-invocation")
		require.NoError(t, err)
		defer response.Body.Close()
		assert.Equal(t, http.StatusNotFound, response.StatusCode)
	})

	t.Run("incomplete request", func(t *testing.T) {
		response := postJSON(t, server.URL+"/v1/invocations", map[string]interface{}{"service": "transform"})
		defer response.Body.Close()
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}

func TestServer_RunPipelineAndReport(t *testing.T) {
	server := newTestGateway(t)

	response := postJSON(t, server.URL+"/v1/runs", map[string]interface{}{
		"pipeline": &invocation.Pipeline{
			Name: "shape-and-log",
			Steps: []*invocation.Step{
				{
					Name:    "shape",
					Service: "transform",
					Method:  "rename",
					Input: map[string]interface{}{
						"data":    map[string]interface{}{"subject": "printer on fire"},
						"mapping": map[string]string{"subject": "title"},
					},
				},
				{Name: "log", Service: "logger", Method: "print", Input: map[string]interface{}{"message": "done"}},
			},
		},
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var runReport report.RunReport
	decodeBody(t, response, &runReport)
	assert.Equal(t, string(invocation.StateCompleted), runReport.State)
	require.NotEmpty(t, runReport.RunID)

	t.Run("report round trip", func(t *testing.T) {
		response, err := http.Get(server.URL + "/v1/reports/" + runReport.RunID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, response.StatusCode)
		var loaded report.RunReport
		decodeBody(t, response, &loaded)
		assert.Equal(t, runReport.RunID, loaded.RunID)
		assert.Len(t, loaded.Steps, 2)
	})

	t.Run("invocation trail by run", func(t *testing.T) {
		response, err := http.Get(server.URL + "/v1/invocations?runId=" + runReport.RunID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, response.StatusCode)
		var invocations []*invocation.Invocation
		decodeBody(t, response, &invocations)
		assert.Len(t, invocations, 2)
	})

	t.Run("empty run request", func(t *testing.T) {
		response := postJSON(t, server.URL+"/v1/runs", map[string]interface{}{})
		defer response.Body.Close()
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}

func TestServer_ApprovalFlow(t *testing.T) {
	server := newTestGateway(t, atom.WithPolicy(&policy.Policy{
		Mode:     policy.ModeAuto,
		Maturity: policy.LevelExperimental,
		ActionMinimum: map[string]policy.Level{
			"logger.print": policy.LevelSupervised,
		},
	}))

	response := postJSON(t, server.URL+"/v1/invocations", map[string]interface{}{
		"service": "logger",
		"method":  "print",
		"input":   map[string]interface{}{"message": "needs a human"},
	})
	require.Equal(t, http.StatusAccepted, response.StatusCode)
	var anInvocation invocation.Invocation
	decodeBody(t, response, &anInvocation)

	var pendingID string
	require.Eventually(t, func() bool {
		response, err := http.Get(server.URL + "/v1/approvals")
		if err != nil {
			return false
		}
		defer response.Body.Close()
		var pending []*approval.Request
		if err := json.NewDecoder(response.Body).Decode(&pending); err != nil || len(pending) == 0 {
			return false
		}
		pendingID = pending[0].ID
		return true
	}, 5*time.Second, 20*time.Millisecond, "invocation should park behind an approval request")

	decideResponse := postJSON(t, server.URL+"/v1/approvals/"+pendingID, map[string]interface{}{
		"approved": true,
		"reason":   "looks safe",
	})
	require.Equal(t, http.StatusOK, decideResponse.StatusCode)
	var decision approval.Decision
	decodeBody(t, decideResponse, &decision)
	assert.True(t, decision.Approved)

	require.Eventually(t, func() bool {
		response, err := http.Get(server.URL + "/v1/invocations/" + anInvocation.ID)
		if err != nil {
			return false
		}
		defer response.Body.Close()
		var stored invocation.Invocation
		if err := json.NewDecoder(response.Body).Decode(&stored); err != nil {
			return false
		}
		return stored.State == invocation.StateCompleted
	}, 5*time.Second, 20*time.Millisecond, "approved invocation should resume and complete")

	t.Run("unknown approval", func(t *testing.T) {
		response := postJSON(t, server.URL+"/v1/approvals/no-such-request", map[string]interface{}{"approved": true})
		defer response.Body.Close()
		assert.Equal(t, http.StatusNotFound, response.StatusCode)
	})
}

func TestServer_Metrics(t *testing.T) {
	server := newTestGateway(t)

	// generate at least one instrumented request first
	response, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	response.Body.Close()

	response, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "atom_gateway_requests_total"),
		fmt.Sprintf("metrics exposition should include the request counter, got: %.200s", body))
}
