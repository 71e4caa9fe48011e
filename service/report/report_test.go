package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/atomhq/atom/model/invocation"
)

func TestBuild(t *testing.T) {
	pipeline := &invocation.Pipeline{
		Name: "sync-tickets",
		Steps: []*invocation.Step{
			{Name: "fetch", Service: "connector", Method: "call"},
			{Name: "log", Service: "logger", Method: "print"},
		},
	}
	run := invocation.NewRun("run-1", pipeline)

	started := time.Now().Add(-2 * time.Second)
	completed := started.Add(time.Second)
	run.RecordStep(&invocation.StepStatus{
		Name:         "fetch",
		InvocationID: "inv-1",
		State:        invocation.StateCompleted,
		StartedAt:    &started,
		CompletedAt:  &completed,
	})
	run.RecordStep(&invocation.StepStatus{
		Name:         "log",
		InvocationID: "inv-2",
		State:        invocation.StateFailed,
		Error:        "printer offline",
	})
	run.Finish()

	report := Build(run)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "sync-tickets", report.Pipeline)
	assert.Equal(t, string(invocation.StateFailed), report.State)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, int64(1000), report.Steps[0].DurationMs)
	assert.Equal(t, "printer offline", report.Errors["log"])
}

func TestService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	srv := New(afs.New(), "mem://localhost/atom")

	report := &RunReport{
		RunID:     "run-2",
		Pipeline:  "notify",
		State:     string(invocation.StateCompleted),
		CreatedAt: time.Now().UTC(),
	}
	URL, err := srv.Save(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/atom/reports/run-2.json", URL)

	loaded, err := srv.Load(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.Pipeline, loaded.Pipeline)
}

func TestService_DetectDrift(t *testing.T) {
	ctx := context.Background()
	srv := New(afs.New(), "mem://localhost/drift")

	err := srv.SaveSnapshot(ctx, &Snapshot{
		Service:  "zendesk",
		Resource: "triggers",
		Content:  "a\nb\nc\n",
	})
	require.NoError(t, err)

	t.Run("no drift", func(t *testing.T) {
		drift, err := srv.DetectDrift(ctx, "zendesk", "triggers", "a\nb\nc\n")
		require.NoError(t, err)
		assert.False(t, drift.Changed())
	})

	t.Run("changed resource", func(t *testing.T) {
		drift, err := srv.DetectDrift(ctx, "zendesk", "triggers", "a\nB\nc\nd\n")
		require.NoError(t, err)
		assert.True(t, drift.Changed())
		assert.Equal(t, 2, drift.Added)
		assert.Equal(t, 1, drift.Removed)
		assert.True(t, strings.Contains(drift.Patch, "+B"))
	})

	t.Run("missing snapshot is all additions", func(t *testing.T) {
		drift, err := srv.DetectDrift(ctx, "zendesk", "macros", "x\n")
		require.NoError(t, err)
		assert.True(t, drift.Changed())
		assert.Equal(t, 1, drift.Added)
		assert.Equal(t, 0, drift.Removed)
	})
}

func TestSummarizeDiff(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		summary, err := SummarizeDiff("")
		require.NoError(t, err)
		assert.Equal(t, &DiffSummary{}, summary)
	})

	t.Run("single file patch", func(t *testing.T) {
		patch := strings.Join([]string{
			"--- a/config.json",
			"+++ b/config.json",
			"@@ -1,3 +1,3 @@",
			" a",
			"-b",
			"+B",
			" c",
			"",
		}, "\n")
		summary, err := SummarizeDiff(patch)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Files)
		assert.Equal(t, 1, summary.Hunks)
		assert.Equal(t, 1, summary.Added)
		assert.Equal(t, 1, summary.Removed)
	})
}
