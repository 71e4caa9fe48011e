// Package report renders run outcomes and snapshot drift as deterministic
// JSON documents persisted through afs.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"

	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/invocation"
)

// StepReport describes the outcome of one pipeline step.
type StepReport struct {
	Name         string `json:"name"`
	InvocationID string `json:"invocationId"`
	State        string `json:"state"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"durationMs,omitempty"`
}

// RunReport is the persisted record of one pipeline run.
type RunReport struct {
	RunID       string                  `json:"runId"`
	Pipeline    string                  `json:"pipeline"`
	State       string                  `json:"state"`
	CreatedAt   time.Time               `json:"createdAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	DurationMs  int64                   `json:"durationMs,omitempty"`
	Steps       []*StepReport           `json:"steps"`
	Errors      map[string]string       `json:"errors,omitempty"`
	Detection   *intelligence.Detection `json:"detection,omitempty"`
	Drift       []*Drift                `json:"drift,omitempty"`
}

// Build assembles a report from a finished run.
func Build(run *invocation.Run) *RunReport {
	report := &RunReport{
		RunID:       run.ID,
		Pipeline:    run.Pipeline,
		State:       string(run.State),
		CreatedAt:   run.CreatedAt,
		CompletedAt: run.CompletedAt,
	}
	if len(run.Errors) > 0 {
		report.Errors = run.Errors
	}
	if run.CompletedAt != nil {
		report.DurationMs = run.CompletedAt.Sub(run.CreatedAt).Milliseconds()
	}
	for _, step := range run.Steps {
		stepReport := &StepReport{
			Name:         step.Name,
			InvocationID: step.InvocationID,
			State:        string(step.State),
			Error:        step.Error,
		}
		if step.StartedAt != nil && step.CompletedAt != nil {
			stepReport.DurationMs = step.CompletedAt.Sub(*step.StartedAt).Milliseconds()
		}
		report.Steps = append(report.Steps, stepReport)
	}
	return report
}

// Service persists reports and snapshots under a base URL.
type Service struct {
	fs      afs.Service
	baseURL string
}

// New creates a report service rooted at baseURL.
func New(fs afs.Service, baseURL string) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save renders the report as indented JSON under reports/<runID>.json and
// returns the destination URL.
func (s *Service) Save(ctx context.Context, report *RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report %s: %w", report.RunID, err)
	}
	URL := s.reportURL(report.RunID)
	if err = s.fs.Upload(ctx, URL, 0644, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to persist report %s: %w", report.RunID, err)
	}
	return URL, nil
}

// Load reads a previously persisted report.
func (s *Service) Load(ctx context.Context, runID string) (*RunReport, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.reportURL(runID))
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", runID, err)
	}
	report := &RunReport{}
	if err = json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", runID, err)
	}
	return report, nil
}

func (s *Service) reportURL(runID string) string {
	return fmt.Sprintf("%s/reports/%s.json", s.baseURL, runID)
}
