package report

import (
	"context"
	"reflect"
	"strings"

	"github.com/atomhq/atom/model/types"
	runreport "github.com/atomhq/atom/service/report"
)

const name = "report"

// Service exposes run reports and snapshot drift as pipeline actions so
// automations can audit themselves.
type Service struct {
	reports *runreport.Service
}

// LoadInput selects a persisted run report.
type LoadInput struct {
	RunID string `json:"runID" required:"true"`
}

// LoadOutput carries the persisted run report.
type LoadOutput struct {
	Report *runreport.RunReport `json:"report,omitempty"`
}

// SnapshotInput stores a drift baseline for a vendor resource.
type SnapshotInput struct {
	Service  string `json:"service" required:"true" description:"Vendor service, e.g. 'zendesk'"`
	Resource string `json:"resource" required:"true" description:"Resource name, e.g. 'triggers'"`
	Content  string `json:"content" description:"Canonical resource content"`
}

// SnapshotOutput confirms the stored baseline.
type SnapshotOutput struct {
	Success bool `json:"success"`
}

// DriftInput compares current content against the stored baseline.
type DriftInput struct {
	Service  string `json:"service" required:"true"`
	Resource string `json:"resource" required:"true"`
	Content  string `json:"content" description:"Current resource content"`
}

// DriftOutput carries the computed drift.
type DriftOutput struct {
	Drift   *runreport.Drift `json:"drift,omitempty"`
	Changed bool             `json:"changed"`
}

// SummarizeInput aggregates a stored unified diff.
type SummarizeInput struct {
	Patch string `json:"patch"`
}

// SummarizeOutput carries diff counts.
type SummarizeOutput struct {
	Summary *runreport.DiffSummary `json:"summary,omitempty"`
}

// New creates a report action around the supplied report service.
func New(reports *runreport.Service) *Service {
	return &Service{reports: reports}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "load",
			Description: "Loads a persisted run report.",
			Input:       reflect.TypeOf(&LoadInput{}),
			Output:      reflect.TypeOf(&LoadOutput{}),
		},
		{
			Name:        "snapshot",
			Description: "Stores a drift baseline for a vendor resource.",
			Input:       reflect.TypeOf(&SnapshotInput{}),
			Output:      reflect.TypeOf(&SnapshotOutput{}),
		},
		{
			Name:        "drift",
			Description: "Diffs current resource content against its baseline.",
			Input:       reflect.TypeOf(&DriftInput{}),
			Output:      reflect.TypeOf(&DriftOutput{}),
		},
		{
			Name:        "summarize",
			Description: "Aggregates a unified diff into file and line counts.",
			Input:       reflect.TypeOf(&SummarizeInput{}),
			Output:      reflect.TypeOf(&SummarizeOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "load":
		return s.load, nil
	case "snapshot":
		return s.snapshot, nil
	case "drift":
		return s.drift, nil
	case "summarize":
		return s.summarize, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) load(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*LoadInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*LoadOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	report, err := s.reports.Load(ctx, input.RunID)
	if err != nil {
		return err
	}
	output.Report = report
	return nil
}

func (s *Service) snapshot(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SnapshotInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SnapshotOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	err := s.reports.SaveSnapshot(ctx, &runreport.Snapshot{
		Service:  input.Service,
		Resource: input.Resource,
		Content:  input.Content,
	})
	if err != nil {
		return err
	}
	output.Success = true
	return nil
}

func (s *Service) drift(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DriftInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DriftOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	drift, err := s.reports.DetectDrift(ctx, input.Service, input.Resource, input.Content)
	if err != nil {
		return err
	}
	output.Drift = drift
	output.Changed = drift.Changed()
	return nil
}

func (s *Service) summarize(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SummarizeInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SummarizeOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	summary, err := runreport.SummarizeDiff(input.Patch)
	if err != nil {
		return err
	}
	output.Summary = summary
	return nil
}
