package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"

	"github.com/atomhq/atom/internal/clock"
)

// Snapshot is a stored view of a remote resource used as the drift baseline.
type Snapshot struct {
	Service  string    `json:"service"`
	Resource string    `json:"resource"`
	Content  string    `json:"content"`
	TakenAt  time.Time `json:"takenAt"`
}

// Drift describes how a resource diverged from its stored snapshot.
type Drift struct {
	Service  string    `json:"service"`
	Resource string    `json:"resource"`
	Patch    string    `json:"patch,omitempty"`
	Added    int       `json:"added"`
	Removed  int       `json:"removed"`
	Baseline time.Time `json:"baseline"`
}

// Changed reports whether the resource differs from the baseline.
func (d *Drift) Changed() bool {
	return d != nil && d.Patch != ""
}

// DiffSummary aggregates a stored unified diff.
type DiffSummary struct {
	Files   int `json:"files"`
	Hunks   int `json:"hunks"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// SaveSnapshot stores the baseline under snapshots/<service>/<resource>.json.
func (s *Service) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = clock.Now()
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s/%s: %w", snapshot.Service, snapshot.Resource, err)
	}
	URL := s.snapshotURL(snapshot.Service, snapshot.Resource)
	if err = s.fs.Upload(ctx, URL, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to persist snapshot %s/%s: %w", snapshot.Service, snapshot.Resource, err)
	}
	return nil
}

// LoadSnapshot reads the stored baseline, or returns nil when absent.
func (s *Service) LoadSnapshot(ctx context.Context, service, resource string) (*Snapshot, error) {
	URL := s.snapshotURL(service, resource)
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s/%s: %w", service, resource, err)
	}
	snapshot := &Snapshot{}
	if err = json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s/%s: %w", service, resource, err)
	}
	return snapshot, nil
}

// DetectDrift compares the current resource content against the stored
// snapshot and produces a unified diff.  A missing snapshot yields a drift
// with the full content as additions.
func (s *Service) DetectDrift(ctx context.Context, service, resource, current string) (*Drift, error) {
	snapshot, err := s.LoadSnapshot(ctx, service, resource)
	if err != nil {
		return nil, err
	}
	baseline := ""
	drift := &Drift{Service: service, Resource: resource}
	if snapshot != nil {
		baseline = snapshot.Content
		drift.Baseline = snapshot.TakenAt
	}
	if baseline == current {
		return drift, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(baseline),
		B:        difflib.SplitLines(current),
		FromFile: resource + " (snapshot)",
		ToFile:   resource + " (current)",
		Context:  3,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s/%s: %w", service, resource, err)
	}
	drift.Patch = patch
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			drift.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			drift.Removed++
		}
	}
	return drift, nil
}

// SummarizeDiff aggregates a stored unified diff into file/hunk/line counts.
// When the patch header is incomplete the parser fails; counting then falls
// back to a plain line scan.
func SummarizeDiff(patchText string) (*DiffSummary, error) {
	summary := &DiffSummary{}
	if strings.TrimSpace(patchText) == "" {
		return summary, nil
	}
	mfd, err := sgdiff.ParseMultiFileDiff([]byte(patchText))
	if err == nil && len(mfd) > 0 {
		summary.Files = len(mfd)
		for _, fd := range mfd {
			summary.Hunks += len(fd.Hunks)
			for _, hunk := range fd.Hunks {
				for _, line := range strings.Split(string(hunk.Body), "\n") {
					switch {
					case strings.HasPrefix(line, "+"):
						summary.Added++
					case strings.HasPrefix(line, "-"):
						summary.Removed++
					}
				}
			}
		}
		return summary, nil
	}

	// fallback: plain line scan
	summary.Files = strings.Count(patchText, "\n+++ ")
	if strings.HasPrefix(patchText, "+++ ") {
		summary.Files++
	}
	if summary.Files == 0 {
		summary.Files = 1
	}
	for _, line := range strings.Split(patchText, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			summary.Hunks++
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			summary.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			summary.Removed++
		}
	}
	return summary, nil
}

func (s *Service) snapshotURL(service, resource string) string {
	return fmt.Sprintf("%s/snapshots/%s/%s.json", s.baseURL, service, resource)
}
