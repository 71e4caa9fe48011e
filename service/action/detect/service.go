package detect

import (
	"context"
	"reflect"
	"strings"

	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/model/types"
)

const name = "detect"

// Service exposes the keyword classifier as an action so pipelines and the
// gateway can share one detector instance.
type Service struct {
	detector *intelligence.Detector
}

// Input carries the free-form text to classify.
type Input struct {
	Text string `json:"text"`
}

// Output returns the ranked candidates.
type Output struct {
	Candidates []*intelligence.Candidate `json:"candidates"`
	Ambiguous  bool                      `json:"ambiguous"`
	Intent     string                    `json:"intent,omitempty"`
}

// SuggestOutput returns a suggested linear pipeline for the text.
type SuggestOutput struct {
	Pipeline *invocation.Pipeline `json:"pipeline,omitempty"`
}

// New creates a detect service around the supplied detector; a nil detector
// falls back to the stock vocabulary.
func New(detector *intelligence.Detector) *Service {
	if detector == nil {
		detector = intelligence.NewDetector()
	}
	return &Service{detector: detector}
}

// Detector exposes the underlying detector so catalog reloads can swap
// mappings.
func (s *Service) Detector() *intelligence.Detector {
	return s.detector
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "services",
			Description: "Detects which vendor services a text refers to.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "suggest",
			Description: "Suggests a linear pipeline for the given text.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&SuggestOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "services":
		return s.services, nil
	case "suggest":
		return s.suggest, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) services(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	detection := s.detector.Detect(input.Text)
	output.Candidates = detection.Candidates
	output.Ambiguous = detection.Ambiguous
	output.Intent = intelligence.DetectIntent(input.Text)
	return nil
}

func (s *Service) suggest(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SuggestOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Pipeline = s.detector.SuggestPipeline(input.Text)
	return nil
}
