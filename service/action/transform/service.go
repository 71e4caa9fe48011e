package transform

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/toolbox"

	"github.com/atomhq/atom/model/types"
)

const name = "transform"

// Service reshapes step payloads so connector outputs can feed the next step
// without vendor-specific glue.
type Service struct{}

// PickInput selects a subset of keys from a payload.
type PickInput struct {
	Data map[string]interface{} `json:"data"`
	Keys []string               `json:"keys"`
}

// RenameInput renames payload keys; unmapped keys pass through unchanged.
type RenameInput struct {
	Data    map[string]interface{} `json:"data"`
	Mapping map[string]string      `json:"mapping"`
}

// FlattenInput collapses nested maps into dotted keys.
type FlattenInput struct {
	Data      map[string]interface{} `json:"data"`
	Separator string                 `json:"separator,omitempty"`
}

// Output carries the reshaped payload.
type Output struct {
	Data map[string]interface{} `json:"data"`
}

// New creates a new transform service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "pick",
			Description: "Keeps only the listed keys of the payload.",
			Input:       reflect.TypeOf(&PickInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "rename",
			Description: "Renames payload keys using the supplied mapping.",
			Input:       reflect.TypeOf(&RenameInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "flatten",
			Description: "Flattens nested maps into dotted keys.",
			Input:       reflect.TypeOf(&FlattenInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "pick":
		return s.pick, nil
	case "rename":
		return s.rename, nil
	case "flatten":
		return s.flatten, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) pick(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*PickInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Pick(ctx, input, output)
}

func (s *Service) rename(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RenameInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Rename(ctx, input, output)
}

func (s *Service) flatten(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*FlattenInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Flatten(ctx, input, output)
}

// Pick keeps only the listed keys.  A dotted key selects a nested value and
// stores it under the same dotted name.
func (s *Service) Pick(ctx context.Context, input *PickInput, output *Output) error {
	if len(input.Keys) == 0 {
		return fmt.Errorf("no keys provided")
	}
	result := map[string]interface{}{}
	for _, key := range input.Keys {
		if value, ok := lookupPath(input.Data, key); ok {
			result[key] = value
		}
	}
	output.Data = result
	return nil
}

// Rename renames top level keys using the supplied mapping.
func (s *Service) Rename(ctx context.Context, input *RenameInput, output *Output) error {
	if len(input.Mapping) == 0 {
		return fmt.Errorf("no mapping provided")
	}
	result := map[string]interface{}{}
	for key, value := range input.Data {
		if renamed, ok := input.Mapping[key]; ok {
			key = renamed
		}
		result[key] = value
	}
	output.Data = result
	return nil
}

// Flatten collapses nested maps into dotted keys; slices pass through as is.
func (s *Service) Flatten(ctx context.Context, input *FlattenInput, output *Output) error {
	separator := input.Separator
	if separator == "" {
		separator = "."
	}
	result := map[string]interface{}{}
	flattenInto(result, "", separator, input.Data)
	output.Data = result
	return nil
}

func flattenInto(dest map[string]interface{}, prefix, separator string, source map[string]interface{}) {
	for key, value := range source {
		path := key
		if prefix != "" {
			path = prefix + separator + key
		}
		if value != nil && toolbox.IsMap(value) {
			flattenInto(dest, path, separator, toolbox.AsMap(value))
			continue
		}
		dest[path] = value
	}
}

func lookupPath(data map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		if current == nil || !toolbox.IsMap(current) {
			return nil, false
		}
		aMap := toolbox.AsMap(current)
		value, ok := aMap[part]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}
