package state

import (
	"github.com/viant/bindly/state"
)

// Parameter describes a named operation parameter: its Go data type and the
// wire location (query, path, header, body) declared in the catalog.
type Parameter struct {
	Name     string          `json:"name" yaml:"name"`
	Value    interface{}     `json:"value" yaml:"value"`
	DataType string          `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Location *state.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Default  interface{}     `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool            `json:"required,omitempty" yaml:"required,omitempty"`
}

// Parameters is a collection of named parameters
type Parameters []*Parameter

// Add appends a parameter to the collection
func (p *Parameters) Add(name string, value interface{}) {
	*p = append(*p, &Parameter{Name: name, Value: value})
}

// Get retrieves a parameter by name
func (p Parameters) Get(name string) (*Parameter, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return nil, false
}

// InLocation returns all parameters declared for the given location kind.
func (p Parameters) InLocation(kind string) Parameters {
	var out Parameters
	for _, param := range p {
		if param.Location != nil && param.Location.Kind == kind {
			out = append(out, param)
		}
	}
	return out
}

// ToMap converts Parameters to a map
func (p Parameters) ToMap() map[string]interface{} {
	result := make(map[string]interface{})
	for _, param := range p {
		result[param.Name] = param.Value
	}
	return result
}

// FromMap creates Parameters from a map
func FromMap(m map[string]interface{}) Parameters {
	params := make(Parameters, 0, len(m))
	for k, v := range m {
		params = append(params, &Parameter{Name: k, Value: v})
	}
	return params
}
