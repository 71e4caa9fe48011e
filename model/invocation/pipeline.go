package invocation

// Step binds one pipeline position to an integration action. Pipelines are
// deliberately linear: each step runs after the previous one completed and
// may receive the previous output under CarryAs.
type Step struct {
	Name    string                 `json:"name" yaml:"name"`
	Service string                 `json:"service" yaml:"service"`
	Method  string                 `json:"method" yaml:"method"`
	Input   map[string]interface{} `json:"input,omitempty" yaml:"input,omitempty"`
	// CarryAs names the input key under which the previous step's output map
	// is injected. Empty means the step receives its literal input only.
	CarryAs string `json:"carryAs,omitempty" yaml:"carryAs,omitempty"`
}

// Action returns the fully qualified action name of the step.
func (s *Step) Action() string {
	return s.Service + "." + s.Method
}

// Pipeline is an ordered list of integration steps.
type Pipeline struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []*Step `json:"steps" yaml:"steps"`
}

// Validate checks structural invariants of the pipeline.
func (p *Pipeline) Validate() error {
	if p == nil || len(p.Steps) == 0 {
		return errEmptyPipeline
	}
	seen := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.Service == "" || step.Method == "" {
			return errIncompleteStep(step.Name)
		}
		name := step.Name
		if name == "" {
			name = step.Action()
		}
		if seen[name] {
			return errDuplicateStep(name)
		}
		seen[name] = true
	}
	return nil
}
