package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		policy   *Policy
		action   string
		expected bool
	}{
		{
			name:     "nil policy allows everything",
			policy:   nil,
			action:   "connector.call",
			expected: true,
		},
		{
			name:     "empty lists allow everything",
			policy:   &Policy{},
			action:   "connector.call",
			expected: true,
		},
		{
			name:     "block list wins",
			policy:   &Policy{AllowList: []string{"exec.run"}, BlockList: []string{"exec.run"}},
			action:   "exec.run",
			expected: false,
		},
		{
			name:     "allow list restricts",
			policy:   &Policy{AllowList: []string{"detect.services"}},
			action:   "connector.call",
			expected: false,
		},
		{
			name:     "case insensitive match",
			policy:   &Policy{AllowList: []string{"Detect.Services"}},
			action:   "detect.services",
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.policy.IsAllowed(tc.action))
		})
	}
}

func TestPolicy_RequiresApproval(t *testing.T) {
	minimum := map[string]Level{
		"connector.call": LevelSupervised,
		"exec.run":       LevelTrusted,
	}

	testCases := []struct {
		name     string
		policy   *Policy
		action   string
		expected bool
	}{
		{
			name:     "nil policy never gates",
			policy:   nil,
			action:   "exec.run",
			expected: false,
		},
		{
			name:     "ask mode gates everything",
			policy:   &Policy{Mode: ModeAsk, Maturity: LevelAutonomous},
			action:   "nop.nop",
			expected: true,
		},
		{
			name:     "below minimum maturity",
			policy:   &Policy{Mode: ModeAuto, Maturity: LevelExperimental, ActionMinimum: minimum},
			action:   "connector.call",
			expected: true,
		},
		{
			name:     "at minimum maturity",
			policy:   &Policy{Mode: ModeAuto, Maturity: LevelSupervised, ActionMinimum: minimum},
			action:   "connector.call",
			expected: false,
		},
		{
			name:     "unlisted action runs free",
			policy:   &Policy{Mode: ModeAuto, Maturity: LevelExperimental, ActionMinimum: minimum},
			action:   "logger.print",
			expected: false,
		},
		{
			name:     "trusted action gated for supervised run",
			policy:   &Policy{Mode: ModeAuto, Maturity: LevelSupervised, ActionMinimum: minimum},
			action:   "exec.run",
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.policy.RequiresApproval(tc.action))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelSupervised, ParseLevel("supervised"))
	assert.Equal(t, LevelAutonomous, ParseLevel(" Autonomous "))
	assert.Equal(t, LevelExperimental, ParseLevel("unknown"))
	assert.Equal(t, LevelExperimental, ParseLevel(""))
}

func TestConfigRoundTrip(t *testing.T) {
	p := &Policy{
		Mode:      ModeAuto,
		AllowList: []string{"detect.services"},
		BlockList: []string{"exec.run"},
		Maturity:  LevelTrusted,
		ActionMinimum: map[string]Level{
			"connector.call": LevelSupervised,
		},
	}
	restored := FromConfig(ToConfig(p))
	assert.Equal(t, p.Mode, restored.Mode)
	assert.Equal(t, p.AllowList, restored.AllowList)
	assert.Equal(t, p.BlockList, restored.BlockList)
	assert.Equal(t, p.Maturity, restored.Maturity)
	assert.Equal(t, p.ActionMinimum, restored.ActionMinimum)
}
