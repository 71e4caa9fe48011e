package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvExpr(t *testing.T) {
	_ = os.Setenv("FOO", "bar")
	_ = os.Setenv("A", "1")
	_ = os.Setenv("B", "2")
	_ = os.Unsetenv("NOTSET")
	_ = os.Unsetenv("Y")

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no expression",
			input:    "plain value",
			expected: "plain value",
		},
		{
			name:     "single expression",
			input:    "value is ${env.FOO}",
			expected: "value is bar",
		},
		{
			name:     "repeated expressions",
			input:    "${env.A}-${env.B}-${env.A}",
			expected: "1-2-1",
		},
		{
			name:     "unset variable expands to empty",
			input:    "unset=${env.NOTSET}-end",
			expected: "unset=-end",
		},
		{
			name:     "unterminated expression kept literal",
			input:    "start ${env.X and ${env.Y} end",
			expected: "start ${env.X and  end",
		},
		{
			name:     "empty key",
			input:    "oops ${env.} done",
			expected: "oops  done",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandEnvExpr(tc.input))
		})
	}
}
