package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Pick(t *testing.T) {
	srv := New()
	ctx := context.Background()

	testCases := []struct {
		description string
		input       *PickInput
		expect      map[string]interface{}
		hasError    bool
	}{
		{
			description: "top level keys",
			input: &PickInput{
				Data: map[string]interface{}{"id": 1, "name": "ticket", "noise": true},
				Keys: []string{"id", "name"},
			},
			expect: map[string]interface{}{"id": 1, "name": "ticket"},
		},
		{
			description: "nested dotted key",
			input: &PickInput{
				Data: map[string]interface{}{
					"ticket": map[string]interface{}{"status": "open"},
				},
				Keys: []string{"ticket.status", "missing"},
			},
			expect: map[string]interface{}{"ticket.status": "open"},
		},
		{
			description: "no keys",
			input:       &PickInput{Data: map[string]interface{}{"id": 1}},
			hasError:    true,
		},
	}

	for _, testCase := range testCases {
		output := &Output{}
		err := srv.Pick(ctx, testCase.input, output)
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, output.Data, testCase.description)
	}
}

func TestService_Rename(t *testing.T) {
	srv := New()
	output := &Output{}
	err := srv.Rename(context.Background(), &RenameInput{
		Data:    map[string]interface{}{"subject": "help", "priority": "high"},
		Mapping: map[string]string{"subject": "title"},
	}, output)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "help", "priority": "high"}, output.Data)
}

func TestService_Flatten(t *testing.T) {
	srv := New()
	output := &Output{}
	err := srv.Flatten(context.Background(), &FlattenInput{
		Data: map[string]interface{}{
			"ticket": map[string]interface{}{
				"status": "open",
				"via":    map[string]interface{}{"channel": "email"},
			},
			"tags": []interface{}{"billing"},
		},
	}, output)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"ticket.status":      "open",
		"ticket.via.channel": "email",
		"tags":               []interface{}{"billing"},
	}, output.Data)
}
