package fs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
)

func testBaseURL(t *testing.T) string {
	return fmt.Sprintf("mem://localhost/dao/%v-%d", t.Name(), time.Now().UnixNano())
}

func TestService_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	service := New(afs.New(), testBaseURL(t))

	anInvocation := invocation.New("connector", "call", map[string]interface{}{"service": "zendesk"})
	anInvocation.RunID = "run-1"
	require.NoError(t, service.Save(ctx, anInvocation))

	loaded, err := service.Load(ctx, anInvocation.ID)
	require.NoError(t, err)
	assert.Equal(t, anInvocation.ID, loaded.ID)
	assert.Equal(t, invocation.StatePending, loaded.State)
	assert.Equal(t, "run-1", loaded.RunID)

	// save is an overwrite
	anInvocation.Complete()
	require.NoError(t, service.Save(ctx, anInvocation))
	reloaded, err := service.Load(ctx, anInvocation.ID)
	require.NoError(t, err)
	assert.Equal(t, invocation.StateCompleted, reloaded.State)

	require.NoError(t, service.Delete(ctx, anInvocation.ID))
	_, err = service.Load(ctx, anInvocation.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, anInvocation.ID), dao.ErrNotFound)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	service := New(afs.New(), testBaseURL(t))

	first := invocation.New("connector", "call", nil)
	first.RunID = "run-1"
	first.Complete()
	second := invocation.New("logger", "print", nil)
	second.RunID = "run-1"
	third := invocation.New("connector", "call", nil)
	third.RunID = "run-2"

	for _, anInvocation := range []*invocation.Invocation{first, second, third} {
		require.NoError(t, service.Save(ctx, anInvocation))
	}

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expected    int
	}{
		{
			description: "all invocations",
			expected:    3,
		},
		{
			description: "by run",
			parameters:  []*dao.Parameter{dao.NewParameter("RunID", "run-1")},
			expected:    2,
		},
		{
			description: "by service and run",
			parameters:  []*dao.Parameter{dao.NewParameter("Service", "connector"), dao.NewParameter("RunID", "run-2")},
			expected:    1,
		},
		{
			description: "by state",
			parameters:  []*dao.Parameter{dao.NewParameter("State", string(invocation.StateCompleted))},
			expected:    1,
		},
	}

	for _, testCase := range testCases {
		matched, err := service.List(ctx, testCase.parameters...)
		require.NoError(t, err, testCase.description)
		assert.Len(t, matched, testCase.expected, testCase.description)
	}
}

func TestService_InvalidInput(t *testing.T) {
	ctx := context.Background()
	service := New(afs.New(), testBaseURL(t))

	assert.ErrorIs(t, service.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, service.Save(ctx, &invocation.Invocation{}), dao.ErrInvalidID)
	_, err := service.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}
