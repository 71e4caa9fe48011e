package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketCreated struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
}

func TestService_TypedPublishSubscribe(t *testing.T) {
	service, err := New("memory")
	require.NoError(t, err)

	var mux sync.Mutex
	var received []*Event[ticketCreated]
	err = SetListenerOf[ticketCreated](service, func(event *Event[ticketCreated]) {
		mux.Lock()
		received = append(received, event)
		mux.Unlock()
	})
	require.NoError(t, err)

	publisher, err := PublisherOf[ticketCreated](service)
	require.NoError(t, err)

	ctx := context.Background()
	eventContext := &Context{
		InvocationID: "inv-1",
		EventType:    "onDone",
		Service:      "connector",
		Method:       "call",
	}
	require.NoError(t, publisher.Publish(ctx, NewEvent(eventContext, ticketCreated{ID: 7, Subject: "printer on fire"})))

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mux.Lock()
	defer mux.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, 7, received[0].Data.ID)
	assert.Equal(t, "connector", received[0].Context.Service)
}

func TestService_AnyListenerSeesTypedEvents(t *testing.T) {
	service, err := New("memory")
	require.NoError(t, err)

	var mux sync.Mutex
	var seen int
	service.SetListener(func(event *Event[any]) {
		mux.Lock()
		seen++
		mux.Unlock()
	})

	publisher, err := PublisherOf[ticketCreated](service)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{InvocationID: "inv-1", EventType: "onDone"}, ticketCreated{ID: 1})))
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{InvocationID: "inv-2", EventType: "onDone"}, ticketCreated{ID: 2})))

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return seen == 2
	}, time.Second, 10*time.Millisecond)
}

func TestService_UnsupportedVendor(t *testing.T) {
	_, err := New("kafka")
	assert.Error(t, err)
}

func TestService_FsVendorRequiresConfig(t *testing.T) {
	_, err := New("fs")
	assert.Error(t, err)
}
