package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventSLABreached, func(_ context.Context, _ Event) error {
		seen = append(seen, "wrong-type")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "tck-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first:tck-1", "second:tck-1"}, seen)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventTicketAssigned, func(_ context.Context, _ Event) error {
		return errors.New("handler blew up")
	})
	d.Subscribe(EventTicketAssigned, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketAssigned})
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	d := NewInMemoryDispatcher()

	err := d.Publish(context.Background(), Event{Type: EventTicketCommentAdded})

	require.NoError(t, err)
}
