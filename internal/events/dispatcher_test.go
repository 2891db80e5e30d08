package events

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []int64
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.Ticket.ID)
		return nil
	})

	err := d.Publish(context.Background(), Event{
		Type:   EventTicketCreated,
		Ticket: &domain.Ticket{ID: 7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != 7 {
		t.Fatalf("expected handler to observe ticket 7, got %v", seen)
	}
}

func TestDispatcherHandlerErrorDoesNotFailPublish(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})

	var called bool
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{
		Type:   EventTicketCreated,
		Ticket: &domain.Ticket{ID: 1},
	})
	if err != nil {
		t.Fatalf("publish must swallow handler errors, got %v", err)
	}
	if !called {
		t.Fatal("later handlers must still run after a handler error")
	}
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	d := NewInMemoryDispatcher()

	var called bool
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: "ticket.deleted"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("handler must not run for other event types")
	}
}
