package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/contentkit/studio/internal/eventbus"
	"github.com/contentkit/studio/internal/testutil"
)

func TestPushAndList(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	bus := eventbus.NewBus(db)
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		if _, err := bus.Push(ctx, eventbus.EventInput{SessionID: "sess-1", Stream: eventbus.StreamAgentText, Body: body}); err != nil {
			t.Fatalf("push %s: %v", body, err)
		}
	}
	if _, err := bus.Push(ctx, eventbus.EventInput{SessionID: "sess-2", Stream: eventbus.StreamAgentText, Body: "other"}); err != nil {
		t.Fatalf("push other session: %v", err)
	}

	events, err := bus.List(ctx, "sess-1", eventbus.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Body != "one" || events[2].Body != "three" {
		t.Fatalf("expected fifo order, got %s..%s", events[0].Body, events[2].Body)
	}

	events, err = bus.List(ctx, "sess-1", eventbus.ListOptions{Order: "lifo", Limit: 1})
	if err != nil {
		t.Fatalf("list lifo: %v", err)
	}
	if len(events) != 1 || events[0].Body != "three" {
		t.Fatalf("expected newest event, got %v", events)
	}
}

func TestListFiltersByStream(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	bus := eventbus.NewBus(db)
	ctx := context.Background()

	if _, err := bus.Push(ctx, eventbus.EventInput{SessionID: "sess-1", Stream: eventbus.StreamAgentText, Body: "text"}); err != nil {
		t.Fatalf("push text: %v", err)
	}
	if _, err := bus.Push(ctx, eventbus.EventInput{SessionID: "sess-1", Stream: eventbus.StreamErrors, Body: "boom"}); err != nil {
		t.Fatalf("push error: %v", err)
	}

	events, err := bus.List(ctx, "sess-1", eventbus.ListOptions{Stream: eventbus.StreamErrors})
	if err != nil {
		t.Fatalf("list errors: %v", err)
	}
	if len(events) != 1 || events[0].Body != "boom" {
		t.Fatalf("expected only the error event, got %v", events)
	}
}

func TestSubscribeReceivesSessionEvents(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	bus := eventbus.NewBus(db)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := bus.Subscribe(ctx, "sess-1")

	if _, err := bus.Push(context.Background(), eventbus.EventInput{SessionID: "sess-2", Stream: eventbus.StreamAgentText, Body: "ignored"}); err != nil {
		t.Fatalf("push other session: %v", err)
	}
	if _, err := bus.Push(context.Background(), eventbus.EventInput{SessionID: "sess-1", Stream: eventbus.StreamAgentText, Body: "mine"}); err != nil {
		t.Fatalf("push: %v", err)
	}

	select {
	case evt := <-sub:
		if evt.Body != "mine" {
			t.Fatalf("expected own session event, got %q", evt.Body)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}

	cancel()
	for range sub {
	}
	if count := bus.SubscriberCount(); count != 0 {
		t.Fatalf("expected subscriber gone, have %d", count)
	}
}

func TestSubscribeCancelledContext(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	bus := eventbus.NewBus(db)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := bus.Subscribe(ctx, "sess-1")
	if count := bus.SubscriberCount(); count != 0 {
		t.Fatalf("cancelled context must not register, have %d", count)
	}
	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}
}
