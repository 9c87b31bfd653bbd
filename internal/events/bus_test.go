/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "testing"

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventServiceStart)

	bus.Publish(EventServiceStart, Payload{"unit": "test.service"})

	select {
	case payload := <-sub:
		if payload["unit"] != "test.service" {
			t.Fatalf("unexpected payload: %v", payload)
		}
	default:
		t.Fatal("expected payload on subscriber channel")
	}
}

func TestBusDoesNotDeliverOtherEventTypes(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventServiceStart)

	bus.Publish(EventServiceStop, Payload{})

	select {
	case <-sub:
		t.Fatal("subscriber should not receive events of other types")
	default:
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventCycleComplete)
	bus.Unsubscribe(EventCycleComplete, sub)

	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(EventCycleComplete, Payload{})
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventWindowFetched)

	// Fill the buffered channel and then some; surplus is dropped, not blocked.
	for i := 0; i < 20; i++ {
		bus.Publish(EventWindowFetched, Payload{"i": i})
	}

	if got := len(sub); got != cap(sub) {
		t.Fatalf("expected channel full at %d, got %d", cap(sub), got)
	}
}
