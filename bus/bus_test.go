package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditkit/audit"
)

type pingEvent struct {
	audit.BaseEvent
	Seq int
}

func (e pingEvent) EventName() string { return "test.ping" }

type otherEvent struct {
	audit.BaseEvent
}

func (e otherEvent) EventName() string { return "test.other" }

func TestMemoryPublishInvokesSubscribersInOrder(t *testing.T) {
	b := NewMemory()
	var got []string
	b.Subscribe("test.ping", func(_ context.Context, e audit.Event) error {
		got = append(got, "first")
		return nil
	})
	b.Subscribe("test.ping", func(_ context.Context, e audit.Event) error {
		got = append(got, "second")
		return nil
	})
	b.SubscribeAll(func(_ context.Context, e audit.Event) error {
		got = append(got, "all")
		return nil
	})

	require.NoError(t, b.Publish(context.Background(), pingEvent{BaseEvent: audit.NewBaseEvent()}))
	assert.Equal(t, []string{"first", "second", "all"}, got)
}

func TestMemoryPublishWithoutSubscribersIsNoop(t *testing.T) {
	b := NewMemory()
	assert.NoError(t, b.Publish(context.Background(), otherEvent{BaseEvent: audit.NewBaseEvent()}))
}

func TestMemoryPublishJoinsSubscriberErrors(t *testing.T) {
	b := NewMemory()
	errBoom := errors.New("boom")
	var secondRan bool
	b.Subscribe("test.ping", func(context.Context, audit.Event) error { return errBoom })
	b.Subscribe("test.ping", func(context.Context, audit.Event) error {
		secondRan = true
		return nil
	})

	err := b.Publish(context.Background(), pingEvent{BaseEvent: audit.NewBaseEvent()})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, secondRan, "a failing subscriber must not starve the rest")
}

func TestMemorySubscribersAreNameScoped(t *testing.T) {
	b := NewMemory()
	var pings int
	b.Subscribe("test.ping", func(context.Context, audit.Event) error {
		pings++
		return nil
	})

	require.NoError(t, b.Publish(context.Background(), otherEvent{BaseEvent: audit.NewBaseEvent()}))
	assert.Zero(t, pings)
}
