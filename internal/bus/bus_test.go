package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	b := New(nil)

	var order []string
	b.Subscribe("log", func(payload any) { order = append(order, "first") })
	b.Subscribe("log", func(payload any) { order = append(order, "second") })
	b.Subscribe("log", func(payload any) { order = append(order, "third") })

	b.Publish("log", "line")

	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPublishInvokesEachSubscriberExactlyOnce(t *testing.T) {
	b := New(nil)

	counts := make([]int, 3)
	for i := 0; i < 3; i++ {
		i := i
		b.Subscribe("alert", func(payload any) { counts[i]++ })
	}

	b.Publish("alert", struct{}{})

	assert.Equal(t, []int{1, 1, 1}, counts)
}

func TestPublishToTopicWithoutSubscribers(t *testing.T) {
	b := New(nil)
	b.Publish("log", "nobody listening") // must not panic
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)

	var got int
	sub := b.Subscribe("log", func(payload any) { got++ })

	b.Publish("log", "one")
	b.Unsubscribe(sub)
	b.Publish("log", "two")

	assert.Equal(t, 1, got)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New(nil)

	sub := b.Subscribe("log", func(payload any) {})
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	b.Unsubscribe(Subscription{})

	assert.Equal(t, 0, b.SubscriberCount("log"))
}

func TestMidPublishRemovalOfLaterSubscriber(t *testing.T) {
	b := New(nil)

	var laterInvoked bool
	var later Subscription

	b.Subscribe("log", func(payload any) {
		b.Unsubscribe(later)
	})
	b.Subscribe("log", func(payload any) {})
	later = b.Subscribe("log", func(payload any) { laterInvoked = true })

	b.Publish("log", "line")

	assert.False(t, laterInvoked, "subscriber removed mid-publish must not be invoked")
	assert.Equal(t, 2, b.SubscriberCount("log"))
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	b := New(nil)

	var survived bool
	b.Subscribe("alert", func(payload any) { panic("boom") })
	b.Subscribe("alert", func(payload any) { survived = true })

	require.NotPanics(t, func() {
		b.Publish("alert", struct{}{})
	})
	assert.True(t, survived)
}

func TestSubscriberCountPerTopic(t *testing.T) {
	b := New(nil)

	s1 := b.Subscribe("log", func(payload any) {})
	b.Subscribe("log", func(payload any) {})
	b.Subscribe("alert", func(payload any) {})

	assert.Equal(t, 2, b.SubscriberCount("log"))
	assert.Equal(t, 1, b.SubscriberCount("alert"))

	b.Unsubscribe(s1)
	assert.Equal(t, 1, b.SubscriberCount("log"))
	assert.Equal(t, 0, b.SubscriberCount("missing"))
}
