package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	bus := New[string](4)
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	n, err := bus.Publish("dark")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "dark", <-a)
	assert.Equal(t, "dark", <-b)
}

func TestSlowSubscriberKeepsNewestEvents(t *testing.T) {
	bus := New[int](2)
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 1; i <= 5; i++ {
		_, err := bus.Publish(i)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, <-ch)
	assert.Equal(t, 5, <-ch)
}

func TestCancelClosesChannel(t *testing.T) {
	bus := New[int](1)
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestCloseRejectsPublish(t *testing.T) {
	bus := New[int](1)
	ch, cancel := bus.Subscribe()
	bus.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	_, err := bus.Publish(1)
	assert.ErrorIs(t, err, ErrClosed)

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
