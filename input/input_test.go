package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDefaultsToReleased(t *testing.T) {
	s := NewState()
	for _, k := range Keys {
		assert.False(t, s.IsPressed(k), k)
	}
}

func TestStateIgnoresUnknownKeys(t *testing.T) {
	s := NewState()
	s.SetKey("jump", true)
	assert.False(t, s.IsPressed("jump"))

	s.SetKey(Left, true)
	assert.True(t, s.IsPressed(Left))
	s.SetKey(Left, false)
	assert.False(t, s.IsPressed(Left))
}

func TestQueueDrainsInOrder(t *testing.T) {
	q := NewQueue(4)
	require.True(t, q.Push(KeyCommand{Key: Forward, Pressed: true}))
	require.True(t, q.Push(ZoomCommand{Delta: 1}))
	require.True(t, q.Push(KeyCommand{Key: Forward, Pressed: false}))

	var got []Command
	n := q.Drain(func(c Command) { got = append(got, c) })

	assert.Equal(t, 3, n)
	assert.Equal(t, []Command{
		KeyCommand{Key: Forward, Pressed: true},
		ZoomCommand{Delta: 1},
		KeyCommand{Key: Forward, Pressed: false},
	}, got)
	assert.Zero(t, q.Len())
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(1)
	assert.True(t, q.Push(SelectCommand{Controller: 0, Pressed: true}))
	assert.False(t, q.Push(SelectCommand{Controller: 0, Pressed: false}))
	assert.Equal(t, 1, q.Len())
}

func TestQueueDrainLeavesLatePushes(t *testing.T) {
	q := NewQueue(4)
	q.Push(KeyCommand{Key: Back, Pressed: true})

	n := q.Drain(func(Command) {
		q.Push(KeyCommand{Key: Back, Pressed: false})
	})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, q.Len())
}

func TestBindingsKeepOrder(t *testing.T) {
	b, err := NewBindings(
		Binding{Code: 87, Label: "W", Key: Forward},
		Binding{Code: 83, Label: "S", Key: Back},
		Binding{Code: 265, Label: "Up", Key: SpeedUp},
	)
	require.NoError(t, err)

	k, ok := b.Lookup(83)
	require.True(t, ok)
	assert.Equal(t, Back, k)

	_, ok = b.Lookup(1)
	assert.False(t, ok)

	help := b.Help()
	require.Len(t, help, 3)
	assert.Contains(t, help[0], "W")
	assert.Contains(t, help[2], string(SpeedUp))
}

func TestBindingsRejectUnknownControl(t *testing.T) {
	_, err := NewBindings(Binding{Code: 32, Label: "Space", Key: "jump"})
	assert.Error(t, err)
}
