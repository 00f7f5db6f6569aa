package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_NotifyInRegistrationOrder(t *testing.T) {
	var s Subject[int]
	var calls []string

	s.Subscribe(func(v int) { calls = append(calls, "first") })
	s.Subscribe(func(v int) { calls = append(calls, "second") })
	s.Subscribe(func(v int) { calls = append(calls, "third") })

	s.Notify(1)

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestSubject_UnsubscribeRemovesOnlyThatListener(t *testing.T) {
	var s Subject[string]
	var got []string

	listener := func(v string) { got = append(got, v) }
	unsubA := s.Subscribe(listener)
	s.Subscribe(listener)

	unsubA()
	unsubA() // повторная отписка ничего не ломает

	s.Notify("x")
	assert.Equal(t, []string{"x"}, got)
	assert.Equal(t, 1, s.Len())
}

func TestSubject_UnsubscribeFromCallback(t *testing.T) {
	var s Subject[int]
	count := 0
	var unsub func()
	unsub = s.Subscribe(func(int) {
		count++
		unsub()
	})

	s.Notify(1)
	s.Notify(2)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, s.Len())
}
