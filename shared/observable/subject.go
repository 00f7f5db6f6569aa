// Package observable - типизированный список подписчиков на изменения состояния.
package observable

import "sync"

// Listener получает новое значение наблюдаемого состояния.
type Listener[T any] func(T)

// Subject хранит подписчиков и вызывает их синхронно, в порядке подписки.
// Нулевое значение готово к использованию.
type Subject[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// Subscribe регистрирует подписчика. Возвращаемая функция снимает именно эту подписку;
// повторный вызов ничего не делает.
func (s *Subject[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Notify вызывает всех подписчиков по порядку и возвращается после последнего.
// Снимок списка берется до вызова, поэтому подписчик может безопасно отписаться из колбэка.
func (s *Subject[T]) Notify(value T) {
	s.mu.Lock()
	snapshot := make([]subscription[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(value)
	}
}

// Len возвращает число активных подписчиков.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
