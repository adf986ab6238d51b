package booking

import "sync"

// ActorLimiter — записи одного пользователя выполняются по очереди
// (двойной клик по Approve/Complete не пересекается).
type ActorLimiter struct {
	mu   sync.Mutex
	byID map[string]*actorLock
}

type actorLock struct {
	mu   sync.Mutex
	refs int
}

func NewActorLimiter() *ActorLimiter {
	return &ActorLimiter{byID: make(map[string]*actorLock)}
}

// Lock возвращает функцию освобождения. Неиспользуемые мьютексы удаляются.
func (l *ActorLimiter) Lock(actorID string) func() {
	l.mu.Lock()
	m, ok := l.byID[actorID]
	if !ok {
		m = &actorLock{}
		l.byID[actorID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.byID, actorID)
		}
		l.mu.Unlock()
	}
}

func (l *ActorLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
