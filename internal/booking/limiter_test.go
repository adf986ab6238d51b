package booking

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestActorLimiter_SerializesSameActor(t *testing.T) {
	l := NewActorLimiter()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("teacher-1")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxInside)
	}
	if l.size() != 0 {
		t.Fatalf("limiter leaked %d entries", l.size())
	}
}

func TestActorLimiter_DifferentActorsDoNotBlock(t *testing.T) {
	l := NewActorLimiter()
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another actor blocked")
	}
}
