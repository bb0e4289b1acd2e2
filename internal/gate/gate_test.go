package gate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1, -100} {
		if _, err := New(limit); err == nil {
			t.Errorf("expected error for limit=%d", limit)
		}
	}
}

func TestNeverExceedsLimit(t *testing.T) {
	const limit = 3
	const tasks = 40

	g, err := New(limit)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var active, peak int64
	var wg sync.WaitGroup

	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := g.Acquire()
			defer release()

			n := atomic.AddInt64(&active, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			if held := g.Held(); held > limit {
				t.Errorf("held count %d exceeds limit %d", held, limit)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&active, -1)
		}()
	}

	wg.Wait()

	if p := atomic.LoadInt64(&peak); p > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", p, limit)
	}
	if g.Held() != 0 {
		t.Errorf("expected 0 holders after all released, got %d", g.Held())
	}
}

func TestEventualAdmission(t *testing.T) {
	g, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	const waiters = 20
	done := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			release := g.Acquire()
			time.Sleep(time.Millisecond)
			release()
			done <- struct{}{}
		}()
	}

	timeout := time.After(5 * time.Second)
	for i := 0; i < waiters; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatalf("only %d of %d waiters admitted before timeout", i, waiters)
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	g, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	release := g.Acquire()
	release()
	release() // second call must not over-release

	if g.Held() != 0 {
		t.Errorf("expected 0 holders, got %d", g.Held())
	}

	// Capacity must still be exactly one.
	r2 := g.Acquire()
	if g.Held() != 1 {
		t.Errorf("expected 1 holder, got %d", g.Held())
	}
	r2()
}
