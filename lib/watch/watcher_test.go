package watch

import (
	"testing"
	"time"
)

func TestNotifyWakesWaiter(t *testing.T) {
	w := New()
	ch := w.Add("k")

	done := make(chan bool, 1)
	go func() {
		done <- Wait(ch, 0)
	}()

	time.Sleep(10 * time.Millisecond)
	w.Notify("k")

	select {
	case ok := <-done:
		if !ok {
			t.Error("expected Wait to report success")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestWaitTimesOut(t *testing.T) {
	w := New()
	ch := w.Add("k")

	if ok := Wait(ch, 20*time.Millisecond); ok {
		t.Error("expected Wait to time out")
	}
}

func TestNotifyWakesAllWaiters(t *testing.T) {
	w := New()
	const n = 5
	chans := make([]<-chan struct{}, n)
	for i := range chans {
		chans[i] = w.Add("k")
	}

	w.Notify("k")

	for i, ch := range chans {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("waiter %d was not woken", i)
		}
	}
}

func TestNotifyWithoutWaitersIsNoop(t *testing.T) {
	w := New()
	w.Notify("missing") // must not panic
}
