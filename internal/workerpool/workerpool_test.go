package workerpool

import (
	"sync"
	"testing"
	"time"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(2)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(1, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted job never ran")
	}
}

func TestCancelQueuedJob(t *testing.T) {
	p := New(1)

	var mu sync.Mutex
	blocking := make(chan struct{})
	p.Submit(100, func() { <-blocking })

	ran := false
	p.Submit(1, func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})

	if !p.Cancel(1) {
		t.Fatal("Cancel should report true for a still-queued job")
	}
	close(blocking)
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	if ran {
		t.Fatal("cancelled job should never run")
	}
}

func TestCancelFinishedJob(t *testing.T) {
	p := New(1)

	started := make(chan struct{})
	finished := make(chan struct{})
	p.Submit(1, func() {
		close(started)
		close(finished)
	})
	<-started
	<-finished

	if p.Cancel(1) {
		t.Fatal("Cancel on a job that has already run should report false")
	}
	p.Close()
}

func TestJobsRunInOrderPerWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 1; i <= 3; i++ {
		i := i
		p.Submit(uint16(i), func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("order = %v, want [1 2 3]", order)
		}
	}
}
