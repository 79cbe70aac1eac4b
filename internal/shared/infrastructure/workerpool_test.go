package infrastructure

import (
	"errors"
	"sync/atomic"
	"testing"
)

// ========================================
// Tests fonctionnels
// ========================================

func TestWorkerPoolExecutesAllTasks(t *testing.T) {
	wp := NewWorkerPool(4)
	wp.Start()

	var counter int64
	for i := 0; i < 50; i++ {
		if err := wp.Submit(func() error {
			atomic.AddInt64(&counter, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wp.Wait()

	if got := atomic.LoadInt64(&counter); got != 50 {
		t.Errorf("tâches exécutées = %d, attendu 50", got)
	}
}

func TestWorkerPoolCollectErrors(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()

	wantErr := errors.New("task failed")
	_ = wp.Submit(func() error { return nil })
	_ = wp.Submit(func() error { return wantErr })
	_ = wp.Submit(func() error { return nil })
	wp.Wait()

	if err := wp.CollectErrors(); !errors.Is(err, wantErr) {
		t.Errorf("CollectErrors() = %v, attendu %v", err, wantErr)
	}
}

func TestWorkerPoolCollectErrorsEmpty(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()

	_ = wp.Submit(func() error { return nil })
	wp.Wait()

	if err := wp.CollectErrors(); err != nil {
		t.Errorf("CollectErrors() = %v, attendu nil", err)
	}
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()
	wp.Stop()

	if err := wp.Submit(func() error { return nil }); err == nil {
		t.Error("Submit après Stop devrait échouer")
	}
}

// ========================================
// Benchmarks: Worker Pool
// ========================================

// BenchmarkWorkerPool_4Workers_FastTasks teste avec 4 workers (défaut dans le projet)
func BenchmarkWorkerPool_4Workers_FastTasks(b *testing.B) {
	wp := NewWorkerPool(4)
	wp.Start()
	defer wp.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = wp.Submit(func() error {
			_ = 1 + 1
			return nil
		})
	}
}

// BenchmarkWorkerPool_8Workers_FastTasks teste avec 8 workers
func BenchmarkWorkerPool_8Workers_FastTasks(b *testing.B) {
	wp := NewWorkerPool(8)
	wp.Start()
	defer wp.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = wp.Submit(func() error {
			_ = 1 + 1
			return nil
		})
	}
}
