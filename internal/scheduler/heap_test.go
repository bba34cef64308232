package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_Schedule(t *testing.T) {
	s := New(2)
	s.Start()
	defer s.Stop()

	executed := false
	var mu sync.Mutex

	err := s.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		mu.Lock()
		executed = true
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	if !executed {
		t.Error("Task was not executed")
	}
	mu.Unlock()

	if stats := s.Stats(); stats.ScheduledTasks != 0 {
		t.Errorf("Expected one-shot task to be removed, got %d scheduled", stats.ScheduledTasks)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := New(2)
	s.Start()
	defer s.Stop()

	var executed atomic.Bool

	if err := s.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		executed.Store(true)
	}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if !s.Cancel("test1") {
		t.Error("Cancel returned false")
	}
	if s.Cancel("test1") {
		t.Error("Second cancel should return false")
	}

	time.Sleep(200 * time.Millisecond)

	if executed.Load() {
		t.Error("Task was executed despite being cancelled")
	}
}

func TestScheduler_MultipleTasksOrdering(t *testing.T) {
	s := New(1)
	s.Start()
	defer s.Stop()

	var results []int
	var mu sync.Mutex
	record := func(n int) func() {
		return func() {
			mu.Lock()
			results = append(results, n)
			mu.Unlock()
		}
	}

	// Schedule tasks in reverse order
	s.Schedule("task3", time.Now().Add(150*time.Millisecond), record(3))
	s.Schedule("task1", time.Now().Add(50*time.Millisecond), record(1))
	s.Schedule("task2", time.Now().Add(100*time.Millisecond), record(2))

	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0] != 1 || results[1] != 2 || results[2] != 3 {
		t.Errorf("Tasks executed in wrong order: %v", results)
	}
}

func TestScheduler_RescheduleExisting(t *testing.T) {
	s := New(2)
	s.Start()
	defer s.Stop()

	var count atomic.Int32

	s.Schedule("test1", time.Now().Add(100*time.Millisecond), func() { count.Add(1) })
	s.Schedule("test1", time.Now().Add(50*time.Millisecond), func() { count.Add(10) })

	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 10 {
		t.Errorf("Expected count=10 (only second task), got %d", got)
	}
}

func TestScheduler_Every(t *testing.T) {
	s := New(2)
	s.Start()
	defer s.Stop()

	var ticks atomic.Int32

	if err := s.Every("tick", 30*time.Millisecond, func() { ticks.Add(1) }); err != nil {
		t.Fatalf("Every failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if got := ticks.Load(); got < 3 {
		t.Errorf("Expected at least 3 ticks, got %d", got)
	}

	stats := s.Stats()
	if stats.RecurringTasks != 1 {
		t.Errorf("Expected 1 recurring task, got %d", stats.RecurringTasks)
	}

	s.Cancel("tick")
	time.Sleep(50 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(100 * time.Millisecond)

	if got := ticks.Load(); got != after {
		t.Errorf("Ticks continued after cancel: %d -> %d", after, got)
	}
}

func TestScheduler_EveryInvalidInterval(t *testing.T) {
	s := New(1)
	if err := s.Every("bad", 0, func() {}); err != ErrInvalidInterval {
		t.Errorf("Expected ErrInvalidInterval, got %v", err)
	}
}

func TestScheduler_ScheduleAfterStop(t *testing.T) {
	s := New(1)
	s.Start()
	s.Stop()

	if err := s.Schedule("late", time.Now(), func() {}); err != ErrSchedulerStopped {
		t.Errorf("Expected ErrSchedulerStopped, got %v", err)
	}
}

func TestScheduler_Stats(t *testing.T) {
	s := New(5)
	s.Start()
	defer s.Stop()

	s.Schedule("task1", time.Now().Add(1*time.Hour), func() {})
	s.Schedule("task2", time.Now().Add(2*time.Hour), func() {})
	s.Every("task3", time.Hour, func() {})

	stats := s.Stats()
	if stats.ScheduledTasks != 3 {
		t.Errorf("Expected 3 scheduled tasks, got %d", stats.ScheduledTasks)
	}
	if stats.Workers != 5 {
		t.Errorf("Expected 5 workers, got %d", stats.Workers)
	}
}
