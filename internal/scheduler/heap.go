// Package scheduler runs one-shot and recurring callbacks off a min-heap of
// due times.
package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a callback scheduled for future execution. Interval is zero for
// one-shot tasks.
type Task struct {
	ID       string
	DueAt    time.Time
	Interval time.Duration
	Callback func()
	index    int // index in the heap
}

// taskHeap is a min-heap of tasks ordered by DueAt
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].DueAt.Before(h[j].DueAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	task := x.(*Task)
	task.index = len(*h)
	*h = append(*h, task)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*h = old[:n-1]
	return task
}

// Scheduler dispatches due tasks to a fixed pool of workers
type Scheduler struct {
	heap     taskHeap
	mu       sync.Mutex
	wakeup   chan struct{}
	tasks    map[string]*Task
	due      chan func()
	workers  int
	workerWg sync.WaitGroup
	fired    uint64
	stopped  bool
	stopCh   chan struct{}
}

// New creates a scheduler with the given number of workers
func New(workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		heap:    make(taskHeap, 0),
		wakeup:  make(chan struct{}, 1),
		tasks:   make(map[string]*Task),
		due:     make(chan func(), workers*4),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
	heap.Init(&s.heap)
	return s
}

// Start starts the dispatch loop and the worker pool
func (s *Scheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.workerWg.Add(1)
		go s.worker()
	}
	go s.run()
}

// Stop stops dispatching and waits for running callbacks to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.workerWg.Wait()
}

// Schedule runs callback once at dueAt. An existing task with the same ID
// is replaced.
func (s *Scheduler) Schedule(id string, dueAt time.Time, callback func()) error {
	return s.add(&Task{ID: id, DueAt: dueAt, Callback: callback})
}

// Every runs callback every interval, first after one interval has elapsed.
// An existing task with the same ID is replaced.
func (s *Scheduler) Every(id string, interval time.Duration, callback func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	return s.add(&Task{ID: id, DueAt: time.Now().Add(interval), Interval: interval, Callback: callback})
}

func (s *Scheduler) add(task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	if existing, ok := s.tasks[task.ID]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.tasks, task.ID)
	}

	heap.Push(&s.heap, task)
	s.tasks[task.ID] = task

	if s.heap[0] == task {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a scheduled task. A callback already handed to a worker
// still runs.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return false
	}

	heap.Remove(&s.heap, task.index)
	delete(s.tasks, id)
	return true
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()

		if s.stopped {
			s.mu.Unlock()
			return
		}

		var wait time.Duration
		if s.heap.Len() == 0 {
			wait = 24 * time.Hour
		} else {
			next := s.heap[0]
			wait = time.Until(next.DueAt)

			if wait <= 0 {
				task := heap.Pop(&s.heap).(*Task)
				if task.Interval > 0 {
					task.DueAt = task.DueAt.Add(task.Interval)
					if task.DueAt.Before(time.Now()) {
						task.DueAt = time.Now().Add(task.Interval)
					}
					heap.Push(&s.heap, task)
				} else {
					delete(s.tasks, task.ID)
				}
				s.fired++
				s.mu.Unlock()

				select {
				case s.due <- task.Callback:
				case <-s.stopCh:
					return
				}
				continue
			}
		}

		s.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wakeup:
			timer.Stop()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) worker() {
	defer s.workerWg.Done()

	for {
		select {
		case fn := <-s.due:
			fn()
		case <-s.stopCh:
			return
		}
	}
}

// Stats returns statistics about the scheduler
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	recurring := 0
	for _, t := range s.tasks {
		if t.Interval > 0 {
			recurring++
		}
	}

	return Stats{
		ScheduledTasks: len(s.tasks),
		RecurringTasks: recurring,
		Fired:          s.fired,
		Workers:        s.workers,
	}
}

// Stats contains statistics about the scheduler
type Stats struct {
	ScheduledTasks int
	RecurringTasks int
	Fired          uint64
	Workers        int
}

var (
	ErrSchedulerStopped = &SchedulerError{"scheduler is stopped"}
	ErrInvalidInterval  = &SchedulerError{"interval must be positive"}
)

// SchedulerError represents a scheduler error
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string {
	return e.msg
}
