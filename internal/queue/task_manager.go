package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a unit of work for a [TaskManager]. It should return early once
// its context is canceled.
type Task func(ctx context.Context) error

// TaskManager collects tasks for deferred execution.
type TaskManager struct {
	sync.Mutex
	tasks []Task
}

// NewTaskManager returns a pointer to a new [TaskManager].
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks: []Task{},
	}
}

// Add adds tasks to the [TaskManager].
func (t *TaskManager) Add(tasks ...Task) {
	t.Lock()
	defer t.Unlock()

	t.tasks = append(t.tasks, tasks...)
}

// Len returns the number of tasks added.
func (t *TaskManager) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.tasks)
}

// Launch runs the tasks sequentially in the order they were added. The
// errors of all tasks are joined. Tasks after a cancellation are not run,
// and the context error is joined in.
func (t *TaskManager) Launch(ctx context.Context) error {
	t.Lock()
	defer t.Unlock()

	var errs error

	for _, task := range t.tasks {
		if ctx.Err() != nil {
			break
		}

		errs = errors.Join(errs, task(ctx))
	}

	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	if errs != nil {
		return fmt.Errorf("(queue-tasker) %w", errs)
	}

	return nil
}

// LaunchConcAndWait runs the tasks with at most maxWorkers at a time and
// waits for all of them. Errors are joined as with [TaskManager.Launch].
//
// The [TaskManager] only guarantees thread-safety for itself, the tasks have
// to guard anything they share.
func (t *TaskManager) LaunchConcAndWait(ctx context.Context, maxWorkers int) error {
	t.Lock()
	defer t.Unlock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error

	semaphore := make(chan struct{}, max(maxWorkers, 1))

launch:
	for _, task := range t.tasks {
		select {
		case <-ctx.Done():
			break launch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := task(ctx); err != nil {
				mu.Lock()
				errs = errors.Join(errs, err)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	if errs != nil {
		return fmt.Errorf("(queue-tasker-conc) %w", errs)
	}

	return nil
}
