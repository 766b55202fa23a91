package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Decision is what a process function decided about an item.
type Decision int

const (
	// DecisionSuccess is returned by a process function when an item was
	// processed.
	DecisionSuccess Decision = 1

	// DecisionSkipped is returned by a process function when an item was
	// skipped.
	DecisionSkipped Decision = 0

	// DecisionRequeue is returned by a process function when an item needs
	// to be processed again later.
	DecisionRequeue Decision = -1
)

// GenericQueue is a thread-safe queue of comparable items which tracks
// which items succeeded, were skipped or are in progress.
type GenericQueue[T comparable] struct {
	sync.RWMutex

	hasStarted  bool
	hasFinished bool
	startTime   time.Time
	finishTime  time.Time

	head       int
	items      []T
	success    []T
	skipped    []T
	inProgress map[T]struct{}
}

// NewGenericQueue returns a pointer to a new [GenericQueue].
func NewGenericQueue[T comparable]() *GenericQueue[T] {
	return &GenericQueue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// HasRemainingItems returns whether the queue has items left to dequeue.
func (q *GenericQueue[T]) HasRemainingItems() bool {
	q.RLock()
	defer q.RUnlock()

	return q.head < len(q.items)
}

// GetSuccessful returns a copy of the successfully processed items.
func (q *GenericQueue[T]) GetSuccessful() []T {
	q.RLock()
	defer q.RUnlock()

	return append([]T(nil), q.success...)
}

// GetSkipped returns a copy of the skipped items.
func (q *GenericQueue[T]) GetSkipped() []T {
	q.RLock()
	defer q.RUnlock()

	return append([]T(nil), q.skipped...)
}

// Enqueue adds items to the queue. A finished queue is reopened.
func (q *GenericQueue[T]) Enqueue(items ...T) {
	q.Lock()
	defer q.Unlock()

	if q.hasFinished {
		q.finishTime = time.Time{}
		q.hasFinished = false
	}

	for _, item := range items {
		delete(q.inProgress, item)
		q.items = append(q.items, item)
	}
}

// Dequeue returns the item at the head of the queue and advances the head.
func (q *GenericQueue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.Lock()
	defer q.Unlock()

	if q.head >= len(q.items) {
		var zero T

		return zero, false
	}

	now := time.Now()
	if !q.hasStarted {
		q.startTime = now
		q.hasStarted = true
	}
	if q.head == len(q.items)-1 && !q.hasFinished {
		q.finishTime = now
		q.hasFinished = true
	}

	item := q.items[q.head]
	q.head++

	return item, true
}

// SetSuccess marks in-progress items as successfully processed.
func (q *GenericQueue[T]) SetSuccess(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}
}

// SetSkipped marks in-progress items as skipped.
func (q *GenericQueue[T]) SetSkipped(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}
}

// SetProcessing marks items as in progress.
func (q *GenericQueue[T]) SetProcessing(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// Progress returns the [Progress] of the queue.
func (q *GenericQueue[T]) Progress() Progress {
	q.RLock()
	defer q.RUnlock()

	p := Progress{
		HasStarted:      q.hasStarted,
		HasFinished:     q.hasFinished,
		StartTime:       q.startTime,
		FinishTime:      q.finishTime,
		TotalItems:      len(q.items),
		ProcessedItems:  len(q.success) + len(q.skipped),
		InProgressItems: len(q.inProgress),
		SuccessItems:    len(q.success),
		SkippedItems:    len(q.skipped),
	}
	p.estimate()

	return p
}

func (q *GenericQueue[T]) decide(item T, d Decision) {
	switch d {
	case DecisionRequeue:
		q.Enqueue(item)
	case DecisionSkipped:
		q.SetSkipped(item)
	case DecisionSuccess:
		q.SetSuccess(item)
	}
}

// DequeueAndProcess sequentially dequeues and processes items with
// processFunc until the queue is drained. An error is only returned when
// the context is canceled.
func (q *GenericQueue[T]) DequeueAndProcess(ctx context.Context, processFunc func(T) Decision) error {
	for ctx.Err() == nil {
		item, ok := q.Dequeue()
		if !ok {
			return nil
		}

		q.SetProcessing(item)
		q.decide(item, processFunc(item))
	}

	return fmt.Errorf("(queue-proc) %w", ctx.Err())
}

// DequeueAndProcessConc dequeues and processes items with up to maxWorkers
// concurrent calls of processFunc, until the queue is drained. Each call is
// told the index of its worker, in [0, maxWorkers), and no two concurrent
// calls share an index. An error is only returned when the context is
// canceled.
//
// The queue is only thread-safe for itself, processFunc must guard anything
// it shares between workers.
func (q *GenericQueue[T]) DequeueAndProcessConc(ctx context.Context, maxWorkers int, processFunc func(worker int, item T) Decision) error {
	maxWorkers = max(maxWorkers, 1)

	workers := make(chan int, maxWorkers)
	for i := range maxWorkers {
		workers <- i
	}

	var wg sync.WaitGroup

	for {
		for {
			var worker int
			select {
			case <-ctx.Done():
				wg.Wait()

				return fmt.Errorf("(queue-concproc) %w", ctx.Err())
			case worker = <-workers:
			}

			item, ok := q.Dequeue()
			if !ok {
				workers <- worker

				break
			}

			q.SetProcessing(item)

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { workers <- worker }()

				q.decide(item, processFunc(worker, item))
			}()
		}

		wg.Wait()

		if ctx.Err() != nil {
			return fmt.Errorf("(queue-concproc) %w", ctx.Err())
		}

		// Items requeued after all workers left need another round.
		if !q.HasRemainingItems() {
			return nil
		}
	}
}
