package queue

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

// Manager buckets items into one [TransferQueue] per key. Queues are
// processed concurrently with each other, and the items of one queue by a
// bounded number of workers, so that the load on any one destination
// stays under control.
//
// The manager is thread-safe.
type Manager[K comparable, T comparable] struct {
	sync.RWMutex

	keyFunc  func(T) K
	sizeFunc func(T) uint64
	queues   map[K]*TransferQueue[T]
}

// NewManager returns a pointer to a new [Manager].
func NewManager[K comparable, T comparable](keyFunc func(T) K, sizeFunc func(T) uint64) *Manager[K, T] {
	return &Manager[K, T]{
		keyFunc:  keyFunc,
		sizeFunc: sizeFunc,
		queues:   make(map[K]*TransferQueue[T]),
	}
}

// Enqueue adds items to the queues of their keys, creating queues as
// needed.
func (m *Manager[K, T]) Enqueue(items ...T) {
	m.Lock()
	defer m.Unlock()

	for _, item := range items {
		key := m.keyFunc(item)

		q, exists := m.queues[key]
		if !exists {
			q = NewTransferQueue(m.sizeFunc)
			m.queues[key] = q
		}

		q.Enqueue(item)
	}
}

// GetQueues returns a copy of the map of all managed queues.
func (m *Manager[K, T]) GetQueues() map[K]*TransferQueue[T] {
	m.RLock()
	defer m.RUnlock()

	return maps.Clone(m.queues)
}

// GetSuccessful returns the successfully processed items of all queues.
func (m *Manager[K, T]) GetSuccessful() []T {
	var result []T
	for _, q := range m.GetQueues() {
		result = append(result, q.GetSuccessful()...)
	}

	return result
}

// GetSkipped returns the skipped items of all queues.
func (m *Manager[K, T]) GetSkipped() []T {
	var result []T
	for _, q := range m.GetQueues() {
		result = append(result, q.GetSkipped()...)
	}

	return result
}

// Process drains all queues, one goroutine per queue. Within a queue, up
// to workers items are processed at a time; a value below two processes
// them sequentially. The process function is handed the queue of the item,
// so that it can account transferred bytes, and the index of its worker
// within that queue. An error is only returned when the context is
// canceled.
func (m *Manager[K, T]) Process(ctx context.Context, workers int, processFunc func(q *TransferQueue[T], worker int, item T) Decision) error {
	var wg sync.WaitGroup

	queues := m.GetQueues()
	errs := make(chan error, len(queues))

	for _, q := range queues {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if workers < 2 { //nolint:mnd
				errs <- q.DequeueAndProcess(ctx, func(item T) Decision {
					return processFunc(q, 0, item)
				})

				return
			}

			errs <- q.DequeueAndProcessConc(ctx, workers, func(worker int, item T) Decision {
				return processFunc(q, worker, item)
			})
		}()
	}

	wg.Wait()
	close(errs)

	var joined error
	for err := range errs {
		joined = errors.Join(joined, err)
	}
	if joined != nil {
		return fmt.Errorf("(queue-manager) %w", joined)
	}

	return nil
}

// Progress returns the [Progress] over all queues.
func (m *Manager[K, T]) Progress() Progress {
	var total Progress

	queues := m.GetQueues()
	if len(queues) == 0 {
		return total
	}

	allFinished := true

	for _, q := range queues {
		p := q.Progress()

		if p.HasStarted {
			if total.StartTime.IsZero() || p.StartTime.Before(total.StartTime) {
				total.StartTime = p.StartTime
			}
			total.HasStarted = true
		}
		if p.FinishTime.After(total.FinishTime) {
			total.FinishTime = p.FinishTime
		}

		total.TotalItems += p.TotalItems
		total.ProcessedItems += p.ProcessedItems
		total.InProgressItems += p.InProgressItems
		total.SuccessItems += p.SuccessItems
		total.SkippedItems += p.SkippedItems
		total.TotalBytes += p.TotalBytes
		total.TransferredBytes += p.TransferredBytes

		allFinished = allFinished && p.ProcessedItems >= p.TotalItems
	}

	if total.HasStarted && allFinished && total.ProcessedItems > 0 {
		total.HasFinished = true
		if total.FinishTime.IsZero() {
			total.FinishTime = time.Now()
		}
	}

	total.estimate()
	total.estimateBytes()

	return total
}
