package queue

// TransferQueue is a [GenericQueue] which also accounts for the bytes its
// items move. Items are expected to report their size through the sizeFunc
// given on construction.
type TransferQueue[T comparable] struct {
	*GenericQueue[T]

	sizeFunc         func(T) uint64
	totalBytes       uint64
	transferredBytes uint64
}

// NewTransferQueue returns a pointer to a new [TransferQueue].
func NewTransferQueue[T comparable](sizeFunc func(T) uint64) *TransferQueue[T] {
	return &TransferQueue[T]{
		GenericQueue: NewGenericQueue[T](),
		sizeFunc:     sizeFunc,
	}
}

// Enqueue adds items to the queue, accounting for their size.
func (q *TransferQueue[T]) Enqueue(items ...T) {
	var total uint64
	if q.sizeFunc != nil {
		for _, item := range items {
			total += q.sizeFunc(item)
		}
	}

	q.GenericQueue.Enqueue(items...)

	q.Lock()
	q.totalBytes += total
	q.Unlock()
}

// AddBytesTransferred adds to the bytes moved by the queue.
func (q *TransferQueue[T]) AddBytesTransferred(n uint64) {
	q.Lock()
	defer q.Unlock()

	q.transferredBytes += n
}

// BytesTransferred returns the bytes moved by the queue.
func (q *TransferQueue[T]) BytesTransferred() uint64 {
	q.RLock()
	defer q.RUnlock()

	return q.transferredBytes
}

// Progress returns the [Progress] of the queue, with the rate in bytes.
func (q *TransferQueue[T]) Progress() Progress {
	p := q.GenericQueue.Progress()

	q.RLock()
	p.TotalBytes, p.TransferredBytes = q.totalBytes, q.transferredBytes
	q.RUnlock()

	p.estimateBytes()

	return p
}
