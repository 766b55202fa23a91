package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sized struct {
	name string
	size uint64
}

func sizeOf(s *sized) uint64 { return s.size }

// TestTransferQueue_Success tests the byte accounting of a queue.
func TestTransferQueue_Success(t *testing.T) {
	t.Parallel()

	a, b := &sized{"a", 100}, &sized{"b", 300}

	q := NewTransferQueue(sizeOf)
	q.Enqueue(a, b)

	item, ok := q.Dequeue()
	require.True(t, ok)
	q.SetProcessing(item)
	q.AddBytesTransferred(100)
	q.SetSuccess(item)

	p := q.Progress()
	assert.Equal(t, uint64(400), p.TotalBytes)
	assert.Equal(t, uint64(100), p.TransferredBytes)
	assert.Equal(t, uint64(100), q.BytesTransferred())
	assert.Equal(t, "bytes/sec", p.TransferSpeedUnit)
	assert.InDelta(t, 25.0, p.ProgressPct, 0.001)
	assert.Greater(t, p.TimeLeft, time.Duration(0))
}

// TestTransferQueue_Success_NoSizes tests a queue without a size function.
func TestTransferQueue_Success_NoSizes(t *testing.T) {
	t.Parallel()

	q := NewTransferQueue[string](nil)
	q.Enqueue("a")

	p := q.Progress()
	assert.Zero(t, p.TotalBytes)
	assert.Equal(t, "items/sec", p.TransferSpeedUnit)
}
