package queue

import "time"

const (
	unitItems = "items/sec"
	unitBytes = "bytes/sec"
)

// Progress is a point in time snapshot of the advancement of a queue, or of
// all queues of a [Manager].
type Progress struct {
	HasStarted  bool
	HasFinished bool
	StartTime   time.Time
	FinishTime  time.Time

	ProgressPct     float64
	TotalItems      int
	ProcessedItems  int
	InProgressItems int
	SuccessItems    int
	SkippedItems    int

	// TotalBytes and TransferredBytes are only tracked by byte accounting
	// queues.
	TotalBytes       uint64
	TransferredBytes uint64

	ETA               time.Time
	TimeLeft          time.Duration
	TransferSpeed     float64
	TransferSpeedUnit string
}

// estimate fills in the percentage, rate and time left from the counters.
func (p *Progress) estimate() {
	p.ProcessedItems = min(p.ProcessedItems, p.TotalItems)
	p.TransferSpeedUnit = unitItems

	if p.TotalItems > 0 {
		p.ProgressPct = float64(p.ProcessedItems) / float64(p.TotalItems) * 100 //nolint:mnd
		p.ProgressPct = max(float64(0), min(p.ProgressPct, float64(100)))       //nolint:mnd
	}

	if !p.HasStarted || p.ProcessedItems == 0 || p.ProcessedItems >= p.TotalItems {
		return
	}

	elapsed := max(time.Since(p.StartTime).Seconds(), 1)

	itemsPerSec := float64(p.ProcessedItems) / elapsed
	if itemsPerSec <= 0 {
		return
	}

	remaining := float64(p.TotalItems-p.ProcessedItems) / itemsPerSec
	p.TimeLeft = time.Duration(remaining * float64(time.Second))
	p.ETA = time.Now().Add(p.TimeLeft)
	p.TransferSpeed = itemsPerSec
}

// estimateBytes switches the rate and time left over to bytes where they
// are tracked.
func (p *Progress) estimateBytes() {
	if !p.HasStarted || p.TransferredBytes == 0 {
		return
	}

	elapsed := max(time.Since(p.StartTime).Seconds(), 1)

	bytesPerSec := float64(p.TransferredBytes) / elapsed
	if bytesPerSec <= 0 {
		return
	}

	p.TransferSpeed = bytesPerSec
	p.TransferSpeedUnit = unitBytes

	if p.TotalBytes > p.TransferredBytes {
		p.ProgressPct = min(float64(p.TransferredBytes)/float64(p.TotalBytes)*100, float64(100)) //nolint:mnd
		p.TimeLeft = time.Duration(float64(p.TotalBytes-p.TransferredBytes) / bytesPerSec * float64(time.Second))
		p.ETA = time.Now().Add(p.TimeLeft)
	}
}
