package bulk

import "time"

const percentMultiplier = 100

// Progress tracks a bulk run. It is not safe for concurrent use; Runner
// serializes updates.
type Progress struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	BatchSize        int
	StartTime        time.Time
	LastUpdateTime   time.Time
}

// NewProgress creates a progress tracker.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	now := time.Now()
	return &Progress{
		TotalItems:     totalItems,
		TotalBatches:   totalBatches,
		BatchSize:      batchSize,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddProcessed records one finished batch of n items.
func (p *Progress) AddProcessed(n int) {
	p.ProcessedItems += n
	p.ProcessedBatches++
	p.LastUpdateTime = time.Now()
}

// PercentComplete returns the completion percentage (0-100).
func (p *Progress) PercentComplete() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	return float64(p.ProcessedItems) / float64(p.TotalItems) * percentMultiplier
}

// IsComplete reports whether every item was processed.
func (p *Progress) IsComplete() bool {
	return p.ProcessedItems >= p.TotalItems
}

// Snapshot returns an immutable copy.
func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		TotalItems:       p.TotalItems,
		ProcessedItems:   p.ProcessedItems,
		TotalBatches:     p.TotalBatches,
		ProcessedBatches: p.ProcessedBatches,
		PercentComplete:  p.PercentComplete(),
		Elapsed:          time.Since(p.StartTime),
	}
}

// ProgressSnapshot is a point-in-time copy of Progress.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	PercentComplete  float64
	Elapsed          time.Duration
}
