package analysis

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// TimeHistogram counts anomalous transactions in equal-width time buckets
// spanning the dates of the whole transaction table.
type TimeHistogram struct {
	Start  time.Time
	End    time.Time
	Counts []int
}

// Width returns the duration covered by each bucket.
func (h *TimeHistogram) Width() time.Duration {
	if len(h.Counts) == 0 {
		return 0
	}
	return h.End.Sub(h.Start) / time.Duration(len(h.Counts))
}

// BucketStart returns the left edge of bucket i.
func (h *TimeHistogram) BucketStart(i int) time.Time {
	return h.Start.Add(time.Duration(i) * h.Width())
}

// Total returns the number of timestamps counted.
func (h *TimeHistogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// TemporalBuckets parses every transaction date and counts the anomalous
// ones into bucketCount buckets over [min, max] of all dates. The last bucket
// is closed on the right. When all dates are equal every timestamp lands in
// the first bucket.
func TemporalBuckets(t dataset.Transactions, a dataset.Anomalies, bucketCount int) (*TimeHistogram, error) {
	if bucketCount <= 0 {
		return nil, fmt.Errorf("temporal buckets: bucket count must be positive, got %d", bucketCount)
	}
	if err := t.Require(dataset.FieldDate); err != nil {
		return nil, fmt.Errorf("temporal buckets: %w", err)
	}
	if err := Align(t, a); err != nil {
		return nil, fmt.Errorf("temporal buckets: %w", err)
	}
	h := &TimeHistogram{Counts: make([]int, bucketCount)}
	if t.Len() == 0 {
		return h, nil
	}

	stamps := make([]time.Time, len(t.Rows))
	for i, tx := range t.Rows {
		ts, err := dataset.ParseDate(tx.Date)
		if err != nil {
			return nil, fmt.Errorf("temporal buckets: %w", &DateParseError{Row: i, Value: tx.Date, Err: err})
		}
		stamps[i] = ts
		if i == 0 || ts.Before(h.Start) {
			h.Start = ts
		}
		if i == 0 || ts.After(h.End) {
			h.End = ts
		}
	}

	span := float64(h.End.Sub(h.Start))
	for i, ts := range stamps {
		if !a.Rows[i].Flagged() {
			continue
		}
		idx := 0
		if span > 0 {
			idx = int(float64(ts.Sub(h.Start)) / span * float64(bucketCount))
			if idx >= bucketCount {
				idx = bucketCount - 1
			}
		}
		h.Counts[idx]++
	}
	return h, nil
}
