package aggregate

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// OpenEndedCount is the histogram key shared by every conversation with more
// than OpenEndedCount-1 messages.
const OpenEndedCount = 21

// Histogram accumulates conversations by exact message count. Index i holds
// conversations with i messages; the last index is the open-ended "21+" bin.
type Histogram [OpenEndedCount + 1]Bucket

// HistogramKey returns the histogram index for a message count.
func HistogramKey(messageCount int) int {
	return min(max(messageCount, 0), OpenEndedCount)
}

// HistogramLabel returns the display label of a histogram index.
func HistogramLabel(key int) string {
	if key >= OpenEndedCount {
		return strconv.Itoa(OpenEndedCount) + "+"
	}
	return strconv.Itoa(key)
}

// Add folds one conversation into the bin of its message count.
func (h Histogram) Add(messageCount int, value decimal.Decimal, human bool) Histogram {
	k := HistogramKey(messageCount)
	h[k] = h[k].Add(value, human)
	return h
}

// HistogramEntry is one non-empty histogram bin.
type HistogramEntry struct {
	Key    int
	Label  string
	Bucket Bucket
}

// Entries lists the non-empty bins in ascending key order.
func (h Histogram) Entries() []HistogramEntry {
	var out []HistogramEntry
	for k, b := range h {
		if b.Count == 0 {
			continue
		}
		out = append(out, HistogramEntry{Key: k, Label: HistogramLabel(k), Bucket: b})
	}
	return out
}

// Linear derives the cumulative "more than N interactions" curve.
//
// For every N from 0 to the highest populated key, the point sums all bins
// whose key is strictly greater than N. Points with no conversations are
// omitted, so the curve ends once it empties.
func (h Histogram) Linear() []LinearPoint {
	entries := h.Entries()
	points := make([]LinearPoint, 0)
	if len(entries) == 0 {
		return points
	}

	maxKey := entries[len(entries)-1].Key
	for n := 0; n <= maxKey; n++ {
		var sum Bucket
		for _, e := range entries {
			if e.Key > n {
				sum = sum.Merge(e.Bucket)
			}
		}
		if sum.Count == 0 {
			continue
		}
		points = append(points, LinearPoint{
			Interactions:    n,
			Label:           strconv.Itoa(n),
			Count:           sum.Count,
			TotalValue:      sum.TotalValue.InexactFloat64(),
			AvgValue:        sum.AvgValue().InexactFloat64(),
			HumanAttendance: sum.HumanAttendance,
		})
	}
	return points
}
