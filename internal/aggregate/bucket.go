package aggregate

import (
	"github.com/shopspring/decimal"
)

// Bucket accumulates conversations of one cohort. The zero value is an empty bucket.
type Bucket struct {
	Count           int
	TotalValue      decimal.Decimal
	HumanAttendance int
}

// Add returns b with one more conversation of the given value folded in.
func (b Bucket) Add(value decimal.Decimal, human bool) Bucket {
	b.Count++
	b.TotalValue = b.TotalValue.Add(value)
	if human {
		b.HumanAttendance++
	}
	return b
}

// Merge returns the sum of two buckets.
func (b Bucket) Merge(o Bucket) Bucket {
	b.Count += o.Count
	b.TotalValue = b.TotalValue.Add(o.TotalValue)
	b.HumanAttendance += o.HumanAttendance
	return b
}

// AvgValue is TotalValue/Count, or zero for an empty bucket.
func (b Bucket) AvgValue() decimal.Decimal {
	if b.Count == 0 {
		return decimal.Zero
	}
	return b.TotalValue.Div(decimal.NewFromInt(int64(b.Count)))
}

// HumanAttendancePercentage is the share of conversations with a human agent, in [0,100].
func (b Bucket) HumanAttendancePercentage() float64 {
	return percentage(b.HumanAttendance, b.Count)
}

// Stats finalizes the bucket into its reported form.
func (b Bucket) Stats() BucketStats {
	return BucketStats{
		Count:                     b.Count,
		TotalValue:                b.TotalValue.InexactFloat64(),
		AvgValue:                  b.AvgValue().InexactFloat64(),
		HumanAttendance:           b.HumanAttendance,
		HumanAttendancePercentage: b.HumanAttendancePercentage(),
	}
}

// Thresholds are the interaction counts of the named "more than N" buckets.
var Thresholds = [...]int{3, 5, 7, 10}

// Buckets is the standard group of one population: everything plus the
// nested "more than N interactions" cohorts. Above[i] holds conversations
// with strictly more than Thresholds[i] messages.
type Buckets struct {
	Total Bucket
	Above [len(Thresholds)]Bucket
}

// Add folds one conversation into every bucket whose threshold it exceeds.
func (g Buckets) Add(messageCount int, value decimal.Decimal, human bool) Buckets {
	g.Total = g.Total.Add(value, human)
	for i, threshold := range Thresholds {
		if messageCount > threshold {
			g.Above[i] = g.Above[i].Add(value, human)
		}
	}
	return g
}

// Stats finalizes every bucket of the group.
func (g Buckets) Stats() BucketGroup {
	return BucketGroup{
		Total:      g.Total.Stats(),
		MoreThan3:  g.Above[0].Stats(),
		MoreThan5:  g.Above[1].Stats(),
		MoreThan7:  g.Above[2].Stats(),
		MoreThan10: g.Above[3].Stats(),
	}
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
