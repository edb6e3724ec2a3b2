package aggregate

// BucketStats is a finalized bucket. Averages and percentages are derived
// from Count, TotalValue and HumanAttendance.
type BucketStats struct {
	Count                     int     `json:"count"`
	TotalValue                float64 `json:"total_value"`
	AvgValue                  float64 `json:"avg_value"`
	HumanAttendance           int     `json:"human_attendance"`
	HumanAttendancePercentage float64 `json:"human_attendance_percentage"`
}

// BucketGroup is a finalized Buckets.
type BucketGroup struct {
	Total      BucketStats `json:"total"`
	MoreThan3  BucketStats `json:"more_than_3"`
	MoreThan5  BucketStats `json:"more_than_5"`
	MoreThan7  BucketStats `json:"more_than_7"`
	MoreThan10 BucketStats `json:"more_than_10"`
}

// LinearPoint is the population with strictly more than Interactions messages.
type LinearPoint struct {
	Interactions    int     `json:"interactions"`
	Label           string  `json:"label"`
	Count           int     `json:"count"`
	TotalValue      float64 `json:"total_value"`
	AvgValue        float64 `json:"avg_value"`
	HumanAttendance int     `json:"human_attendance"`
}

// TagPresence is the share of conversations carrying a funnel tag.
type TagPresence struct {
	Tag        string  `json:"tag"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
	AvgValue   float64 `json:"avg_value"`
	Percentage float64 `json:"percentage"`
}

// TagBuckets holds the standard buckets restricted to one funnel tag.
type TagBuckets struct {
	Tag     string      `json:"tag"`
	Buckets BucketGroup `json:"buckets"`
}

// Interactions is the population-wide funnel.
type Interactions struct {
	BucketGroup
	Linear []LinearPoint `json:"linear"`
}

// Report is the finalized statistics of one tenant's conversations.
type Report struct {
	Interactions Interactions  `json:"interactions"`
	TagKeyLinear []LinearPoint `json:"tag_key_linear"`
	TagPresence  []TagPresence `json:"tag_presence"`
	Tags         []TagBuckets  `json:"tags"`
}
