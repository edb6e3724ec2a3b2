// Package aggregate turns a tenant's conversation records into funnel and
// interaction statistics.
//
// Aggregation is a pure fold: Fold walks the records once into a Tally of raw
// buckets, and Finalize derives averages, percentages and the cumulative
// linear curves from it. Neither touches package state, so concurrent calls
// for different tenants need no coordination.
package aggregate

import (
	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

// Tally is the raw result of folding a set of conversations.
type Tally struct {
	Population      Buckets
	Histogram       Histogram
	TagKeyHistogram Histogram

	// FunnelTags, TagBuckets and Presence are parallel slices in the
	// tenant's display order.
	FunnelTags []string
	TagBuckets []Buckets
	Presence   []Bucket
	NoTags     Bucket
}

// Aggregate folds and finalizes conversations for one tenant.
func Aggregate(convs []model.Conversation, tenant model.TenantConfig) Report {
	return Finalize(Fold(convs, tenant))
}

// Fold accumulates conversations into a Tally in a single pass.
func Fold(convs []model.Conversation, tenant model.TenantConfig) Tally {
	f := newFolder(tenant)
	for i := range convs {
		f.add(&convs[i])
	}
	return f.tally
}

type folder struct {
	tenant model.TenantConfig
	index  map[string]int
	tally  Tally
}

func newFolder(tenant model.TenantConfig) *folder {
	f := &folder{
		tenant: tenant,
		index:  make(map[string]int, len(tenant.FunnelTags)),
	}
	for _, tag := range tenant.FunnelTags {
		if _, dup := f.index[tag]; dup {
			continue
		}
		f.index[tag] = len(f.tally.FunnelTags)
		f.tally.FunnelTags = append(f.tally.FunnelTags, tag)
	}
	f.tally.TagBuckets = make([]Buckets, len(f.tally.FunnelTags))
	f.tally.Presence = make([]Bucket, len(f.tally.FunnelTags))
	return f
}

func (f *folder) add(c *model.Conversation) {
	t := &f.tally
	value := ExtractValue(c, f.tenant)
	human := c.HasHumanAttendance()
	n := max(c.MessageCount, 0)

	t.Population = t.Population.Add(n, value, human)
	t.Histogram = t.Histogram.Add(n, value, human)

	// Funnel buckets count every occurrence of a tag; the tag-key funnel
	// takes the record once.
	matched, keyTag := false, false
	for _, tag := range c.Tags() {
		i, ok := f.index[tag]
		if !ok {
			continue
		}
		matched = true
		if tag == f.tenant.TagKey {
			keyTag = true
		}
		t.TagBuckets[i] = t.TagBuckets[i].Add(n, value, human)
		t.Presence[i] = t.Presence[i].Add(value, human)
	}

	if keyTag {
		t.TagKeyHistogram = t.TagKeyHistogram.Add(n, value, human)
	}
	if !matched {
		t.NoTags = t.NoTags.Add(value, human)
	}
}

// Finalize derives the reported statistics from a Tally. It does not modify
// the tally, so finalizing the same tally again yields an identical report.
func Finalize(t Tally) Report {
	population := t.Population.Total.Count

	presence := make([]TagPresence, 0, len(t.FunnelTags)+1)
	tags := make([]TagBuckets, 0, len(t.FunnelTags))
	for i, tag := range t.FunnelTags {
		presence = append(presence, tagPresence(tag, t.Presence[i], population))
		tags = append(tags, TagBuckets{Tag: tag, Buckets: t.TagBuckets[i].Stats()})
	}
	presence = append(presence, tagPresence(model.NoTagsLabel, t.NoTags, population))

	return Report{
		Interactions: Interactions{
			BucketGroup: t.Population.Stats(),
			Linear:      t.Histogram.Linear(),
		},
		TagKeyLinear: t.TagKeyHistogram.Linear(),
		TagPresence:  presence,
		Tags:         tags,
	}
}

func tagPresence(tag string, b Bucket, population int) TagPresence {
	return TagPresence{
		Tag:        tag,
		Count:      b.Count,
		TotalValue: b.TotalValue.InexactFloat64(),
		AvgValue:   b.AvgValue().InexactFloat64(),
		Percentage: percentage(b.Count, population),
	}
}
