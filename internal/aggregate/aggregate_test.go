package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

var testTenant = model.TenantConfig{
	TagKey:      "sou_eu",
	ERVVariable: "ERV",
	FunnelTags:  []string{"nao_conheco", "sou_eu", "bloquear"},
}

func agent() *string {
	id := "agent-1"
	return &id
}

// conv builds a conversation whose value lives under live_instructions.
func conv(messages int, erv string, human bool, tags ...string) model.Conversation {
	c := model.Conversation{
		MessageCount: messages,
		Context: map[string]any{
			"live_instructions": map[string]any{"ERV": erv},
		},
	}
	if len(tags) > 0 {
		anyTags := make([]any, len(tags))
		for i, tag := range tags {
			anyTags[i] = tag
		}
		c.Context["tags"] = anyTags
	}
	if human {
		c.AssigneeAgentID = agent()
	}
	return c
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil, testTenant)

	for name, b := range groupBuckets(report.Interactions.BucketGroup) {
		assert.Zero(t, b.Count, name)
		assert.Zero(t, b.AvgValue, name)
		assert.Zero(t, b.HumanAttendancePercentage, name)
	}
	require.NotNil(t, report.Interactions.Linear)
	assert.Empty(t, report.Interactions.Linear)
	require.NotNil(t, report.TagKeyLinear)
	assert.Empty(t, report.TagKeyLinear)

	require.Len(t, report.TagPresence, 4)
	for _, p := range report.TagPresence {
		assert.Zero(t, p.Count)
		assert.Zero(t, p.Percentage)
	}
	require.Len(t, report.Tags, 3)
}

func TestAggregate_ThresholdsAreStrict(t *testing.T) {
	convs := []model.Conversation{
		conv(3, "0", false),
		conv(5, "0", false),
		conv(7, "0", false),
		conv(10, "0", false),
	}
	report := Aggregate(convs, testTenant)

	ia := report.Interactions
	assert.Equal(t, 4, ia.Total.Count)
	assert.Equal(t, 3, ia.MoreThan3.Count)
	assert.Equal(t, 2, ia.MoreThan5.Count)
	assert.Equal(t, 1, ia.MoreThan7.Count)
	assert.Equal(t, 0, ia.MoreThan10.Count)
}

func TestAggregate_BucketValues(t *testing.T) {
	convs := []model.Conversation{
		conv(2, "R$ 100,00", true, "sou_eu"),
		conv(4, "R$ 200,00", false, "sou_eu", "bloquear"),
		conv(12, "R$ 1.000,00", true, "nao_conheco"),
		conv(6, "lixo", false),
	}
	report := Aggregate(convs, testTenant)

	total := report.Interactions.Total
	assert.Equal(t, 4, total.Count)
	assert.InDelta(t, 1300.0, total.TotalValue, 1e-9)
	assert.InDelta(t, 325.0, total.AvgValue, 1e-9)
	assert.Equal(t, 2, total.HumanAttendance)
	assert.InDelta(t, 50.0, total.HumanAttendancePercentage, 1e-9)

	mt3 := report.Interactions.MoreThan3
	assert.Equal(t, 3, mt3.Count)
	assert.InDelta(t, 1200.0, mt3.TotalValue, 1e-9)
	assert.InDelta(t, 400.0, mt3.AvgValue, 1e-9)
	assert.Equal(t, 1, mt3.HumanAttendance)

	mt10 := report.Interactions.MoreThan10
	assert.Equal(t, 1, mt10.Count)
	assert.InDelta(t, 100.0, mt10.HumanAttendancePercentage, 1e-9)

	require.Len(t, report.Tags, 3)
	assert.Equal(t, "nao_conheco", report.Tags[0].Tag)
	assert.Equal(t, "sou_eu", report.Tags[1].Tag)
	assert.Equal(t, "bloquear", report.Tags[2].Tag)

	souEu := report.Tags[1].Buckets
	assert.Equal(t, 2, souEu.Total.Count)
	assert.InDelta(t, 300.0, souEu.Total.TotalValue, 1e-9)
	assert.Equal(t, 1, souEu.MoreThan3.Count)
	assert.Equal(t, 0, souEu.MoreThan5.Count)
}

func TestAggregate_TagPresence(t *testing.T) {
	convs := []model.Conversation{
		conv(1, "10", false, "sou_eu", "bloquear"),
		conv(1, "20", false, "sou_eu"),
		conv(1, "30", false, "outra"),
		conv(1, "40", false),
	}
	report := Aggregate(convs, testTenant)

	got := map[string]TagPresence{}
	for _, p := range report.TagPresence {
		got[p.Tag] = p
	}
	assert.Equal(t, 2, got["sou_eu"].Count)
	assert.InDelta(t, 50.0, got["sou_eu"].Percentage, 1e-9)
	assert.InDelta(t, 15.0, got["sou_eu"].AvgValue, 1e-9)

	// A record carrying two funnel tags counts toward both.
	assert.Equal(t, 1, got["bloquear"].Count)
	assert.Equal(t, 0, got["nao_conheco"].Count)

	// Non-funnel tags count as no tags.
	assert.Equal(t, 2, got[model.NoTagsLabel].Count)
	assert.InDelta(t, 70.0, got[model.NoTagsLabel].TotalValue, 1e-9)

	assert.Equal(t, model.NoTagsLabel, report.TagPresence[len(report.TagPresence)-1].Tag)
}

func TestAggregate_RepeatedTagsCountPerOccurrence(t *testing.T) {
	convs := []model.Conversation{
		conv(5, "10", false, "sou_eu", "sou_eu", "bloquear"),
	}
	report := Aggregate(convs, testTenant)

	assert.Equal(t, 2, report.Tags[1].Buckets.Total.Count)
	assert.Equal(t, 2, report.Tags[1].Buckets.MoreThan3.Count)
	assert.InDelta(t, 20.0, report.Tags[1].Buckets.Total.TotalValue, 1e-9)
	assert.Equal(t, 2, report.TagPresence[1].Count)
	assert.Equal(t, 1, report.TagPresence[2].Count)
	assert.Equal(t, 0, report.TagPresence[3].Count, "no_tags")

	require.NotEmpty(t, report.TagKeyLinear)
	assert.Equal(t, 1, report.TagKeyLinear[0].Count)
	assert.Equal(t, 1, report.Interactions.Total.Count)
}

func TestAggregate_LinearFunnel(t *testing.T) {
	var convs []model.Conversation
	for _, n := range []int{1, 4, 4, 9, 22} {
		convs = append(convs, conv(n, "10", n == 9))
	}

	tally := Fold(convs, testTenant)

	var hist []string
	for _, e := range tally.Histogram.Entries() {
		hist = append(hist, e.Label)
	}
	assert.Equal(t, []string{"1", "4", "9", "21+"}, hist)
	assert.Equal(t, 2, tally.Histogram[4].Count)
	assert.Equal(t, 1, tally.Histogram[OpenEndedCount].Count)

	linear := Finalize(tally).Interactions.Linear
	byN := map[int]LinearPoint{}
	for _, p := range linear {
		byN[p.Interactions] = p
	}

	assert.Equal(t, 5, byN[0].Count)
	assert.InDelta(t, 50.0, byN[0].TotalValue, 1e-9)
	assert.Equal(t, 1, byN[0].HumanAttendance)
	assert.Equal(t, 4, byN[1].Count)
	assert.Equal(t, 2, byN[4].Count)
	assert.Equal(t, 1, byN[9].Count)
	assert.Equal(t, 1, byN[20].Count)
	assert.Equal(t, "20", byN[20].Label)

	last := linear[len(linear)-1]
	assert.Equal(t, 20, last.Interactions)
	_, ok := byN[21]
	assert.False(t, ok, "no point is emitted once the curve empties")

	// Dense from 0 to 20.
	assert.Len(t, linear, 21)
	for i := 1; i < len(linear); i++ {
		assert.LessOrEqual(t, linear[i].Count, linear[i-1].Count)
	}
}

func TestAggregate_TagKeyLinear(t *testing.T) {
	convs := []model.Conversation{
		conv(2, "10", false, "sou_eu"),
		conv(6, "20", true, "sou_eu", "bloquear"),
		conv(9, "30", false, "bloquear"),
	}
	report := Aggregate(convs, testTenant)

	want := []LinearPoint{
		{Interactions: 0, Label: "0", Count: 2, TotalValue: 30, AvgValue: 15, HumanAttendance: 1},
		{Interactions: 1, Label: "1", Count: 2, TotalValue: 30, AvgValue: 15, HumanAttendance: 1},
		{Interactions: 2, Label: "2", Count: 1, TotalValue: 20, AvgValue: 20, HumanAttendance: 1},
		{Interactions: 3, Label: "3", Count: 1, TotalValue: 20, AvgValue: 20, HumanAttendance: 1},
		{Interactions: 4, Label: "4", Count: 1, TotalValue: 20, AvgValue: 20, HumanAttendance: 1},
		{Interactions: 5, Label: "5", Count: 1, TotalValue: 20, AvgValue: 20, HumanAttendance: 1},
	}
	if diff := cmp.Diff(want, report.TagKeyLinear); diff != "" {
		t.Errorf("tag key linear mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_NestedValue(t *testing.T) {
	tenant := testTenant
	tenant.ValueNested = true
	convs := []model.Conversation{
		{MessageCount: 1, Context: map[string]any{"ERV": "R$ 1.234,56"}},
		{MessageCount: 1, Context: map[string]any{"live_instructions": map[string]any{"ERV": "R$ 99,00"}}},
	}
	report := Aggregate(convs, tenant)
	assert.InDelta(t, 1234.56, report.Interactions.Total.TotalValue, 1e-9)
}

func TestAggregate_Invariants(t *testing.T) {
	var convs []model.Conversation
	tagSets := [][]string{nil, {"sou_eu"}, {"bloquear", "sou_eu"}, {"nao_conheco"}, {"x"}}
	for i := 0; i < 200; i++ {
		convs = append(convs, conv((i*7)%30+1, "R$ 12,34", i%3 == 0, tagSets[i%len(tagSets)]...))
	}
	report := Aggregate(convs, testTenant)

	checkGroup := func(name string, g BucketGroup) {
		counts := []int{g.Total.Count, g.MoreThan3.Count, g.MoreThan5.Count, g.MoreThan7.Count, g.MoreThan10.Count}
		for i := 1; i < len(counts); i++ {
			assert.LessOrEqual(t, counts[i], counts[i-1], "%s: nesting at %d", name, i)
		}
		for bucket, b := range groupBuckets(g) {
			assert.LessOrEqual(t, b.HumanAttendance, b.Count, "%s/%s", name, bucket)
			assert.GreaterOrEqual(t, b.HumanAttendancePercentage, 0.0)
			assert.LessOrEqual(t, b.HumanAttendancePercentage, 100.0)
		}
	}
	checkGroup("population", report.Interactions.BucketGroup)
	for _, tb := range report.Tags {
		checkGroup(tb.Tag, tb.Buckets)
	}

	assert.Equal(t, report.Interactions.Total.Count, report.Interactions.Linear[0].Count)
}

func TestFinalize_Idempotent(t *testing.T) {
	convs := []model.Conversation{
		conv(2, "R$ 100,33", true, "sou_eu"),
		conv(14, "R$ 7,01", false, "bloquear"),
		conv(30, "R$ 1.000,00", true),
	}
	tally := Fold(convs, testTenant)

	first := Finalize(tally)
	second := Finalize(tally)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("finalize is not idempotent (-first +second):\n%s", diff)
	}
}

func TestAggregate_NegativeMessageCount(t *testing.T) {
	report := Aggregate([]model.Conversation{conv(-4, "1", false)}, testTenant)
	assert.Equal(t, 1, report.Interactions.Total.Count)
	assert.Equal(t, 0, report.Interactions.MoreThan3.Count)
	assert.Empty(t, report.Interactions.Linear)
}

func groupBuckets(g BucketGroup) map[string]BucketStats {
	return map[string]BucketStats{
		"total":        g.Total,
		"more_than_3":  g.MoreThan3,
		"more_than_5":  g.MoreThan5,
		"more_than_7":  g.MoreThan7,
		"more_than_10": g.MoreThan10,
	}
}

func TestBuckets_FollowThresholds(t *testing.T) {
	for i, threshold := range Thresholds {
		var g Buckets
		g = g.Add(threshold, decimal.NewFromInt(1), false)
		g = g.Add(threshold+1, decimal.NewFromInt(1), false)

		assert.Equal(t, 2, g.Total.Count)
		assert.Equal(t, 1, g.Above[i].Count, "more than %d", threshold)
		for j := i + 1; j < len(Thresholds); j++ {
			assert.Zero(t, g.Above[j].Count, "more than %d", Thresholds[j])
		}
	}
}
