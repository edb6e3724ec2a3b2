package aggregate

import (
	"cmp"
	"slices"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

// TagCount is how often one tag occurs across a set of conversations.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagVolume counts every tag occurrence, funnel tag or not, most frequent
// first. Ties are ordered by tag.
func TagVolume(convs []model.Conversation) []TagCount {
	counts := make(map[string]int)
	for i := range convs {
		for _, tag := range convs[i].Tags() {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return out
}

// WithResponse counts conversations that got past the first message.
func WithResponse(convs []model.Conversation) int {
	n := 0
	for i := range convs {
		if convs[i].MessageCount > 1 {
			n++
		}
	}
	return n
}
