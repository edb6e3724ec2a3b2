package cli

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tiagoarodrigues55/moveo-report/internal/aggregate"
	"github.com/tiagoarodrigues55/moveo-report/internal/model"
	"github.com/tiagoarodrigues55/moveo-report/internal/service"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// formatBRL renders an amount the way Brazilian users read currency:
// R$ 1.234,56.
func formatBRL(v float64) string {
	if v < 0 && math.Round(v*100) != 0 {
		return "-" + formatBRL(-v)
	}
	return ptBR.Sprintf("R$ %.2f", math.Abs(v))
}

// formatPercent renders a 0-100 percentage with a decimal comma.
func formatPercent(p float64) string {
	return ptBR.Sprintf("%.2f%%", p)
}

var bucketLabels = []string{"Total", "More than 3", "More than 5", "More than 7", "More than 10"}

func groupStats(g aggregate.BucketGroup) []aggregate.BucketStats {
	return []aggregate.BucketStats{g.Total, g.MoreThan3, g.MoreThan5, g.MoreThan7, g.MoreThan10}
}

// printSummary writes a plain text rendition of a report. convs are the
// records the report was built from.
func printSummary(w io.Writer, r *service.ConversationReport, convs []model.Conversation) {
	fmt.Fprintf(w, "Account: %s (%s)\n", r.Config.DisplayName, r.AccountSlug)
	fmt.Fprintf(w, "Period: %s\n", r.Period)
	fmt.Fprintf(w, "Total conversations: %d\n", r.Total)

	if r.Total == 0 {
		fmt.Fprintln(w, "No conversations found to analyze.")
		return
	}

	total := r.Stats.Interactions.Total.Count
	responded := aggregate.WithResponse(convs)
	fmt.Fprintf(w, "With response (>1 message): %d (%s)\n", responded, formatPercent(share(responded, total)))

	fmt.Fprintln(w, "\n--- Interactions ---")
	for i, s := range groupStats(r.Stats.Interactions.BucketGroup) {
		printBucket(w, bucketLabels[i], s, total)
	}

	fmt.Fprintf(w, "\n--- Funnel (%s) ---\n", r.Config.TagKey)
	for _, p := range r.Stats.TagKeyLinear {
		fmt.Fprintf(w, "> %s interactions: %d  total %s  avg %s\n",
			p.Label, p.Count, formatBRL(p.TotalValue), formatBRL(p.AvgValue))
	}

	fmt.Fprintln(w, "\n--- Tags ---")
	for _, tb := range r.Stats.Tags {
		fmt.Fprintf(w, "Tag: %s\n", tb.Tag)
		for i, s := range groupStats(tb.Buckets) {
			printBucket(w, "  "+bucketLabels[i], s, tb.Buckets.Total.Count)
		}
	}

	fmt.Fprintln(w, "\n--- Tag Presence ---")
	for _, p := range r.Stats.TagPresence {
		fmt.Fprintf(w, "%s: %d (%s)  total %s  avg %s\n",
			p.Tag, p.Count, formatPercent(p.Percentage), formatBRL(p.TotalValue), formatBRL(p.AvgValue))
	}

	fmt.Fprintln(w, "\n--- Tag Volume ---")
	volume := aggregate.TagVolume(convs)
	if len(volume) == 0 {
		fmt.Fprintln(w, "No tags found.")
	}
	for _, tc := range volume {
		fmt.Fprintf(w, "%s: %d (%s)\n", tc.Tag, tc.Count, formatPercent(share(tc.Count, total)))
	}
}

func printBucket(w io.Writer, label string, s aggregate.BucketStats, population int) {
	fmt.Fprintf(w, "%s: %d (%s)  total %s  avg %s  human %d (%s)\n",
		label, s.Count, formatPercent(share(s.Count, population)), formatBRL(s.TotalValue), formatBRL(s.AvgValue),
		s.HumanAttendance, formatPercent(s.HumanAttendancePercentage))
}

func share(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
