package chat

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// FormatInsights renders a corpus report as plain text for the transcript.
func FormatInsights(ins *domain.Insights) string {
	if ins == nil {
		return "No insights available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d documents, %.2f MB", ins.Overview.TotalDocuments, ins.Overview.TotalSizeMB)
	if len(ins.Overview.FileTypes) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ins.Overview.FileTypes, ", "))
	}
	b.WriteString("\n")

	writeBullets(&b, "Content", ins.ContentInsights)
	if ins.ReadabilityAssessment != "" {
		fmt.Fprintf(&b, "\nReadability: %s\n", ins.ReadabilityAssessment)
	}
	writeBullets(&b, "Recommendations", ins.Recommendations)
	writeBullets(&b, "Suggestions", ins.ProcessingSuggestions)

	return strings.TrimRight(b.String(), "\n")
}

// FormatComparison renders the statistical half of a comparison.
func FormatComparison(cmp *domain.CorpusComparison) string {
	if cmp == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for %d documents: %d words, average readability %.1f\n",
		cmp.DocumentCount, cmp.Overall.TotalWords, cmp.Overall.AvgReadability)

	for _, s := range cmp.Similarities {
		fmt.Fprintf(&b, "  %s vs %s: %.0f%% shared vocabulary\n", s.Doc1, s.Doc2, s.Score*100)
	}
	if len(cmp.CommonThemes) > 0 {
		fmt.Fprintf(&b, "Common themes: %s\n", strings.Join(cmp.CommonThemes, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeBullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
