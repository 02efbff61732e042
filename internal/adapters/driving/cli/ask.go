package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Ask a question answered from the uploaded documents.

Without --session every question runs in a new session. Pass the session ID
printed by a previous answer (or by 'docpilot session create') to keep the
conversation going.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise the documents",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the documents",
	Long:  `Compare the documents visible to the session. At least two are needed.`,
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show statistics and suggestions for all documents",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

func init() {
	for _, c := range []*cobra.Command{askCmd, summaryCmd, compareCmd} {
		c.Flags().StringP("session", "s", "", "Session ID (default: new session)")
	}
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(insightsCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	sessionID, err := cmd.Flags().GetString("session")
	if err != nil {
		return fmt.Errorf("getting session flag: %w", err)
	}

	answer, err := copilotService.Ask(cmd.Context(), sessionID, strings.Join(args, " "))
	if err != nil {
		return commandError("ask failed", err)
	}
	return render(cmd, answer, func() { printAnswer(cmd, answer) })
}

func runSummary(cmd *cobra.Command, _ []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	sessionID, err := cmd.Flags().GetString("session")
	if err != nil {
		return fmt.Errorf("getting session flag: %w", err)
	}

	answer, err := copilotService.GetSummary(cmd.Context(), sessionID)
	if err != nil {
		return commandError("summary failed", err)
	}
	return render(cmd, answer, func() { printAnswer(cmd, answer) })
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	sessionID, err := cmd.Flags().GetString("session")
	if err != nil {
		return fmt.Errorf("getting session flag: %w", err)
	}

	report, err := copilotService.GetComparison(cmd.Context(), sessionID)
	if err != nil {
		return commandError("comparison failed", err)
	}
	return render(cmd, report, func() {
		if report.Answer != nil {
			printAnswer(cmd, report.Answer)
		}
		if s := report.Statistics; s != nil {
			cmd.Println()
			cmd.Printf("Statistics for %d documents\n", s.DocumentCount)
			cmd.Printf("  Total words: %d\n", s.Overall.TotalWords)
			cmd.Printf("  Average readability: %.1f\n", s.Overall.AvgReadability)
			for _, sim := range s.Similarities {
				cmd.Printf("  %s vs %s: %.0f%% shared vocabulary\n", sim.Doc1, sim.Doc2, sim.Score*100)
			}
			if len(s.CommonThemes) > 0 {
				cmd.Printf("  Common themes: %s\n", strings.Join(s.CommonThemes, ", "))
			}
		}
	})
}

func runInsights(cmd *cobra.Command, _ []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	insights, err := copilotService.GetInsights(cmd.Context())
	if err != nil {
		return commandError("insights failed", err)
	}
	return render(cmd, insights, func() {
		o := insights.Overview
		cmd.Printf("%d documents, %.2f MB (%s)\n", o.TotalDocuments, o.TotalSizeMB, strings.Join(o.FileTypes, ", "))
		printList(cmd, "Content", insights.ContentInsights)
		if insights.ReadabilityAssessment != "" {
			cmd.Println()
			cmd.Printf("Readability: %s\n", insights.ReadabilityAssessment)
		}
		printList(cmd, "Recommendations", insights.Recommendations)
		printList(cmd, "Suggestions", insights.ProcessingSuggestions)
	})
}

func printAnswer(cmd *cobra.Command, a *domain.Answer) {
	cmd.Println(a.Response)
	cmd.Println()
	if len(a.Sources) > 0 {
		cmd.Printf("Sources: %s\n", strings.Join(a.Sources, ", "))
	}
	cmd.Printf("Confidence: %.2f  Time: %.2fs  Session: %s\n", a.Confidence, a.ProcessingTime, a.SessionID)
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%s:\n", title)
	for _, item := range items {
		cmd.Printf("  - %s\n", item)
	}
}
