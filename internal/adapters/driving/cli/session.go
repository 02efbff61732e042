package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// turnView is the serialised form of a conversation turn.
type turnView struct {
	Role      string   `json:"role" yaml:"role"`
	Content   string   `json:"content" yaml:"content"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	Sources   []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage conversation sessions",
	Long: `Sessions hold a conversation and an optional document scope. Sessions
expire after the configured session.ttl of inactivity.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new session",
	Args:  cobra.NoArgs,
	RunE:  runSessionCreate,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Describe a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Print a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionHistory,
}

var sessionScopeCmd = &cobra.Command{
	Use:   "scope [session-id] [document-id]...",
	Short: "Restrict a session to some documents",
	Long: `Restrict a session to the given documents. With no document IDs (or with
--all) the session sees every uploaded document again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSessionScope,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Clear a session's conversation, keeping its scope",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionClear,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Close a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionScopeCmd.Flags().Bool("all", false, "Remove the scope")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionScopeCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCreate(cmd *cobra.Command, _ []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	info, err := sessionService.Create(cmd.Context())
	if err != nil {
		return commandError("failed to create session", err)
	}
	return render(cmd, info, func() {
		cmd.Printf("Created session %s (%d documents)\n", info.ID, info.DocumentsLoaded)
	})
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	info, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return commandError("failed to get session", err)
	}
	return render(cmd, info, func() { printSession(cmd, info) })
}

func runSessionHistory(cmd *cobra.Command, args []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	turns, err := sessionService.History(cmd.Context(), args[0])
	if err != nil {
		return commandError("failed to get history", err)
	}

	views := make([]turnView, len(turns))
	for i, t := range turns {
		views[i] = turnView{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp.Format(time.RFC3339),
			Sources:   t.Sources,
		}
	}
	return render(cmd, views, func() {
		if len(turns) == 0 {
			cmd.Println("No messages yet.")
			return
		}
		for _, t := range turns {
			label := "You"
			if t.Role == domain.RoleAssistant {
				label = "DocPilot"
			}
			cmd.Printf("[%s] %s:\n%s\n", humanize.Time(t.Timestamp), label, t.Content)
			if len(t.Sources) > 0 {
				cmd.Printf("Sources: %s\n", strings.Join(t.Sources, ", "))
			}
			cmd.Println()
		}
	})
}

func runSessionScope(cmd *cobra.Command, args []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("getting all flag: %w", err)
	}

	var ids []string
	if !all && len(args) > 1 {
		ids = args[1:]
	}

	if err := sessionService.Scope(cmd.Context(), args[0], ids); err != nil {
		return commandError("failed to scope session", err)
	}

	info, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return commandError("failed to get session", err)
	}
	return render(cmd, info, func() { printSession(cmd, info) })
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	if err := sessionService.ClearConversation(cmd.Context(), args[0]); err != nil {
		return commandError("failed to clear session", err)
	}
	cmd.Printf("Cleared conversation in session %s\n", args[0])
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if err := requireSessions(); err != nil {
		return err
	}

	if err := sessionService.Delete(cmd.Context(), args[0]); err != nil {
		return commandError("failed to delete session", err)
	}
	cmd.Printf("Deleted session %s\n", args[0])
	return nil
}

func printSession(cmd *cobra.Command, info *domain.SessionInfo) {
	cmd.Printf("Session: %s\n", info.ID)
	cmd.Printf("  Created: %s\n", humanize.Time(info.CreatedAt))
	cmd.Printf("  Updated: %s\n", humanize.Time(info.UpdatedAt))
	if info.Scoped {
		cmd.Printf("  Scope: %d of the uploaded documents\n", len(info.DocumentIDs))
	} else {
		cmd.Println("  Scope: all documents")
	}
	cmd.Printf("  Documents: %d\n", info.DocumentsLoaded)
	for _, name := range info.DocumentNames {
		cmd.Printf("    - %s\n", name)
	}
	cmd.Printf("  Messages: %d (%d questions, %d answers)\n",
		info.Stats.TotalMessages, info.Stats.UserMessages, info.Stats.AssistantMessages)
}
