// Package cli implements the docpilot command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "dev"

	copilotService  driving.CopilotService
	sessionService  driving.SessionService
	settingsService driving.SettingsService

	// supportedFile filters uploads and watched files by extension.
	supportedFile func(filename string) bool
)

// Services holds the core ports the commands drive.
type Services struct {
	Copilot  driving.CopilotService
	Sessions driving.SessionService
	Settings driving.SettingsService

	// Supports reports whether a file can be uploaded. Nil accepts all files
	// and leaves rejection to the copilot.
	Supports func(filename string) bool
}

var rootCmd = &cobra.Command{
	Use:   "docpilot",
	Short: "Chat with your documents",
	Long: `DocPilot answers questions about the documents you upload.

Upload PDF, text or Markdown files, then ask questions, request a summary or
a comparison, or open the interactive chat. Answers cite the documents they
were drawn from.`,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().StringP("format", "f", formatText, "Output format: text, json or yaml")
}

// SetServices installs the core services used by every command.
func SetServices(s Services) {
	copilotService = s.Copilot
	sessionService = s.Sessions
	settingsService = s.Settings
	supportedFile = s.Supports
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func configureLogging(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("getting verbose flag: %w", err)
	}
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("getting log-file flag: %w", err)
	}
	if logFile != "" {
		if err := logger.SetLogFile(logFile); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
	}

	_, err = outputFormat(cmd)
	return err
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("getting format flag: %w", err)
	}
	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// render writes v as JSON or YAML when requested, otherwise calls text.
func render(cmd *cobra.Command, v any, text func()) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text()
		return nil
	}
}

// commandError prefixes err with its kind so scripts can match on it.
func commandError(action string, err error) error {
	return fmt.Errorf("%s: %s: %w", action, domain.ErrorKind(err), err)
}

func requireCopilot() error {
	if copilotService == nil {
		return errors.New("copilot service not configured")
	}
	return nil
}

func requireSessions() error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}
