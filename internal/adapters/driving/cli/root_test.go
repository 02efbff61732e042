package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docpilot", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{
		"upload", "documents", "ask", "summary", "compare", "insights",
		"session", "settings", "tui", "serve", "mcp", "watch", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "log-file", "format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_UnknownFormat(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("documents", "list", "--format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestRender_JSONAndYAML(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.AskFunc = func(_ context.Context, _, _ string) (*domain.Answer, error) {
		return &domain.Answer{SessionID: "s", Response: "Paris", Sources: []string{"geo.txt"}, Confidence: 0.9}, nil
	}

	out, err := executeCommand("ask", "capital?", "--format", "json")
	require.NoError(t, err)
	var answer domain.Answer
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "Paris", answer.Response)
	assert.Equal(t, []string{"geo.txt"}, answer.Sources)

	out, err = executeCommand("ask", "capital?", "-f", "yaml")
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, "Paris", fromYAML["response"])
	assert.Equal(t, 0.9, fromYAML["confidence"])
}

func TestCommandError_IncludesKind(t *testing.T) {
	err := commandError("ask failed", fmt.Errorf("%w: no documents", domain.ErrInvalidInput))

	assert.Contains(t, err.Error(), "ask failed: invalid_input:")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSetServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	SetServices(Services{})

	assert.Nil(t, copilotService)
	assert.Nil(t, sessionService)
	assert.Nil(t, settingsService)
	assert.Nil(t, supportedFile)
}

func TestServicesNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"documents", "list"}, "copilot service not configured"},
		{[]string{"upload", "a.txt"}, "copilot service not configured"},
		{[]string{"ask", "hello"}, "copilot service not configured"},
		{[]string{"insights"}, "copilot service not configured"},
		{[]string{"session", "create"}, "session service not configured"},
		{[]string{"settings", "show"}, "settings service not configured"},
		{[]string{"watch", "."}, "copilot service not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
