package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the copilot to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol server",
	Long: `Run a Model Context Protocol server offering the ask, summary, compare,
insights and document tools.

JSON-RPC is spoken over stdin and stdout unless --http is given, in which
case the streamable HTTP transport listens on that address instead.

Examples:
  docpilot mcp serve
  docpilot mcp serve --http 127.0.0.1:8081

Desktop assistant entry:
  {"mcpServers": {"docpilot": {"command": "docpilot", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("http")

	server, err := mcp.NewServer(&mcp.Ports{Copilot: copilotService, Sessions: sessionService},
		mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if addr == "" {
		return server.Run(cmd.Context())
	}
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
