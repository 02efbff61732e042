package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/docpilot/internal/adapters/driving/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Serve the document copilot as a JSON REST API.

Routes (all under /api):
  GET    /health
  GET    /documents                 POST /documents (multipart "files")
  GET    /documents/:id             DELETE /documents/:id
  GET    /documents/:id/analysis
  POST   /ask                       {"message": "...", "session_id": "..."}
  GET    /summary?session_id=       GET /comparison?session_id=
  GET    /insights
  POST   /sessions                  GET|DELETE /sessions/:id
  GET    /sessions/:id/history      DELETE /sessions/:id/history
  PUT    /sessions/:id/scope        {"document_ids": [...]}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().String("allow-origins", "", "Comma-separated CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	origins, err := cmd.Flags().GetString("allow-origins")
	if err != nil {
		return fmt.Errorf("getting allow-origins flag: %w", err)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Copilot:  copilotService,
		Sessions: sessionService,
	}, httpapi.Config{AllowOrigins: origins})
	if err != nil {
		return err
	}

	cmd.Printf("REST API listening on http://%s/api\n", addr)
	return server.Listen(cmd.Context(), addr)
}
