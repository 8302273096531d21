package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bbanting/canvasgradecheck/internal/api"
	"github.com/bbanting/canvasgradecheck/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long: `Serves the roster and grade history over HTTP.

Endpoints:
  GET  /health                       - Health check
  GET  /api/students                 - Latest snapshot for every student
  GET  /api/students/search?q=name   - Find one student
  GET  /api/students/{id}/history    - Dated series for plotting

Example:
  go run ./cmd/gradecheck serve
  go run ./cmd/gradecheck serve --port 8090`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	studentHandler := handlers.NewStudentHandler(a.loadRoster, a.history, a.log)
	router := api.NewRouter(studentHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Server running on http://localhost:%s\nPress Ctrl+C to stop\n", a.cfg.Port)

	if err := server.Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
