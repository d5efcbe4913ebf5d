package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask API over HTTP",
	Long: `Starts an HTTP server exposing the question-answering pipeline.
POST /ask accepts {"question": ..., "top_k": ...} and responds with the
answer and its sources. GET /healthz reports liveness.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureAskServices(ctx); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		addr = settings.Server.Addr
	}

	server := httpapi.NewServer(askService, version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	cmd.Printf("Serving ask API on %s (ctrl-c to stop)\n", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve failed: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		cmd.Println("Server stopped.")
	}

	return nil
}
