package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-drive/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync scheduler as a daemon",
	Long: `Runs the periodic sync scheduler until interrupted.

Only one daemon may run per data directory. With --metrics-addr the
Prometheus metrics are served at /metrics; with --mcp-port the MCP server
is served over HTTP alongside the scheduler.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9464", "address for the /metrics endpoint (empty to disable)")
	serveCmd.Flags().Int("mcp-port", 0, "also serve MCP over HTTP on this port (0 = disabled)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	mcpPort, _ := cmd.Flags().GetInt("mcp-port")

	var mcpServer *mcp.Server
	if mcpPort > 0 {
		var err error
		mcpServer, err = mcp.NewServer(&mcp.Ports{Sync: syncService, Selection: selectionService})
		if err != nil {
			return err
		}
	}

	if daemonLock != nil {
		if err := daemonLock.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := daemonLock.Release(); err != nil {
				logger.Warn("%v", err)
			}
		}()
	}

	logger.SetTimestamps(true)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := scheduler.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if metricsAddr != "" && metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			<-gctx.Done()
			return srv.Shutdown(context.Background())
		})
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		cmd.Printf("Metrics on http://%s/metrics\n", metricsAddr)
	}

	if mcpServer != nil {
		addr := fmt.Sprintf(":%d", mcpPort)
		g.Go(func() error {
			return mcpServer.RunHTTP(gctx, addr)
		})
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	err := g.Wait()
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("stop scheduler: %v", stopErr)
	}
	return err
}
