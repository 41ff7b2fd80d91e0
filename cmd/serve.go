// File: cmd/serve.go
package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/observability"
	"github.com/xkilldash9x/domlens-cli/internal/orchestrator"
	"github.com/xkilldash9x/domlens-cli/internal/server"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

var serveAddr string

// serveCmd starts the HTTP surface backed by a headless browser.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the snapshot service against a headless browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			appConfig.SetServerAddr(serveAddr)
		}
		logger := observability.GetLogger()

		opts := chromedp.DefaultExecAllocatorOptions[:]
		if !appConfig.Capture().Headless {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		for _, arg := range appConfig.Capture().Args {
			opts = append(opts, chromedp.Flag(arg, true))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		defer cancelAlloc()

		capturer := capture.NewCDPCapturer(allocCtx, logger, appConfig.Capture().EvalTimeout)
		defer capturer.Shutdown()

		store := snapshot.NewStore(appConfig.Store().Capacity, appConfig.Store().MaxAge, logger)
		orch := orchestrator.New(capturer, store, appConfig.Filters(), logger)
		srv := server.New(orch, appConfig.Server(), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("serving", zap.String("addr", appConfig.Server().Addr))
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
