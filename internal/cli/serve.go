package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/receipt-savings-parser/internal/api"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the receipt API:

  GET  /api/health  liveness
  POST /api/ocr     multipart "image" upload (photo or PDF)
  POST /api/parse   JSON {"text": "..."} of already recognized text

Image OCR needs a binary built with -tags ocr; without it /api/ocr answers 503
for photos and still reads digital PDFs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}
	app := api.NewApp(&api.Handler{
		Recognizer:          newRecognizer(cfg, true),
		Catalog:             cat,
		Logger:              logger,
		Timeout:             cfg.OCR.Timeout,
		PrioritizeDiscounts: cfg.Parser.PrioritizeDiscounts,
		Trace:               cfg.Parser.Trace,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Server.Addr)
	}()
	logger.Info("server.start",
		"addr", cfg.Server.Addr,
		"ocr_language", cfg.OCR.Language,
		"ocr_cache_ttl", cfg.OCR.CacheTTL.String(),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("server.stop")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
