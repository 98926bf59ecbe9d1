package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caption-canvas/internal/editor"
	"caption-canvas/internal/media"
	"caption-canvas/internal/platform/config"
	"caption-canvas/internal/platform/logger"
	"caption-canvas/internal/platform/metrics"
	"caption-canvas/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "caption-canvas",
	Short: "Preview session server for clip cropping and caption editing",
	Long: `caption-canvas serves preview sessions for short-form clips: a cropped
video canvas with draggable layers and a word-level caption editor with
undo, redo, and debounced autosave.

Configuration is read from flags, then the environment (.env is loaded
when present).`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = config.Load()

		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = config.GetEnv("PORT", "8080")
		}
		logLevel := config.GetEnv("LOG_LEVEL", "info")
		logFormat := config.GetEnv("LOG_FORMAT", "json")
		debounce := config.GetEnvMillis("AUTOSAVE_DEBOUNCE_MS", editor.DefaultDebounce)
		frameInterval := config.GetEnvMillis("FRAME_INTERVAL_MS", 0)
		maxSegmentWords := config.GetEnvInt("MAX_SEGMENT_WORDS", 0)

		log := logger.New(logLevel, logFormat)

		repo := session.NewInMemoryRepository()
		store := editor.NewInMemoryCaptionStore()
		catalog := editor.NewStaticTemplateCatalog()
		met := metrics.New()

		svc := session.NewService(repo, store, catalog, &media.FFProbe{}, session.Config{
			Debounce:        debounce,
			FrameInterval:   frameInterval,
			MaxSegmentWords: maxSegmentWords,
			OnFrameDrawn:    met.IncFramesDrawn,
			OnAutosave: func(n int) {
				met.IncAutosaves()
				log.Debug("autosave committed", "words", n)
			},
			OnAutosaveError: func(err error) {
				met.IncAutosaveFailures()
				log.Warn("autosave rejected, kept dirty", "error", err)
			},
		})
		h := session.NewHandler(svc, log, met)

		r := chi.NewRouter()
		r.Use(logger.RequestLogger(log))
		r.Use(metrics.RequestMiddleware(met))
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			met.Handler(func() { met.SetActiveSessions(svc.ActiveCount()) }).ServeHTTP(w, req)
		})
		h.Routes(r)

		addr := ":" + port
		srv := &http.Server{Addr: addr, Handler: r}

		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		log.Info("server starting",
			"port", port,
			"autosave_debounce", debounce.String(),
			"log_level", logLevel,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", "error", err)
			os.Exit(1)
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
