package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/config"
	"github.com/muhammadolammi/interviewmate/internal/formatter"
	"github.com/muhammadolammi/interviewmate/internal/httpapi"
	"github.com/muhammadolammi/interviewmate/internal/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "interviewmate",
		Short:        "Interview records, guided interview forms and AI summaries.",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newWorkerCmd(), newFormatCmd(), newTokenCmd())
	return root
}

// setup loads configuration and the logger.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("empty JWT_SECRET in environment")
	}
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	svc, err := newAnalysisService(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	cache, err := formatter.NewCache(cfg.FormatCacheSize)
	if err != nil {
		return err
	}
	forms, err := httpapi.NewFormRegistry(cfg.FormSessionCacheSize)
	if err != nil {
		return err
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpapi.NewHandler(httpapi.Deps{
		Log:       log,
		Store:     app.Store,
		Auth:      auth.NewVerifier(cfg.JWTSecret, app.Directory, log),
		Catalog:   app.Catalog,
		Analysis:  svc,
		Formatter: cache,
		Jobs:      app.Jobs,
		Forms:     forms,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpapi.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newWorkerCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume queued analysis jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", workers)
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.RabbitMQURL == "" {
				return errors.New("empty RABBITMQ_URL in environment")
			}
			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()
			svc, err := newAnalysisService(ctx, cfg, log, false)
			if err != nil {
				return err
			}
			if !svc.Enabled() {
				return errors.New("empty GOOGLE_API_KEY in environment")
			}

			wc := &WorkerConfig{
				Log:         log.With("component", "worker"),
				Store:       app.Store,
				Catalog:     app.Catalog,
				Analysis:    svc,
				Publisher:   app.Publisher,
				RABBITMQUrl: cfg.RabbitMQURL,
			}
			log.Info("starting consumer pool", "workers", workers)
			wc.StartConsumerWorkerPool(ctx, workers)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 3, "number of concurrent consumers")
	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format [file]",
		Short: "Print the rendered blocks of an AI summary as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return formatTo(cmd.OutOrStdout(), in)
		},
	}
}

func formatTo(w io.Writer, r io.Reader) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(formatter.Format(string(text)))
}

func newTokenCmd() *cobra.Command {
	var userID, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("empty JWT_SECRET in environment")
			}
			tok, err := auth.IssueToken(cfg.JWTSecret, userID, email, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "whitelisted email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
