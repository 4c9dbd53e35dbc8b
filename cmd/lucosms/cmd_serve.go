package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lucosms-backend/internal/config"
	"lucosms-backend/internal/handler"
	"lucosms-backend/internal/middleware"
	"lucosms-backend/internal/service"
	"lucosms-backend/internal/sms"
	"lucosms-backend/internal/websocket"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the HTTP API and the import progress websocket.

Storage, the number extractor and the import lock are chosen from the
environment (see .env.example). SIGINT or SIGTERM drains in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ex, err := newExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(log)
	contacts := service.NewContactService(st.Contacts, log)
	imports := service.NewImportService(contacts, service.NewReconciler(ex, log), st.Locker, hub, log)
	templates := service.NewTemplateService(st.Templates, log)
	messages := service.NewMessageService(sms.NewClient(cfg.SMSAPIURL, cfg.SMSUserID, 0, log), st.Messages, templates, log)

	router := handler.NewRouter(handler.Handlers{
		Contacts:  handler.NewContactHandler(contacts, imports, hub, cfg.AllowedOrigins, cfg.MaxUploadBytes, log),
		Phone:     handler.NewPhoneHandler(),
		Messages:  handler.NewMessageHandler(messages, log),
		Templates: handler.NewTemplateHandler(templates, log),
	}, middleware.NewMiddleware(cfg.AllowedOrigins, log))

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("extractor", cfg.Extractor),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
