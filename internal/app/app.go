package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robotson/iyb-printful-webhook/internal/checkout"
	"github.com/robotson/iyb-printful-webhook/internal/config"
	"github.com/robotson/iyb-printful-webhook/internal/httpapi"
	"github.com/robotson/iyb-printful-webhook/internal/mailer"
	"github.com/robotson/iyb-printful-webhook/internal/metrics"
	"github.com/robotson/iyb-printful-webhook/internal/notify"
)

type App struct {
	cfg     config.Config
	logger  *slog.Logger
	httpSrv *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if cfg.ExpectedUserAgent == "" {
		return nil, fmt.Errorf("GOOD_USER_AGENT must be set")
	}
	if cfg.AdminFromEmail == "" {
		return nil, fmt.Errorf("ADMIN_FROM_EMAIL must be set")
	}

	finder := checkout.NewStripeFinder(cfg.StripeSecretKey, cfg.OutboundTimeout)
	sender := mailer.NewClient(cfg.MailjetSendURL, cfg.MailjetPublicKey, cfg.MailjetPrivateKey, cfg.OutboundTimeout)
	builder := &mailer.Builder{
		AdminEmail:     cfg.AdminFromEmail,
		AdminName:      cfg.AdminFromName,
		ShipToCustomer: cfg.ShipmentEmailToCustomer,
	}

	notifier := notify.NewService(finder, sender, builder, logger)
	api := httpapi.NewServer(notifier, cfg.ExpectedUserAgent, logger)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api,
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		httpSrv: httpSrv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("webhook http server listening", "addr", a.cfg.HTTPAddr)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownGracePeriod)
	defer cancel()
	_ = a.httpSrv.Shutdown(shutdownCtx)
}

func Run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer app.Close(context.Background())

	return app.Run(ctx)
}
