// Package app wires configuration, storage, services and servers together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/goph-notes/internal/config"
	grpcserver "github.com/and161185/goph-notes/internal/server/grpc"
	httpserver "github.com/and161185/goph-notes/internal/server/http"
	"github.com/and161185/goph-notes/internal/service"
	"github.com/and161185/goph-notes/internal/session"
)

type App struct {
	cfg        config.Config
	log        *zap.Logger
	httpServer *http.Server
	health     *grpcserver.Health
	store      *Store
}

// New opens the store and builds both servers without listening yet.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}
	return newWithStore(cfg, log, store), nil
}

func newWithStore(cfg config.Config, log *zap.Logger, store *Store) *App {
	auth := session.New([]byte(cfg.Auth.JWTKey), cfg.Auth.TokenTTL, session.WithLeeway(cfg.Auth.Leeway))
	accounts := service.NewAccountService(store.Accounts, auth)
	notes := service.NewNoteService(store.Notes)

	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := httpserver.NewHandler(accounts, notes, auth, log)
	router := httpserver.NewRouter(h, cfg.HTTP.CORSOrigins)

	a := &App{
		cfg:   cfg,
		log:   log,
		store: store,
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
	if cfg.GRPC.HealthAddr != "" {
		a.health = grpcserver.NewHealth(log, store.Probe)
	}
	return a
}

// Handler exposes the HTTP handler.
func (a *App) Handler() http.Handler { return a.httpServer.Handler }

// Run serves until ctx is cancelled or a server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	errCh := make(chan error, 2)

	if a.health != nil {
		lis, err := net.Listen("tcp", a.cfg.GRPC.HealthAddr)
		if err != nil {
			return fmt.Errorf("listen health: %w", err)
		}
		a.health.CheckWithin(ctx, a.cfg.GRPC.CheckInterval)
		go a.health.Watch(ctx, a.cfg.GRPC.CheckInterval)
		go func() {
			a.log.Info("health listening", zap.String("addr", a.cfg.GRPC.HealthAddr))
			errCh <- a.health.Serve(lis)
		}()
	}

	go func() {
		a.log.Info("http listening",
			zap.String("addr", a.cfg.HTTP.Addr),
			zap.Bool("tls", a.cfg.HTTP.TLSCert != ""),
		)
		var err error
		if a.cfg.HTTP.TLSCert != "" {
			err = a.httpServer.ListenAndServeTLS(a.cfg.HTTP.TLSCert, a.cfg.HTTP.TLSKey)
		} else {
			err = a.httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr != nil {
			a.log.Error("server error", zap.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Shutdown drains HTTP, stops the health server and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.health != nil {
		done := make(chan struct{})
		go func() { a.health.Stop(); close(done) }()
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, errors.New("health shutdown timed out"))
		}
	}
	if a.store != nil && a.store.Close != nil {
		if err := a.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
