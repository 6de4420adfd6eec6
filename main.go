package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/coach"
	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/logging"
	"lg/diet-mentor-go-api/internal/phrase"
	"lg/diet-mentor-go-api/internal/scheduler"
	"lg/diet-mentor-go-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	st, err := openStore(context.Background(), cfg.Database, logging.Component(logger, "store"))
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := coach.NewService(st, cfg.Coach, logging.Component(logger, "coach"))
	seed := uint64(time.Now().UnixNano())
	phrases := phrase.Default(phrase.Random(rand.New(rand.NewPCG(seed, seed>>1))))

	var sched *scheduler.Scheduler
	if cfg.Audit.Enabled {
		sched, err = scheduler.New(svc, phrases, cfg.Audit, cfg.Coach.Location, logging.Component(logger, "scheduler"))
		if err != nil {
			logger.Error("failed to configure scheduler", "error", err)
			os.Exit(1)
		}
		sched.Start()
	}

	gin.SetMode(cfg.HTTP.GinMode)
	h := &Handler{users: st, coach: svc, phrases: phrases, log: logger}
	router := newRouter(h, cfg.HTTP, logging.Component(logger, "http"))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	logger.Info("server stopped")
}

// openStore connects the backend named by cfg.Driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	if cfg.Driver == config.DriverSQLite {
		s, err := store.NewSQLite(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	p, err := store.NewPostgres(ctx, cfg.URL, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newRouter builds the gin engine with recovery, request logging and, when
// origins are configured, CORS.
func newRouter(h *Handler, cfg config.HTTPConfig, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.SetTrustedProxies(nil)

	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h.registerRoutes(router)
	return router
}
