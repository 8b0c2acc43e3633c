package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitewatch/internal/config"
	"sitewatch/internal/handler"
	"sitewatch/internal/history"
	"sitewatch/internal/snapshot"
	"sitewatch/internal/storage"
	"sitewatch/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger("")
		utils.Log.Fatal("invalid configuration", utils.Field("error", err.Error()))
	}
	utils.InitLogger(cfg.LogFile)
	defer utils.Sync()

	backend, err := storage.Open(context.Background(), cfg)
	if err != nil {
		utils.Log.Fatal("failed to open store", utils.Field("backend", cfg.Backend), utils.Field("error", err.Error()))
	}
	defer func() {
		_ = backend.Close()
	}()

	e := NewServer(newHandler(cfg, backend))

	go func() {
		utils.Log.Info("dashboard listening", utils.Field("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal("shutting down the server", utils.Field("error", err.Error()))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		utils.Log.Error("server shutdown failed", utils.Field("error", err.Error()))
	}
}

func newHandler(cfg *config.Config, backend *storage.Backend) *handler.Handler {
	var cache snapshot.Cache
	if cfg.EnableCache && backend.Redis != nil {
		cache = backend.Redis
	}
	latest := history.NewReconciler(backend.History, cfg.Policy)
	loader := snapshot.NewLoader(backend.Registry, latest, cache, cfg.CacheTTL)
	return handler.NewHandler(loader, backend)
}

func NewServer(h *handler.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20))) // 20 requests per second
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = http.StatusText(code)
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
		if code >= http.StatusInternalServerError {
			utils.Log.Error("request failed", utils.Field("path", c.Request().URL.Path), utils.Field("error", err.Error()))
		}
		if jsonErr := c.JSON(code, map[string]interface{}{"code": code, "message": message}); jsonErr != nil {
			c.Logger().Error(jsonErr)
		}
	}

	e.GET("/api/snapshot", h.Snapshot)
	e.GET("/api/snapshot.csv", h.SnapshotCSV)
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
