package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitewatch/internal/config"
	"sitewatch/internal/history"
	"sitewatch/internal/model"
	"sitewatch/internal/service"
	"sitewatch/internal/storage"
	"sitewatch/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns 0 when a cycle completed, whatever the sites' health, and 1
// when configuration is invalid or a store cannot be used.
func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("checker", flag.ContinueOnError)
	fs.SetOutput(out)
	daemon := fs.Bool("daemon", false, "keep running and check on CHECK_SCHEDULE")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(out, "configuration error: %v\n", err)
		return 1
	}
	utils.InitLogger(cfg.LogFile)
	defer utils.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		utils.Log.Error("failed to open store", utils.Field("backend", cfg.Backend), utils.Field("error", err.Error()))
		return 1
	}
	defer func() {
		_ = backend.Close()
	}()

	monitor := service.NewMonitorService(
		backend.Registry,
		history.NewReconciler(backend.History, cfg.Policy),
		service.NewChecker(service.NewProber(cfg)),
	)

	if *daemon {
		return runDaemon(ctx, cfg, monitor)
	}

	summary, err := monitor.RunCycle(ctx)
	if err != nil {
		utils.Log.Error("check cycle aborted", utils.Field("error", err.Error()))
		return 1
	}
	printSummary(out, summary)
	return 0
}

func runDaemon(ctx context.Context, cfg *config.Config, monitor *service.MonitorService) int {
	sched := service.NewScheduler(monitor, cfg.CheckSchedule)
	if err := sched.Start(); err != nil {
		utils.Log.Error("invalid CHECK_SCHEDULE", utils.Field("schedule", cfg.CheckSchedule), utils.Field("error", err.Error()))
		return 1
	}
	go sched.RunMonitorJob()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.Log.Error("metrics server failed", utils.Field("error", err.Error()))
			}
		}()
	}

	<-ctx.Done()
	utils.Log.Info("stopping scheduler")
	<-sched.Stop().Done()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return 0
}

func printSummary(out io.Writer, s *service.CycleSummary) {
	for _, r := range s.Records {
		status := color.GreenString(string(r.Status))
		if r.Status != model.StatusOK {
			status = color.RedString(string(r.Status))
		}
		_, _ = fmt.Fprintf(out, "%-4s  %-40s  ssl %-10s  domain %-10s\n",
			status, r.URL, r.SSLExpiry.Display(), r.DomainExpiry.Display())
	}

	down := color.GreenString("%d down", s.Down)
	if s.Down > 0 {
		down = color.RedString("%d down", s.Down)
	}
	_, _ = fmt.Fprintf(out, "%d checked, %s in %s\n", s.Checked, down, s.Duration.Round(time.Millisecond))
}
