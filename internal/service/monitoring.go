package service

import (
	"context"
	"fmt"
	"time"

	"sitewatch/internal/history"
	"sitewatch/internal/model"
	"sitewatch/internal/storage"
	"sitewatch/internal/utils"
)

// CycleSummary describes one completed pass over the registry.
type CycleSummary struct {
	Checked  int
	Down     int
	Started  time.Time
	Duration time.Duration
	Records  []model.StatusRecord
}

type MonitorService struct {
	Registry storage.Registry
	History  *history.Reconciler
	Checker  *Checker
}

func NewMonitorService(reg storage.Registry, h *history.Reconciler, c *Checker) *MonitorService {
	return &MonitorService{Registry: reg, History: h, Checker: c}
}

// RunCycle checks every registered site, one after another, and records each
// result before moving on. Probe failures are part of the result; only a
// store failure stops the cycle.
func (m *MonitorService) RunCycle(ctx context.Context) (*CycleSummary, error) {
	summary := &CycleSummary{Started: time.Now()}

	sites, err := m.Registry.Sites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	utils.Log.Info("starting check cycle", utils.Field("sites", len(sites)))

	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rec := m.Checker.Check(ctx, site)
		if err := m.History.Record(ctx, rec); err != nil {
			utils.Log.Error("failed to record status", utils.Field("url", site.URL), utils.Field("error", err.Error()))
			return summary, fmt.Errorf("record %s: %w", site.URL, err)
		}

		summary.Checked++
		if rec.Status != model.StatusOK {
			summary.Down++
		}
		summary.Records = append(summary.Records, rec)
		utils.Log.Info("checked site",
			utils.Field("name", site.Name),
			utils.Field("url", site.URL),
			utils.Field("status", string(rec.Status)),
			utils.Field("ssl_expiry", rec.SSLExpiry.String()),
			utils.Field("domain_expiry", rec.DomainExpiry.String()),
		)
	}

	summary.Duration = time.Since(summary.Started)
	cycleDuration.Observe(summary.Duration.Seconds())
	lastCycle.SetToCurrentTime()
	utils.Log.Info("finished check cycle",
		utils.Field("checked", summary.Checked),
		utils.Field("down", summary.Down),
		utils.Field("duration", summary.Duration.String()),
	)
	return summary, nil
}
