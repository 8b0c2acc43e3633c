package storage

import (
	"context"
	"fmt"
	"sync"

	"sitewatch/internal/model"
)

// Memory is a process-local registry and status log.
type Memory struct {
	mu    sync.RWMutex
	sites []model.SiteRecord
	rows  []model.StatusRecord
}

func NewMemory(sites ...model.SiteRecord) *Memory {
	return &Memory{sites: append([]model.SiteRecord(nil), sites...)}
}

func (m *Memory) Sites(ctx context.Context) ([]model.SiteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SiteRecord(nil), m.sites...), nil
}

func (m *Memory) AddSite(ctx context.Context, site model.SiteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sites = append(m.sites, site)
	return nil
}

func (m *Memory) Rows(ctx context.Context) ([]model.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.StatusRecord(nil), m.rows...), nil
}

func (m *Memory) Append(ctx context.Context, rec model.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rec)
	return nil
}

func (m *Memory) Update(ctx context.Context, pos int, rec model.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.rows) {
		return fmt.Errorf("update status at %d: %w", pos, ErrNoRow)
	}
	m.rows[pos] = rec
	return nil
}

func (m *Memory) FindByURL(ctx context.Context, url string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lastIndexByURL(m.rows, url)
}
