package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitewatch/internal/model"
)

type siteRow struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"column:name"`
	URL     string `gorm:"column:url"`
	LogoURL string `gorm:"column:logo_url"`
}

func (siteRow) TableName() string { return "sites" }

// statusRow mirrors the sheet layout: every column is text so stored values
// round-trip exactly, including dates that no longer parse.
type statusRow struct {
	ID           uint   `gorm:"primaryKey"`
	Timestamp    string `gorm:"column:timestamp"`
	Name         string `gorm:"column:name"`
	URL          string `gorm:"column:url;index"`
	Status       string `gorm:"column:status"`
	SSLExpiry    string `gorm:"column:ssl_expiry"`
	DomainExpiry string `gorm:"column:domain_expiry"`
}

func (statusRow) TableName() string { return "status_log" }

type SQLStore struct {
	DB *gorm.DB
}

func OpenSQLite(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	if err := db.AutoMigrate(&siteRow{}, &statusRow{}); err != nil {
		return nil, unavailable("migrate sqlite", err)
	}
	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return unavailable("sqlite handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("sqlite ping", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Sites(ctx context.Context) ([]model.SiteRecord, error) {
	var rows []siteRow
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, unavailable("read sites", err)
	}
	sites := make([]model.SiteRecord, 0, len(rows))
	for _, r := range rows {
		sites = append(sites, model.SiteRecord{Name: r.Name, URL: r.URL, LogoURL: r.LogoURL})
	}
	return sites, nil
}

func (s *SQLStore) AddSite(ctx context.Context, site model.SiteRecord) error {
	row := siteRow{Name: site.Name, URL: site.URL, LogoURL: site.LogoURL}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return unavailable("add site", err)
	}
	return nil
}

func (s *SQLStore) Rows(ctx context.Context) ([]model.StatusRecord, error) {
	var rows []statusRow
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, unavailable("read status log", err)
	}
	out := make([]model.StatusRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *SQLStore) Append(ctx context.Context, rec model.StatusRecord) error {
	row := newStatusRow(rec)
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return unavailable("append status", err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, pos int, rec model.StatusRecord) error {
	var existing statusRow
	err := s.DB.WithContext(ctx).Order("id asc").Offset(pos).Limit(1).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("update status at %d: %w", pos, ErrNoRow)
	}
	if err != nil {
		return unavailable("locate status row", err)
	}
	row := newStatusRow(rec)
	row.ID = existing.ID
	if err := s.DB.WithContext(ctx).Save(&row).Error; err != nil {
		return unavailable("update status", err)
	}
	return nil
}

func (s *SQLStore) FindByURL(ctx context.Context, url string) (int, bool, error) {
	var last statusRow
	err := s.DB.WithContext(ctx).Where("url = ?", url).Order("id desc").Limit(1).Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("find status row", err)
	}
	var before int64
	if err := s.DB.WithContext(ctx).Model(&statusRow{}).Where("id < ?", last.ID).Count(&before).Error; err != nil {
		return 0, false, unavailable("find status row", err)
	}
	return int(before), true, nil
}

func newStatusRow(rec model.StatusRecord) statusRow {
	return statusRow{
		Timestamp:    rec.Timestamp.UTC().Format(time.RFC3339Nano),
		Name:         rec.Name,
		URL:          rec.URL,
		Status:       string(rec.Status),
		SSLExpiry:    rec.SSLExpiry.String(),
		DomainExpiry: rec.DomainExpiry.String(),
	}
}

func (r statusRow) record() model.StatusRecord {
	ts, _ := time.Parse(time.RFC3339Nano, r.Timestamp)
	return model.StatusRecord{
		Timestamp:    ts,
		Name:         r.Name,
		URL:          r.URL,
		Status:       model.Status(r.Status),
		SSLExpiry:    model.ParseDate(r.SSLExpiry),
		DomainExpiry: model.ParseDate(r.DomainExpiry),
	}
}
