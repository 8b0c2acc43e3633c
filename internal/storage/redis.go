package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sitewatch/internal/model"
)

const (
	sitesKey     = "websites"
	statusLogKey = "status_log"
)

type Storage struct {
	Client *redis.Client
}

func NewStorage(host, port, password string, db int) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       db,
	})
	return &Storage{Client: rdb}
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.Client.Ping(ctx).Err(); err != nil {
		return unavailable("redis ping", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.Client.Close()
}

func (s *Storage) Sites(ctx context.Context) ([]model.SiteRecord, error) {
	val, err := s.Client.LRange(ctx, sitesKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("read sites", err)
	}
	sites := make([]model.SiteRecord, 0, len(val))
	for _, v := range val {
		var site model.SiteRecord
		if err := json.Unmarshal([]byte(v), &site); err == nil {
			sites = append(sites, site)
		}
	}
	return sites, nil
}

func (s *Storage) AddSite(ctx context.Context, site model.SiteRecord) error {
	b, _ := json.Marshal(site)
	if err := s.Client.RPush(ctx, sitesKey, string(b)).Err(); err != nil {
		return unavailable("add site", err)
	}
	return nil
}

// Rows keeps undecodable entries as zero records so positions stay aligned
// with the underlying list.
func (s *Storage) Rows(ctx context.Context) ([]model.StatusRecord, error) {
	val, err := s.Client.LRange(ctx, statusLogKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("read status log", err)
	}
	rows := make([]model.StatusRecord, len(val))
	for i, v := range val {
		_ = json.Unmarshal([]byte(v), &rows[i])
	}
	return rows, nil
}

func (s *Storage) Append(ctx context.Context, rec model.StatusRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := s.Client.RPush(ctx, statusLogKey, string(b)).Err(); err != nil {
		return unavailable("append status", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, pos int, rec model.StatusRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := s.Client.LSet(ctx, statusLogKey, int64(pos), string(b)).Err(); err != nil {
		return unavailable("update status", err)
	}
	return nil
}

func (s *Storage) FindByURL(ctx context.Context, url string) (int, bool, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return 0, false, err
	}
	return lastIndexByURL(rows, url)
}

func (s *Storage) GetCache(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("read cache", err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Storage) SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	val, _ := json.Marshal(value)
	return s.Client.Set(ctx, key, val, expiration).Err()
}

func lastIndexByURL(rows []model.StatusRecord, url string) (int, bool, error) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].URL == url {
			return i, true, nil
		}
	}
	return 0, false, nil
}
