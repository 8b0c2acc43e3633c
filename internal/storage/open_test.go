package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"sitewatch/internal/config"
	"sitewatch/internal/model"
)

func TestOpen_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	cfg := &config.Config{Backend: config.BackendRedis, RedisHost: mr.Host(), RedisPort: mr.Port()}
	b, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = b.Close() }()

	if b.Redis == nil || b.Registry != Registry(b.Redis) {
		t.Fatalf("redis backend not wired: %+v", b)
	}
}

func TestOpen_RedisUnavailable(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendRedis, RedisHost: "localhost", RedisPort: "1"}
	if _, err := Open(context.Background(), cfg); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpen_SQLiteWithCSVRegistry(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(csvPath, []byte("Name,URL\nA,https://a.example\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Backend:     config.BackendSQLite,
		SQLitePath:  filepath.Join(dir, "sitewatch.db"),
		RegistryCSV: csvPath,
	}
	b, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = b.Close() }()

	if b.Redis != nil {
		t.Error("sqlite backend should not expose redis")
	}
	sites, err := b.Registry.Sites(context.Background())
	if err != nil || len(sites) != 1 {
		t.Fatalf("csv registry not used: %v %v", sites, err)
	}
	if err := b.History.Append(context.Background(), model.StatusRecord{URL: "https://a.example"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{Backend: "etcd"}); err == nil {
		t.Fatal("expected error")
	}
}
