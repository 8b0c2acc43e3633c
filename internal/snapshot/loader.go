package snapshot

import (
	"context"
	"time"

	"sitewatch/internal/model"
	"sitewatch/internal/storage"
	"sitewatch/internal/utils"
)

const cacheKey = "snapshot:inputs"

// LatestSource returns one status row per URL.
type LatestSource interface {
	Latest(ctx context.Context) ([]model.StatusRecord, error)
}

type Cache interface {
	GetCache(ctx context.Context, key string, dst interface{}) (bool, error)
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Loader reads the registry and latest history for each view request. Only
// the raw inputs are cached; rows are rebuilt against the current time on
// every call.
type Loader struct {
	Registry storage.Registry
	History  LatestSource
	Cache    Cache
	TTL      time.Duration
	Now      func() time.Time
}

type inputs struct {
	Sites  []model.SiteRecord   `json:"sites"`
	Latest []model.StatusRecord `json:"latest"`
}

func NewLoader(reg storage.Registry, h LatestSource, cache Cache, ttl time.Duration) *Loader {
	return &Loader{Registry: reg, History: h, Cache: cache, TTL: ttl, Now: time.Now}
}

// Load never fails: a store that cannot be read contributes no rows, and
// the builder falls back accordingly.
func (l *Loader) Load(ctx context.Context, key SortKey) Snapshot {
	in := l.inputs(ctx)
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return Build(in.Sites, in.Latest, now(), key)
}

func (l *Loader) inputs(ctx context.Context) inputs {
	var in inputs
	if l.Cache != nil && l.TTL > 0 {
		hit, err := l.Cache.GetCache(ctx, cacheKey, &in)
		if err != nil {
			utils.Log.Warn("snapshot cache read failed", utils.Field("error", err.Error()))
		}
		if hit {
			return in
		}
	}

	complete := true
	sites, err := l.Registry.Sites(ctx)
	if err != nil {
		complete = false
		utils.Log.Warn("failed to load site registry", utils.Field("error", err.Error()))
	}
	latest, err := l.History.Latest(ctx)
	if err != nil {
		complete = false
		utils.Log.Warn("failed to load status history", utils.Field("error", err.Error()))
	}
	in = inputs{Sites: sites, Latest: latest}

	if complete && l.Cache != nil && l.TTL > 0 {
		if err := l.Cache.SetCache(ctx, cacheKey, in, l.TTL); err != nil {
			utils.Log.Warn("snapshot cache write failed", utils.Field("error", err.Error()))
		}
	}
	return in
}
