package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hearthside/logbook-backend/internal/content"
	"github.com/hearthside/logbook-backend/internal/logger"
)

// ContentCache keeps merged page sections per (logbook, page) so read
// paths skip the decode+merge work. Every content write invalidates the
// affected page; the cache is strictly an accelerator and never the
// source of truth.
type ContentCache interface {
	GetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType) (content.PageSections, bool)
	SetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType, sections content.PageSections)
	InvalidatePage(ctx context.Context, logbookID uuid.UUID, pt content.PageType)
	InvalidateLogbook(ctx context.Context, logbookID uuid.UUID)
	Close() error
}

type contentCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewContentCache(log *logger.Logger, ttl time.Duration) (ContentCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &contentCache{
		log: log.With("service", "RedisContentCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func pageKey(logbookID uuid.UUID, pt content.PageType) string {
	return fmt.Sprintf("logbook:%s:sections:%s", logbookID, pt)
}

func (cc *contentCache) GetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType) (content.PageSections, bool) {
	raw, err := cc.rdb.Get(ctx, pageKey(logbookID, pt)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			cc.log.Warn("Content cache read failed", "logbook_id", logbookID, "page", pt, "error", err)
		}
		return nil, false
	}
	var sections content.PageSections
	if err := json.Unmarshal(raw, &sections); err != nil {
		cc.log.Warn("Content cache entry corrupt, dropping", "logbook_id", logbookID, "page", pt, "error", err)
		cc.InvalidatePage(ctx, logbookID, pt)
		return nil, false
	}
	return sections, true
}

func (cc *contentCache) SetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType, sections content.PageSections) {
	raw, err := json.Marshal(sections)
	if err != nil {
		cc.log.Warn("Content cache marshal failed", "logbook_id", logbookID, "page", pt, "error", err)
		return
	}
	if err := cc.rdb.Set(ctx, pageKey(logbookID, pt), raw, cc.ttl).Err(); err != nil {
		cc.log.Warn("Content cache write failed", "logbook_id", logbookID, "page", pt, "error", err)
	}
}

func (cc *contentCache) InvalidatePage(ctx context.Context, logbookID uuid.UUID, pt content.PageType) {
	if err := cc.rdb.Del(ctx, pageKey(logbookID, pt)).Err(); err != nil {
		cc.log.Warn("Content cache invalidate failed", "logbook_id", logbookID, "page", pt, "error", err)
	}
}

func (cc *contentCache) InvalidateLogbook(ctx context.Context, logbookID uuid.UUID) {
	keys := make([]string, 0, len(content.PageTypes()))
	for _, pt := range content.PageTypes() {
		keys = append(keys, pageKey(logbookID, pt))
	}
	if err := cc.rdb.Del(ctx, keys...).Err(); err != nil {
		cc.log.Warn("Content cache logbook invalidate failed", "logbook_id", logbookID, "error", err)
	}
}

func (cc *contentCache) Close() error {
	return cc.rdb.Close()
}
