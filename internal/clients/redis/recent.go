package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/farsightlab/arv-backend/internal/platform/logger"
)

// RecentPictures remembers picture ids served to recent sessions so the
// selector can avoid handing the same photo to back-to-back experiments.
// It is an optional collaborator: the selector treats a nil instance and a
// failed read the same way (no extra exclusions).
type RecentPictures interface {
	Add(ctx context.Context, ids ...string) error
	Snapshot(ctx context.Context) (map[string]struct{}, error)
	Close() error
}

type recentPictures struct {
	log     *logger.Logger
	rdb     *goredis.Client
	key     string
	maxSize int64
}

func NewRecentPictures(log *logger.Logger) (RecentPictures, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	key := strings.TrimSpace(os.Getenv("REDIS_RECENT_PICTURES_KEY"))
	if key == "" {
		key = "arv:recent_pictures"
	}

	maxSize := int64(200)
	if v := strings.TrimSpace(os.Getenv("REDIS_RECENT_PICTURES_MAX")); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			maxSize = parsed
		}
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

	return &recentPictures{
		log:     log.With("service", "RecentPictures"),
		rdb:     rdb,
		key:     key,
		maxSize: maxSize,
	}, nil
}

func (r *recentPictures) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := float64(time.Now().UnixNano())
	members := make([]goredis.Z, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		members = append(members, goredis.Z{Score: now + float64(i), Member: id})
	}
	if len(members) == 0 {
		return nil
	}

	pipe := r.rdb.Pipeline()
	pipe.ZAdd(ctx, r.key, members...)
	// keep only the newest maxSize entries
	pipe.ZRemRangeByRank(ctx, r.key, 0, -(r.maxSize + 1))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *recentPictures) Snapshot(ctx context.Context) (map[string]struct{}, error) {
	ids, err := r.rdb.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *recentPictures) Close() error {
	return r.rdb.Close()
}
