package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/seamonger/procurement/internal/domain"
)

// RedisDirectory stores suppliers in Redis. Each supplier is a hash at
// seamonger:{namespace}:supplier:{id}; a sorted set indexes them by trust score.
// The client is safe for concurrent use.
type RedisDirectory struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisDirectory creates a directory client scoped to namespace.
func NewRedisDirectory(opts *redis.Options, namespace string) (*RedisDirectory, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &RedisDirectory{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection.
func (d *RedisDirectory) Close() error {
	return d.rdb.Close()
}

// Ping verifies Redis connectivity.
func (d *RedisDirectory) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *RedisDirectory) supplierKey(id string) string {
	return fmt.Sprintf("seamonger:%s:supplier:%s", d.namespace, id)
}

func (d *RedisDirectory) trustIndexKey() string {
	return fmt.Sprintf("seamonger:%s:suppliers_by_trust", d.namespace)
}

// Upsert writes the supplier hash and its index entry in one MULTI/EXEC.
func (d *RedisDirectory) Upsert(ctx context.Context, s domain.Supplier) error {
	if strings.TrimSpace(s.ID) == "" {
		return domain.ErrInvalidSupplier
	}
	s = s.Normalized()

	_, err := d.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, d.supplierKey(s.ID), map[string]any{
			"specialty":   s.Specialty,
			"trust_score": strconv.FormatFloat(s.TrustScore, 'f', -1, 64),
		})
		pipe.ZAdd(ctx, d.trustIndexKey(), redis.Z{Score: s.TrustScore, Member: s.ID})
		return nil
	})
	if err != nil {
		return domain.Wrap(domain.ErrStoreWrite, "upsert supplier", err)
	}
	return nil
}

// Get implements domain.Directory.
func (d *RedisDirectory) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	hash, err := d.rdb.HGetAll(ctx, d.supplierKey(id)).Result()
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreQuery, "get supplier", err)
	}
	// HGetAll returns an empty map for missing keys.
	if len(hash) == 0 {
		return nil, domain.ErrSupplierNotFound
	}
	return hashToSupplier(id, hash)
}

// List implements domain.Directory.
func (d *RedisDirectory) List(ctx context.Context) ([]domain.Supplier, error) {
	ids, err := d.rdb.ZRevRange(ctx, d.trustIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreQuery, "list suppliers", err)
	}

	var suppliers []domain.Supplier
	for _, id := range ids {
		s, err := d.Get(ctx, id)
		if errors.Is(err, domain.ErrSupplierNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, *s)
	}

	// Match the SQLite ordering: score descending, then identifier ascending.
	sort.SliceStable(suppliers, func(i, j int) bool {
		if suppliers[i].TrustScore != suppliers[j].TrustScore {
			return suppliers[i].TrustScore > suppliers[j].TrustScore
		}
		return suppliers[i].ID < suppliers[j].ID
	})
	return suppliers, nil
}

func hashToSupplier(id string, hash map[string]string) (*domain.Supplier, error) {
	score, err := strconv.ParseFloat(hash["trust_score"], 64)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreQuery, "parse trust_score for "+id, err)
	}
	return &domain.Supplier{
		ID:         id,
		Specialty:  hash["specialty"],
		TrustScore: score,
	}, nil
}
