// Package cache implements the two-tier result cache described in spec.md
// §4.5 and §9: a scoped tier keyed by org/project and a process-local LRU
// behind it, both keyed by a content hash of the executed query.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultQueryTTL is the scoped-cache expiry for a cached execution result.
const DefaultQueryTTL = 5 * time.Minute

// ContentKey implements the Cache Entry key formula of spec.md §3:
// hash(scope{org,proj} ⊕ source_id ⊕ engine ⊕ optimization_flag ⊕ sql_text).
func ContentKey(orgID, projectID, sourceID, engine, optimizationFlag, sql string) string {
	h := sha256.New()
	for _, part := range []string{orgID, projectID, sourceID, engine, optimizationFlag, sql} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Scoped is the outer cache tier: a Redis-class store partitioned by
// org/project scope so one tenant's cache entries never leak into another's
// lookup space. It is generic over the cached value so executor.Result
// stays the one source of truth for what gets cached.
type Scoped[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
}

// LRU is the inner, process-local tier consulted after Scoped on a read
// and populated alongside it on a write.
type LRU[V any] interface {
	Get(key string) (V, bool)
	Add(key string, value V)
}

// ScopeKey derives a per-tenant namespace prefix, used by RedisScoped to
// keep different orgs' keys from colliding inside one Redis keyspace even
// though ContentKey already folds org/project into the hash.
func ScopeKey(orgID, projectID string) string {
	return strings.Join([]string{"nlq", orgID, projectID}, ":")
}
