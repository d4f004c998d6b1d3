// Package cache stores raw lookup responses so repeated typeahead terms and
// deal refreshes do not hit the remote services again within the TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache is the storage contract used by the API client
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// hashKey converts a cache key (request URL) to a stable identifier
func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
