package magnetcache

import (
	"strings"

	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
)

// KeyPrefix namespaces magnet entries in shared backends.
const KeyPrefix = "magnet:"

type CacheKey string

func (k CacheKey) String() string {
	return string(k)
}

// Normalize lowercases the query, trims it and collapses inner whitespace
// runs into a single space.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// DeriveKey maps a query to its MD5 cache key. Queries that normalize to the
// same string share a key.
func DeriveKey(query string) CacheKey {
	return deriveKey(query, hashutil.HashAlgoMD5)
}

func deriveKey(query string, algo hashutil.HashAlgo) CacheKey {
	return CacheKey(KeyPrefix + hashutil.MustHashString(Normalize(query), algo))
}
