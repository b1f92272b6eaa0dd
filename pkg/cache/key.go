package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached page response.
type Key struct {
	// Endpoint is the API path (e.g., "/permits/search").
	Endpoint string

	// Query holds the full query parameters of the request, including any
	// pagination parameters, so every page of a chain caches separately.
	Query url.Values
}

// String generates a deterministic Redis key.
// Format: shovels:endpoint:param1=val1:param2=val2
//
// Example:
//
//	shovels:permits/search:geo_id=CA:size=100
func (k Key) String() string {
	parts := []string{"shovels"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism; url.Values iteration order is random.
	if len(k.Query) > 0 {
		keys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for _, value := range k.Query[key] {
				parts = append(parts, fmt.Sprintf("%s=%s", key, value))
			}
		}
	}

	return strings.Join(parts, ":")
}
