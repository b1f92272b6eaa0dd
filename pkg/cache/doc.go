// Package cache provides an optional Redis-backed read cache for Shovels API
// page responses.
//
// Shovels data is refreshed on a weekly release cadence (see the /meta/release
// endpoint), so identical queries return identical pages for long stretches.
// The cache stores the decoded page body keyed by endpoint and query
// parameters with a fixed TTL; Redis evicts entries itself via key expiry.
//
// The cache is a pure pass-through optimization: the client works identically
// with caching disabled, and cache errors degrade to a direct request.
package cache
