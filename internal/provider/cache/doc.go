// Package cache keeps fetched pages on disk so that repeated queries against
// a slow provider are answered locally until their TTL runs out.
//
// Entries live as JSON files under ~/.recongrid/cache/ by default, one file
// per query, keyed by a SHA256 over the normalized query. Failed fetches are
// never cached, and Invalidate drops every entry after a write.
package cache
