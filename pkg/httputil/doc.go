// Package httputil fetches family tree documents over HTTP.
//
// # Overview
//
// Trees are usually local files, but the CLI and the HTTP viewer also
// accept an http(s) URL. This package provides the plumbing for that:
//
//   - [Fetcher]: GET a document with retries and an optional cache
//   - [Cache]: file-based cache of fetched documents with a TTL
//   - [Retry]: retry with exponential backoff
//
// # Usage
//
//	cache, err := httputil.NewCache("", time.Hour)
//	f := httputil.NewFetcher(cache)
//	raw, err := f.Fetch(ctx, "https://example.com/family.json", false)
//
// Fetched bodies are capped at [MaxBodySize]; larger documents fail with
// [ErrTooLarge] before anything is cached.
package httputil
