// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package cache provides a thread-safe generic LRU cache with TTL expiry.

The API layer caches recommendation results keyed by snapshot ID and
request parameters, so a rebuilt snapshot naturally misses old entries. The
event layer uses the same cache as a dedup window for message IDs via
IsDuplicate.

	c := cache.NewLRU[*recommend.Result](1000, 5*time.Minute)
	c.Add(key, res)
	if res, ok := c.Get(key); ok {
	    // use res
	}

All operations are O(1); expiry is lazy and CleanupExpired can be called
periodically to reclaim memory.
*/
package cache
