// Package domain models normalized OSINT items flowing from the source
// adapters into the time-windowed store.
//
// # Sources
//
// Items are ingested from three channels:
//
//	rss          news wire RSS/Atom feeds (BBC, Reuters, Al Jazeera, ...)
//	gdelt        the GDELT v2 doc API, queried over a short recent window
//	twitter_api  X/Twitter API v2, for a configured list of OSINT accounts
//	nitter       Nitter mirror scraping, used when the Twitter API yields nothing
//
// Every adapter produces the same Item shape regardless of channel, so the
// query layer never branches on provenance beyond the source_type field.
//
// # Timestamps
//
// PublishedAt is carried as an RFC 3339 string rather than a time.Time. The
// value is source-provided when the source has one and is replaced with the
// ingestion time otherwise. Keeping it a string lets the query layer skip
// unparsable values instead of failing the whole read; PublishedTime reports
// whether the value parses so callers can sort parsable items newest-first
// and sink the rest. FetchedAt is stamped by the store on write from the
// injected clock.
//
// # ID Generation
//
// Item IDs are deterministic SHA-256 hashes truncated to 16 hex characters:
// url+title for news items, account+first-80-chars-of-text for social items.
// Re-ingesting an unchanged item across cycles reproduces the same ID, so
// store writes are idempotent upserts and overlapping ingestion cycles are
// safe without coordination. Collisions are not detected; at tens of
// thousands of live items the 64-bit keyspace makes them negligible.
//
// # Geo fields
//
// Lat/Lon are pointers: nil means geo-resolution failed and the item cannot
// be placed on a map. News adapters drop such items; social adapters keep
// them because the text stands alone. LocationName and CountryCode are
// best-effort display strings and are empty when resolution came from raw
// coordinates found in the text (no reverse lookup is performed).
package domain
