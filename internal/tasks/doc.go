// Package tasks drives a playlist build from a scraped page with progress reporting.
//
// # Core Operations
//
// [PlaylistEngine] exposes two operations:
//
//  1. [PlaylistEngine.Scrape] : page → search terms
//     - Fetches the page and applies every selector through a [TermSource]
//     - Fails with [shared.ErrNoSearchTerms] when nothing was found
//
//  2. [PlaylistEngine.Build] : search terms → playlist
//     - Creates the playlist when the [PlaylistTarget] has no ID
//     - Searches the [Catalog] for one album per term, one request at a time; a failed search
//     leaves an empty slot and the build carries on
//     - Adds every found track in chunks of [services.MaxTracksPerAdd], stopping at the first failed chunk
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for richer output.
// Updates use select with default to prevent blocking, so a nil or full channel never stalls a build.
package tasks
