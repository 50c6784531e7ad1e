// Package models defines the data transfer objects shared between the catalog client and the playlist engine.
//
//   - [Album] : the best catalog match for a search term
//   - [AlbumResult] : a search term with its match and track URIs
//   - [Playlist] : the destination playlist
//
// All values are transient; nothing here is persisted between runs.
package models
