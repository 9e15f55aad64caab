// Package model defines the data exchanged between the download supervisor
// and its presentation collaborators: the job request, job snapshots, the
// state enum with its transition table, progress events, terminal results
// and expanded playlists. Every value here is copied across goroutines, never
// shared.
package model
