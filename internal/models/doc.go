// Package models defines the data carried through the mix workflow.
//
// The package contains two categories of types:
//
// 1. Workflow values: lightweight structs exchanged with the backend
//   - [RawTrack] : a track as returned by the source lookup
//   - [EnrichedTrack] : a found track with key, mode and tempo
//   - [Mix] : the solver's ordered, duration-bounded selection
//   - [ProgressState] : derived progress of an enrichment run
//   - [SavedPlaylistRef] : location of a playlist created from a mix
//
// 2. Persistent entities: database-backed history
//   - [MixRecord] : a solved mix with the inputs that produced it
//
// Persistent entities implement the [Model] interface.
package models
