// Package models defines the deck domain and its persisted records.
//
// The package contains two categories of types:
//
// 1. Deck content: immutable values loaded once per presentation
//   - [Deck] : Ordered slides, 1-indexed by ordinal
//   - [Slide] : Title, markdown body and animatable content groups
//   - [Group] : Ordered items sharing one reveal behaviour ([GroupKind])
//
// 2. Persistent records: rows written by the store package
//   - [Progress] : Saved slide ordinal under a fixed key
//   - [Session] : One presenting session with start/end and visit counts
//
// Persistent records implement the [Model] interface for identity, timestamps and validation.
package models
