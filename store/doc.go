// SPDX-License-Identifier: EPL-2.0

// Package store is the path-addressed record store the engine reads
// commands and configuration from and publishes state to.
//
// Records are JSON documents addressed by slash-separated absolute paths
// such as /audplay/playback/state. Every write bumps the record version;
// deletes are soft and also bump the version, so a consumer that claims a
// record with Delete is the only one to do so.
//
// Two implementations are provided: Memory for tests and embedding, and
// Dir, which keeps one JSON file per record under a root directory and
// reports changes through fsnotify.
package store
