// Package mocks provides shared mock implementations of the store and
// service interfaces for testing. Each mock exposes function fields for
// per-test behavior and falls back to a simple in-memory default.
package mocks
