// Package store defines the persistence interfaces consumed by the service
// layer, together with the sentinel errors implementations must return.
// Implementations live under internal/platform.
package store
