//go:build !deadlock

// Package syncutil holds the mutex types used by stateful components.
// Default builds use the sync package directly. Building with -tags=deadlock
// swaps in github.com/sasha-s/go-deadlock, which reports lock-order
// inversions and locks held for too long.
package syncutil

import "sync"

// RWMutex is a sync.RWMutex.
type RWMutex struct {
	sync.RWMutex
}
