// Package handles keeps Go objects reachable from native callbacks.
//
// Native code cannot hold Go pointers, so a Go object that a callback has to
// find again (a pending completion, a participant's audio sink, an events
// listener) is registered here and the returned uintptr is handed to the
// native core as the callback's userData.
//
// The registry keeps its values alive: an object stays reachable for as long
// as native code may call back with its handle, and becomes collectable once
// Unregister is called.
package handles

import (
	"sync"
	"sync/atomic"
)

var (
	mu      sync.RWMutex
	handles = make(map[uintptr]any)
	nextID  atomic.Uintptr
)

// Register stores v and returns a non-zero handle for it.
//
// Thread-safe.
func Register(v any) uintptr {
	id := nextID.Add(1)
	mu.Lock()
	handles[id] = v
	mu.Unlock()
	return id
}

// Lookup returns the object registered under id, or nil.
//
// Thread-safe.
func Lookup(id uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return handles[id]
}

// LookupAs returns the object registered under id if it has type T.
func LookupAs[T any](id uintptr) (T, bool) {
	v, ok := Lookup(id).(T)
	return v, ok
}

// Unregister removes id. Unregistering an unknown id is a no-op.
//
// Thread-safe.
func Unregister(id uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(handles, id)
}

// Count returns the number of registered handles.
// Tests use it to check that nothing leaks.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(handles)
}
