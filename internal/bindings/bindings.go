//go:build !ios && !android && (amd64 || arm64)

// Package bindings loads libmobilecore and the dyteshim helper with purego
// and exposes them as a native.Core.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dyte-io/dyte-go/internal/platform"
	"github.com/dyte-io/dyte-go/internal/shim"
	"github.com/ebitengine/purego"
)

// ErrNotLoaded is returned when the core is used before Load().
var ErrNotLoaded = errors.New("dyte: mobilecore library not loaded; call dyte.Init() first")

// ErrLibraryNotFound is returned when libmobilecore or the shim cannot be found.
var ErrLibraryNotFound = errors.New("dyte: mobilecore library not found")

// CoreLibraryName is the base name of the Kotlin/Native core library.
const CoreLibraryName = "mobilecore"

// Paths overrides where Load looks for the libraries. Each field may name a
// file or a directory; empty means the default search.
type Paths struct {
	Core string
	Shim string
}

var (
	libCore  uintptr
	corePath string

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// IsLoaded returns true if the libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load opens libmobilecore, then the shim, and installs the callback
// trampolines. It is safe to call multiple times; only the first call's
// paths are used.
func Load(paths Paths) error {
	loadOnce.Do(func() {
		loadErr = doLoad(paths)
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad(paths Paths) error {
	// The core must be loaded first and globally: the shim resolves
	// libmobilecore_symbols against it.
	lib, path, err := loadLibrary(CoreLibraryName, paths.Core)
	if err != nil {
		return fmt.Errorf("loading libmobilecore: %w", err)
	}
	libCore, corePath = lib, path

	if err := shim.Load(dirOf(paths.Shim)); err != nil {
		if errors.Is(err, shim.ErrShimNotFound) {
			return fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
		}
		return fmt.Errorf("loading dyteshim: %w", err)
	}

	installCallbacks()
	return nil
}

// loadLibrary opens name, trying override first when it is set.
func loadLibrary(name, override string) (uintptr, string, error) {
	var candidates []string
	if override != "" {
		if st, err := os.Stat(override); err == nil && !st.IsDir() {
			candidates = []string{override}
		} else {
			candidates = []string{filepath.Join(override, platform.LocalLibraryFileName(name))}
		}
	} else {
		candidates = platform.SearchPaths(name)
	}

	var lastErr error
	for _, path := range candidates {
		lib, err := tryOpen(path)
		if err == nil {
			return lib, path, nil
		}
		lastErr = err
	}
	return 0, "", fmt.Errorf("%w: %s (last error: %v)", ErrLibraryNotFound, name, lastErr)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// dirOf turns a shim override into the directory the shim package expects.
func dirOf(p string) string {
	if p == "" {
		return ""
	}
	if st, err := os.Stat(p); err == nil && !st.IsDir() {
		return filepath.Dir(p)
	}
	return p
}

// FindLibrary returns the first existing path for name. It is useful for
// diagnostics.
func FindLibrary(name string) (string, error) {
	for _, path := range platform.SearchPaths(name) {
		if !filepath.IsAbs(path) {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibCore returns the libmobilecore handle.
func LibCore() uintptr {
	return libCore
}

// CorePath returns the path libmobilecore was loaded from.
func CorePath() string {
	return corePath
}

// ShimStatus describes the shim load state.
func ShimStatus() string {
	return shim.Status()
}
