//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyte-io/dyte-go/internal/platform"
)

func TestLoadLibrary_MissingOverride(t *testing.T) {
	dir := t.TempDir()

	_, _, err := loadLibrary(CoreLibraryName, dir)
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound, got %v", err)
	}
}

func TestLoadLibrary_NotALibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), platform.LocalLibraryFileName(CoreLibraryName))
	if err := os.WriteFile(path, []byte("not a real library"), 0o644); err != nil {
		t.Fatalf("write fake library: %v", err)
	}

	_, _, err := loadLibrary(CoreLibraryName, path)
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound for unloadable file, got %v", err)
	}
}

func TestDirOf(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "libdyteshim.so")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if got := dirOf(file); got != dir {
		t.Errorf("dirOf(file) = %q, want %q", got, dir)
	}
	if got := dirOf(dir); got != dir {
		t.Errorf("dirOf(dir) = %q, want %q", got, dir)
	}
	if got := dirOf(""); got != "" {
		t.Errorf("dirOf(\"\") = %q", got)
	}
}

func TestFindLibrary(t *testing.T) {
	// Passes whether or not libmobilecore is installed.
	path, err := FindLibrary(CoreLibraryName)
	if err != nil {
		if !errors.Is(err, ErrLibraryNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Logf("libmobilecore not found (expected if not installed): %v", err)
		return
	}
	if !filepath.IsAbs(path) {
		t.Errorf("FindLibrary returned relative path %q", path)
	}
}

func TestNewCoreBeforeLoad(t *testing.T) {
	if IsLoaded() {
		t.Skip("libraries already loaded")
	}
	if _, err := NewCore(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if err := SetLogLevel(0); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestTaken(t *testing.T) {
	if taken(true) != 1 || taken(false) != 0 {
		t.Error("taken must map true to 1 and false to 0")
	}
}

// Integration test - only runs if libmobilecore and the shim are available.
func TestLoadMobileCore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping library load in short mode")
	}
	if _, err := FindLibrary(CoreLibraryName); err != nil {
		t.Skip("libmobilecore not installed")
	}

	if err := Load(Paths{}); err != nil {
		t.Skipf("libraries not loadable: %v", err)
	}
	if !IsLoaded() {
		t.Error("IsLoaded should be true after successful Load")
	}
	t.Logf("libmobilecore loaded from %s, shim %s", CorePath(), ShimStatus())
}
