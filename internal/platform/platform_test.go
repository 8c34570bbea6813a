//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestIs64Bit(t *testing.T) {
	if !Is64Bit {
		t.Error("platform should be 64-bit")
	}
}

func TestLibraryFileName(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "libmobilecore.so"},
		{"freebsd", "libmobilecore.so"},
		{"darwin", "libmobilecore.dylib"},
		{"windows", "mobilecore.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := LibraryFileName(tt.goos, "mobilecore"); got != tt.want {
				t.Errorf("LibraryFileName(%q) = %q, want %q", tt.goos, got, tt.want)
			}
		})
	}
}

func TestSearchPathsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := SearchPaths("dyteshim", dir)

	if len(paths) < 2 {
		t.Fatalf("expected several candidates, got %v", paths)
	}

	file := LibraryFileName(runtime.GOOS, "dyteshim")
	if paths[0] != filepath.Join(dir, file) {
		t.Errorf("explicit dir should come first, got %q", paths[0])
	}
	if paths[len(paths)-1] != file {
		t.Errorf("bare filename should come last, got %q", paths[len(paths)-1])
	}
}

func TestSearchPathsSkipsEmptyDirs(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("loader path layout checked on linux only")
	}
	t.Setenv("LD_LIBRARY_PATH", "")

	paths := SearchPaths("mobilecore", "", "")
	file := LocalLibraryFileName("mobilecore")
	for _, p := range paths[:len(paths)-1] {
		if p == file {
			t.Errorf("empty dir produced a bare candidate before the end: %v", paths)
		}
	}
}
