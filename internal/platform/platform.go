//go:build !ios && !android && (amd64 || arm64)

// Package platform resolves shared library names and search locations for
// the Dyte mobile core and its shim.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit. purego callbacks and the
// Kotlin/Native stable pointer layout both assume it.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryFileName returns the shared library filename for name on goos.
//
// Examples:
//   - linux:   LibraryFileName("linux", "mobilecore")   -> "libmobilecore.so"
//   - darwin:  LibraryFileName("darwin", "mobilecore")  -> "libmobilecore.dylib"
//   - windows: LibraryFileName("windows", "mobilecore") -> "mobilecore.dll"
func LibraryFileName(goos, name string) string {
	switch goos {
	case "darwin":
		return "lib" + name + ".dylib"
	case "windows":
		return name + ".dll"
	default:
		return "lib" + name + ".so"
	}
}

// LocalLibraryFileName is LibraryFileName for the running OS.
func LocalLibraryFileName(name string) string {
	return LibraryFileName(runtime.GOOS, name)
}

// SearchPaths returns candidate paths for the library called name, most
// specific first: explicit directories, the loader path variables, the
// executable's directory, then standard system locations. The bare filename
// comes last so the system loader gets a final chance to resolve it.
func SearchPaths(name string, dirs ...string) []string {
	file := LocalLibraryFileName(name)

	var candidates []string
	for _, d := range dirs {
		if d != "" {
			candidates = append(candidates, filepath.Join(d, file))
		}
	}

	for _, d := range loaderPathDirs() {
		candidates = append(candidates, filepath.Join(d, file))
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, file),
			filepath.Join(exeDir, "..", "lib", file),
		)
	}

	for _, d := range systemDirs() {
		candidates = append(candidates, filepath.Join(d, file))
	}

	return append(candidates, file)
}

func loaderPathDirs() []string {
	var v string
	switch runtime.GOOS {
	case "darwin":
		v = os.Getenv("DYLD_LIBRARY_PATH")
	case "windows":
		v = os.Getenv("PATH")
	default:
		v = os.Getenv("LD_LIBRARY_PATH")
	}
	if v == "" {
		return nil
	}
	return filepath.SplitList(v)
}

func systemDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/opt/homebrew/lib", "/usr/local/lib"}
	case "windows":
		return nil
	default:
		return []string{
			"/usr/local/lib",
			"/usr/lib",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
		}
	}
}
