//go:build ios || android || !(amd64 || arm64)

package dyte

import (
	"fmt"
	"runtime"

	"github.com/dyte-io/dyte-go/internal/native"
)

func loadCore(Config) (native.Core, error) {
	return nil, fmt.Errorf("%w: %s/%s is not supported; inject a core with WithCore", ErrNotLoaded, runtime.GOOS, runtime.GOARCH)
}

func coreLoaded() bool { return false }

func setNativeLogCallback(func(int32, string)) error { return ErrNotLoaded }

func setNativeLogLevel(int32) error { return ErrNotLoaded }
