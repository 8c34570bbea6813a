//go:build !ios && !android && (amd64 || arm64)

package dyte

import (
	"errors"
	"fmt"

	"github.com/dyte-io/dyte-go/internal/bindings"
	"github.com/dyte-io/dyte-go/internal/native"
)

func loadCore(cfg Config) (native.Core, error) {
	err := bindings.Load(bindings.Paths{Core: cfg.LibPath, Shim: cfg.ShimPath})
	switch {
	case err == nil:
	case errors.Is(err, bindings.ErrLibraryNotFound):
		return nil, fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}

	core, err := bindings.NewCore()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return core, nil
}

func coreLoaded() bool {
	return bindings.IsLoaded()
}

func setNativeLogCallback(cb func(level int32, msg string)) error {
	if err := bindings.SetLogCallback(cb); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return nil
}

func setNativeLogLevel(level int32) error {
	if err := bindings.SetLogLevel(level); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return nil
}
