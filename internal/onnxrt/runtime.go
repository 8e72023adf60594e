// Package onnxrt bootstraps the shared ONNX Runtime library exactly once
// per process.
//
// Grounded on ai/gigaam.go's initONNXRuntime: the env-var-first, then
// well-known-path fallback, guarded by a sync.Once instead of a manual
// mutex+bool pair.
package onnxrt

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	once    sync.Once
	initErr error
)

// searchPaths are well-known install locations checked when
// ONNXRUNTIME_SHARED_LIBRARY_PATH is unset.
var searchPaths = []string{
	"./libonnxruntime.so",
	"./libonnxruntime.so.1",
	"/usr/lib/libonnxruntime.so",
	"/usr/local/lib/libonnxruntime.so",
	"./libonnxruntime.dylib",
	"/usr/local/lib/libonnxruntime.dylib",
}

// Ensure initializes the ONNX Runtime environment on first call and is a
// no-op on every subsequent call, including after a prior failure — callers
// retry by restarting the process, matching the teacher's one-shot init.
func Ensure(logger *slog.Logger) error {
	once.Do(func() {
		initErr = initialize(logger)
	})
	return initErr
}

func initialize(logger *slog.Logger) error {
	libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")

	if libPath == "" {
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				libPath = path
				break
			}
		}
	}

	if libPath == "" {
		return fmt.Errorf("onnxrt: ONNX Runtime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH")
	}

	logger.Info("loading ONNX Runtime", "path", libPath)
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnxrt: initialize environment: %w", err)
	}

	logger.Info("ONNX Runtime initialized")
	return nil
}
