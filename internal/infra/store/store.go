// Package store provides the shared flat-file persistence layer. Every
// artifact the engine and the selection intake share on disk goes through
// this package: writes stage under a temporary name and land with a single
// rename, and both directions carry a small bounded retry to absorb a
// concurrent reader or writer hitting the file mid-swap.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// maxRetries bounds read and write attempts on shared files.
	maxRetries = 5

	// retryDelay is the pause between attempts.
	retryDelay = 10 * time.Millisecond
)

// writeFileAtomic writes data to path via a temp file and rename, retrying
// transient failures. On exhaustion the temp file is cleaned up and the last
// error returned.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
			lastErr = err
		} else if err := fs.Rename(tmp, path); err != nil {
			lastErr = err
		} else {
			return nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if err := fs.Remove(tmp); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("path", tmp).Msg("Temp file cleanup failed")
	}
	return fmt.Errorf("atomic write of %s failed after %d attempts: %w", path, maxRetries, lastErr)
}

// readFileRetry reads path, retrying transient failures. A missing file is
// not retried; it returns os.ErrNotExist immediately.
func readFileRetry(fs afero.Fs, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		data, err := afero.ReadFile(fs, path)
		if err == nil {
			return data, nil
		}
		if os.IsNotExist(err) {
			return nil, err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("read of %s failed after %d attempts: %w", path, maxRetries, lastErr)
}

// WriteJSON marshals v and writes it atomically to path.
func WriteJSON(fs afero.Fs, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return writeFileAtomic(fs, path, data)
}

// ReadJSON reads path and unmarshals it into v. Returns os.ErrNotExist when
// the file is absent.
func ReadJSON(fs afero.Fs, path string, v any) error {
	data, err := readFileRetry(fs, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
