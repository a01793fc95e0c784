// Package storage provides the whole-file JSON snapshot persistence
// every store in aegis uses: one pretty-printed UTF-8 JSON document per
// logical store, rewritten in full on every mutation. There are no
// transactions and no cross-file consistency; last writer wins.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Load reads the JSON document at path into v. A missing file is not an
// error: v is left untouched and ok is false. A malformed file is
// logged and treated as empty, per the store error policy.
func Load(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("⚠️ [STORAGE] Discarding unreadable store %s: %v", path, err)
		return false, nil
	}
	return true, nil
}

// Save writes v to path as a pretty-printed JSON document. The write
// goes through a temp file in the same directory followed by a rename,
// so readers never observe a half-written snapshot.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
