// Package storage is the durable single-key store for the last-connected
// wallet address. A plain text file stands in for the browser's local storage:
// read at startup, written on connect, deleted on disconnect.
package storage

import (
	"fmt"
	"os"
	"strings"
)

// FileStore persists one wallet address in a flat file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the persisted address, or "" if none is stored.
func (s *FileStore) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write persists the address, replacing any previous value.
func (s *FileStore) Write(address string) error {
	if err := os.WriteFile(s.path, []byte(address+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes the persisted address. Missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
