package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/fakeyudi/asklog/internal/fileutil"
)

// ErrNotInstalled is returned by Load when no receipt exists on disk.
var ErrNotInstalled = errors.New("asklog is not installed")

// ReceiptStore persists a Receipt to disk.
type ReceiptStore interface {
	Save(r *Receipt) error
	Load() (*Receipt, error) // returns ErrNotInstalled if none exists
	Delete() error
}

// diskStore is the concrete ReceiptStore that writes under the config directory.
type diskStore struct {
	path string // full path to receipt.json
}

// NewReceiptStore returns a ReceiptStore writing <dir>/receipt.json.
func NewReceiptStore(dir string) (ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "receipt.json")}, nil
}

// Save marshals r to JSON and writes it atomically.
func (d *diskStore) Save(r *Receipt) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist install receipt: %w", err)
	}
	if err := fileutil.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to persist install receipt: %w", err)
	}
	return nil
}

// Load reads and unmarshals the receipt.
// Returns ErrNotInstalled if the file does not exist.
func (d *diskStore) Load() (*Receipt, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInstalled
		}
		return nil, fmt.Errorf("failed to read install receipt: %w", err)
	}

	var r Receipt
	if err := sonic.ConfigStd.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse install receipt: %w", err)
	}
	return &r, nil
}

// Delete removes the receipt from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete install receipt: %w", err)
	}
	return nil
}
