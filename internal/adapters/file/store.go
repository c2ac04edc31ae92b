package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/ports"
)

// Ext is the extension of serialized machine files.
const Ext = ".pbfsm"

// Store implements ports.MachineStore using the local filesystem.
// Each machine is one <name>.pbfsm file in BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".wca/machines".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".wca", "machines")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+Ext)
}

// Save writes the machine atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure machine directory: %w", err)
	}

	// Same directory as the destination, rename is only atomic within one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*"+Ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to read machine file: %w", err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}

	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete machine file: %w", err)
	}
	return nil
}

// List returns the names of all machine files, skipping leftovers of
// interrupted saves.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	var names []string
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || filepath.Ext(fname) != Ext || strings.HasPrefix(fname, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(fname, Ext))
	}
	sort.Strings(names)
	return names, nil
}
