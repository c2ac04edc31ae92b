package ports

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/wca/pkg/domain"
)

// MachineStore persists serialized machines, keyed by machine name.
type MachineStore interface {
	// Save stores data under name, replacing any previous version.
	Save(ctx context.Context, name string, data []byte) error

	// Load retrieves the machine stored under name.
	// Returns domain.ErrMachineNotFound if it does not exist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the machine. Deleting a missing machine is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored machine names in sorted order.
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that are empty or could escape a storage
// namespace.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", domain.ErrInvalidMachineName)
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q", domain.ErrInvalidMachineName, name)
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return fmt.Errorf("%w: %q contains control characters", domain.ErrInvalidMachineName, name)
	}
	return nil
}
