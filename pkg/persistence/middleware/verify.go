package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/ports"
)

type verifyMiddleware struct {
	ports.MachineStore
	regs *callable.Registries
}

// NewVerifyMiddleware rejects machines that do not decode with regs before
// they reach the store.
func NewVerifyMiddleware(regs *callable.Registries) Middleware {
	return func(next ports.MachineStore) ports.MachineStore {
		return &verifyMiddleware{MachineStore: next, regs: regs}
	}
}

func (m *verifyMiddleware) Save(ctx context.Context, name string, data []byte) error {
	if _, err := fsm.DecodeMachine(data, m.regs); err != nil {
		return fmt.Errorf("refusing to save machine %q: %w", name, err)
	}
	return m.MachineStore.Save(ctx, name, data)
}
