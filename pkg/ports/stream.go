package ports

import (
	"context"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/session"
)

// StreamPort is what transports need to drive sessions.
// *session.Manager implements it.
type StreamPort interface {
	Create(sessionID string) (session.Snapshot, error)
	Feed(ctx context.Context, sessionID string, frame domain.Frame) (domain.Instruction, session.Snapshot, error)
	Current(sessionID string) (session.Snapshot, error)
	Reset(sessionID string) (session.Snapshot, error)
	Delete(sessionID string) error
	List() []string
}

var _ StreamPort = (*session.Manager)(nil)
