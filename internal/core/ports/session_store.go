package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// SessionStore keeps dashboard sessions. Get returns domain.ErrSessionNotFound
// for unknown or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
