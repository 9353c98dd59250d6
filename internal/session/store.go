package session

import (
	"context"

	"github.com/puchkadas/orderbot/internal/domain"
)

// Store owns all live sessions, keyed by user id. GetOrCreate reports
// whether the session was created by this call so the caller can send the
// welcome message exactly once. Delete is idempotent.
//
// The store itself only promises per-call consistency; strict per-user
// ordering is the dispatcher's job.
type Store interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Session, bool, error)
	Save(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, userID string) error
}
