// Package storage groups data access by domain.
package storage

import (
	"github.com/gatherhall/server/internal/domain/events"
	"github.com/gatherhall/server/internal/domain/users"
)

// Repository is the full data-access surface. It embeds events.Store so
// the orchestration layer can run transactions spanning events,
// participants, and the audit ledger.
type Repository interface {
	events.Store
	Users() users.Repository
}
