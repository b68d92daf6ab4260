// Package audit records who did what to which entity. The trail is
// append-only: entries are never edited or deleted.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names the operations that leave an audit entry.
type Action string

const (
	ActionCreate  Action = "create"
	ActionApprove Action = "approve"
	ActionPost    Action = "post"
	ActionCancel  Action = "cancel"
	ActionReverse Action = "reverse"
	ActionRevise  Action = "revise"
	ActionClose   Action = "close"
)

// Entry is one row in the audit trail.
type Entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Actor     string
	Action    Action
	Entity    string // entity kind, e.g. "transaction"
	EntityID  uuid.UUID
	Detail    string
}

// Log is the append-only sink entries are written to.
type Log interface {
	Append(ctx context.Context, entries ...Entry) error
	// List returns entries for one entity in insertion order.
	List(ctx context.Context, entityID uuid.UUID) ([]Entry, error)
}

// NewEntry stamps a fresh entry with id and timestamp.
func NewEntry(actor string, action Action, entity string, entityID uuid.UUID, detail string) Entry {
	return Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detail,
	}
}
