package shared

import (
	"context"

	"github.com/google/uuid"
)

// AuditAction names a mutation recorded in the audit trail.
type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionAllocate AuditAction = "allocate"
	AuditActionVoid     AuditAction = "void"
	AuditActionCancel   AuditAction = "cancel"
	AuditActionPost     AuditAction = "post"
	AuditActionSend     AuditAction = "send"
)

// AuditEntry is one audit trail record.
type AuditEntry struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     AuditAction
	OldValues  map[string]any
	NewValues  map[string]any
}

// AuditLogger is the audit trail collaborator. Callers invoke it after the
// business transaction committed; an error here never undoes the mutation.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry) error
}

// NoopAuditLogger discards entries.
type NoopAuditLogger struct{}

// Log implements AuditLogger
func (NoopAuditLogger) Log(context.Context, AuditEntry) error { return nil }
