package ports

import (
	"context"

	"github.com/idwallet/lwsd/internal/core/domain"
)

const (
	// ActionLogKindRPC is the kind of action log entries emitted by the
	// service.
	ActionLogKindRPC = "ON_RPC"
	// ActionLogAdd ...
	ActionLogAdd = "actionLogs_add"
)

// ActionLogger is an optional sink for human readable action log entries.
type ActionLogger interface {
	Append(
		ctx context.Context, kind, source, action string, entry domain.ActionLog,
	) error
}
