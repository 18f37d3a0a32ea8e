package types

import "fmt"

// ActionStatus represents the lifecycle status of an action. The values are
// the wire representation stored in the remote collections and must not be
// changed without a data migration.
type ActionStatus string

const (
	ActionStatusNotViewed        ActionStatus = "nao_visualizada"
	ActionStatusNotStarted       ActionStatus = "nao_iniciada"
	ActionStatusPending          ActionStatus = "pendente"
	ActionStatusAwaitingApproval ActionStatus = "aguardando_aprovacao"
	ActionStatusDelayed          ActionStatus = "atrasado"
	ActionStatusCompleted        ActionStatus = "concluido"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusNotViewed,
		ActionStatusNotStarted,
		ActionStatusPending,
		ActionStatusAwaitingApproval,
		ActionStatusDelayed,
		ActionStatusCompleted,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusNotViewed,
		ActionStatusNotStarted,
		ActionStatusPending,
		ActionStatusAwaitingApproval,
		ActionStatusDelayed,
		ActionStatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// Emoji returns a marker used in chat notifications
func (s ActionStatus) Emoji() string {
	switch s {
	case ActionStatusCompleted:
		return ":white_check_mark:"
	case ActionStatusDelayed:
		return ":warning:"
	case ActionStatusAwaitingApproval:
		return ":hourglass:"
	default:
		return ":clipboard:"
	}
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
