package listing

import "context"

// ActionKind names a row action.
type ActionKind string

const (
	ActionEdit         ActionKind = "edit"
	ActionDelete       ActionKind = "delete"
	ActionToggleStatus ActionKind = "toggle_status"
	ActionCustom       ActionKind = "custom"
)

// Action is a row-level mutation dispatched through a Binder.
type Action struct {
	Kind ActionKind
	ID   string
	// Confirmed must be set for delete actions; the confirmation step lives in the view.
	Confirmed bool
	// Success overrides the notice shown after the action completes.
	Success string
	Run     func(ctx context.Context) error
}

// RequiresConfirmation reports whether the action is destructive.
func (a Action) RequiresConfirmation() bool {
	return a.Kind == ActionDelete
}

func (a Action) successMessage() string {
	if a.Success != "" {
		return a.Success
	}
	switch a.Kind {
	case ActionDelete:
		return "Deleted successfully."
	case ActionToggleStatus:
		return "Status updated."
	default:
		return "Saved successfully."
	}
}
