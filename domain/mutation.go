package domain

// TaskMutation is a committed backend-side change, handed to the notification
// dispatcher strictly after the commit. Change is set for updates only.
type TaskMutation struct {
	Kind   MutationKind
	Task   Task
	User   User
	Change *FieldChange
}
