package models

// ActionType identifies one of the supported action kinds.
type ActionType string

const (
	ActionSendMessage      ActionType = "send_message"
	ActionSendNotification ActionType = "send_notification"
	ActionSlackNotify      ActionType = "slack_notify"
	ActionSuggestAction    ActionType = "suggest_action"
	ActionScheduleFollowup ActionType = "schedule_followup"
	ActionUpdateStatus     ActionType = "update_status"
	ActionUpdateField      ActionType = "update_field"
	ActionCreateTask       ActionType = "create_task"
	ActionAssignTo         ActionType = "assign_to"
	ActionWebhook          ActionType = "webhook"
	ActionGenerateReport   ActionType = "generate_report"
)

// ActionItem is one configured action inside a rule (or nested once
// inside a schedule_followup's config). Config shape depends on Type and
// is validated against the factory schema at rule load.
type ActionItem struct {
	Type   ActionType     `json:"type"   validate:"required"`
	Config map[string]any `json:"config"`
}

// ActionResult is the uniform outcome of executing one action.
type ActionResult struct {
	Type    ActionType     `json:"type"`
	Success bool           `json:"success"`
	Result  map[string]any `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Failure builds a failed result with a message.
func Failure(t ActionType, msg string) ActionResult {
	return ActionResult{Type: t, Success: false, Error: msg}
}

// Success builds a successful result with an optional payload.
func SuccessResult(t ActionType, result map[string]any) ActionResult {
	return ActionResult{Type: t, Success: true, Result: result}
}
