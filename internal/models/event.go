package models

// Field types carried by change-log items
const (
	FieldTypeNative = "jira"
	FieldTypeCustom = "custom"
)

// ChangeEvent describes an issue-side change. A nil *ChangeEvent means the
// round was triggered externally and always synchronizes.
type ChangeEvent struct {
	// ChangeLog is nil when the tracker supplied no structured change info
	ChangeLog    *ChangeLog `json:"change_log,omitempty"`
	CommentAdded bool       `json:"comment_added"`
	WorklogAdded bool       `json:"worklog_added"`
}

// ChangeLog lists the items changed by one issue update
type ChangeLog struct {
	Items []ChangedItem `json:"items"`
}

// ChangedItem is one changed field as reported by the tracker
type ChangedItem struct {
	Field     string `json:"field"`
	FieldType string `json:"field_type"`
	OldValue  string `json:"old_value,omitempty"`
	NewValue  string `json:"new_value,omitempty"`
}

// IsNative reports whether the item names a built-in tracker field
func (c ChangedItem) IsNative() bool {
	return c.FieldType == FieldTypeNative
}
