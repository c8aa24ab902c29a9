// Package notify decides whether an issue change warrants a sync round.
package notify

import (
	"leansync-jira/internal/fields"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
)

// NotNotified returns the issue fields whose changes must not trigger a
// sync: the error-log field plus every inbound target whose directive has
// notifyChange disabled.
func NotNotified(cfg *mapping.Configuration) map[string]bool {
	set := map[string]bool{}
	if cfg == nil {
		return set
	}
	if cfg.ErrorLog != "" {
		set[cfg.ErrorLog] = true
	}
	if cfg.Inbound == nil {
		return set
	}
	for _, f := range cfg.Inbound.AllFields() {
		if !f.NotifyOnChange && f.IssueField != "" {
			set[f.IssueField] = true
		}
	}
	for _, t := range cfg.Inbound.Templates {
		if !t.NotifyOnChange && t.IssueField != "" {
			set[t.IssueField] = true
		}
	}
	return set
}

// ShouldSynchronize reports whether event warrants a sync round under cfg.
// A nil event always synchronizes.
//
// The decision is an inverted allow-list: a change triggers a sync unless
// every changed field is in the not-notified set.
func ShouldSynchronize(cfg *mapping.Configuration, event *models.ChangeEvent) bool {
	if event == nil || event.WorklogAdded {
		return true
	}

	suppressed := NotNotified(cfg)

	if event.CommentAdded && !suppressed[fields.Comments] {
		return true
	}

	// without change details, sync only when nothing is deliberately suppressed
	if event.ChangeLog == nil || len(event.ChangeLog.Items) == 0 {
		return len(suppressed) == 0
	}

	for _, item := range event.ChangeLog.Items {
		if !isSuppressed(item, suppressed) {
			return true
		}
	}
	return false
}

func isSuppressed(item models.ChangedItem, suppressed map[string]bool) bool {
	if item.IsNative() {
		if names := fields.FromTrackerLabel(item.Field); len(names) > 0 {
			for _, n := range names {
				if suppressed[n] {
					return true
				}
			}
			return false
		}
	}
	return suppressed[item.Field]
}
