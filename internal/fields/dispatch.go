package fields

import (
	"leansync-jira/internal/models"
	"leansync-jira/internal/transform"
)

// ReadIssueField resolves name against issue. Canonical names go through
// the dispatch table; any other name is read as a custom field and
// converted to text. ok is false when name is neither, so callers can skip
// the directive.
func ReadIssueField(issue *models.Issue, name, sep string) (value string, ok bool) {
	if e, found := Lookup(name); found {
		return e.Read(issue, sep), true
	}
	raw, found := issue.CustomField(name)
	if !found {
		return "", false
	}
	return transform.Stringify(raw, sep), true
}

// WriteIssueField records value for name. Canonical names use their table
// write behaviour; other names are custom fields taking text.
func WriteIssueField(ws models.WriteSet, name, value, sep string) error {
	if e, found := Lookup(name); found {
		return e.Write(ws, value, sep)
	}
	ws.SetText(name, value)
	return nil
}

// IsTextTarget reports whether writes to name are subject to the text
// length limit: free-text canonical fields and every custom field.
func IsTextTarget(name string) bool {
	if e, found := Lookup(name); found {
		return e.Text
	}
	return true
}
