// Package outbound renders the outbound document of a sync round from an
// issue snapshot.
package outbound

import (
	"leansync-jira/internal/fields"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
	"leansync-jira/internal/synclog"
	"leansync-jira/internal/transform"
)

// Options are the per-deployment settings of a build
type Options struct {
	PlaceholderPrefix string
	PlaceholderSuffix string
	ValueSeparator    string
	MaxTextLength     int
	// Selected restricts the issue fields a build may write; nil allows all
	Selected models.Selection
}

// Snapshot is one template's rendered text
type Snapshot struct {
	Template *mapping.Template
	Text     string
}

// Result is the outcome of one build
type Result struct {
	// Properties are the extended properties of the outbound document
	Properties map[models.QName]string
	// Writes are direct issue field writes from templates with mapTo
	Writes    models.WriteSet
	Snapshots []Snapshot
	Log       *synclog.Accumulator
}

// Build evaluates every field directive of m against issue, substitutes
// the values into the templates compatible with action, and returns the
// outbound properties plus template field writes.
func Build(issue *models.Issue, m *mapping.Mapping, action mapping.Action, opts Options) *Result {
	res := &Result{
		Properties: make(map[models.QName]string),
		Writes:     models.WriteSet{},
		Log:        synclog.New(),
	}
	if m == nil {
		return res
	}

	buffers := make(map[string]string, len(m.Templates))
	for _, t := range m.Templates {
		buffers[t.ID] = t.Text
	}

	for _, f := range m.Fields {
		value, ok := fields.ReadIssueField(issue, f.IssueField, opts.ValueSeparator)
		if !ok {
			// unknown names are skipped
			continue
		}
		if !fields.IsCanonical(f.IssueField) {
			value = res.Log.Truncate(f.IssueField, value, opts.MaxTextLength)
		}

		value, warnings := f.Convert(value)
		for _, w := range warnings {
			res.Log.Warnings.AddField(f.Target(), w)
		}

		if f.PlaceholderID != "" {
			for _, t := range m.Templates {
				if !t.Action.Matches(action) || !f.Feeds(t) {
					continue
				}
				buffers[t.ID] = transform.Substitute(buffers[t.ID], opts.PlaceholderPrefix, f.PlaceholderID,
					opts.PlaceholderSuffix, forContent(value, t.ContentType))
			}
		}

		if !f.Property.IsZero() && f.Action.Matches(action) {
			res.Properties[f.Property] = forContent(value, f.ContentType)
		}
	}

	for _, t := range m.Templates {
		if !t.Action.Matches(action) {
			continue
		}
		text := buffers[t.ID]
		res.Snapshots = append(res.Snapshots, Snapshot{Template: t, Text: text})
		if !t.Property.IsZero() {
			res.Properties[t.Property] = text
		}
		if t.IssueField != "" && opts.Selected.Allows(t.IssueField) {
			writeField(res, t.IssueField, text, opts)
		}
	}
	return res
}

// forContent formats a plain value for HTML content
func forContent(value string, ct mapping.ContentType) string {
	if ct == mapping.ContentHTML {
		return transform.HTMLLineBreaks(value)
	}
	return value
}

func writeField(res *Result, target, value string, opts Options) {
	if fields.IsTextTarget(target) {
		value = res.Log.Truncate(target, value, opts.MaxTextLength)
	}
	if err := fields.WriteIssueField(res.Writes, target, value, opts.ValueSeparator); err != nil {
		res.Log.Errors.AddField(target, err.Error())
	}
}
