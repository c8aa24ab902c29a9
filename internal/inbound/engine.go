// Package inbound applies an external resource to an issue through an
// inbound mapping, producing the issue write-set of a sync round.
package inbound

import (
	"fmt"

	"leansync-jira/internal/fields"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
	"leansync-jira/internal/synclog"
	"leansync-jira/internal/transform"
	"leansync-jira/internal/xmlpath"
)

// Options are the per-deployment settings of an inbound round
type Options struct {
	PlaceholderPrefix string
	PlaceholderSuffix string
	ValueSeparator    string
	// LineSeparator joins multiple XML path matches
	LineSeparator string
	MaxTextLength int
	// Selected restricts the issue fields a round may write; nil allows all
	Selected models.Selection
}

// Result is the outcome of one inbound round before finalization
type Result struct {
	Writes     models.WriteSet
	Log        *synclog.Accumulator
	AlwaysSave map[string]bool
}

type engine struct {
	mapping *mapping.Mapping
	action  mapping.Action
	opts    Options
	buffers map[string]string
	res     *Result
}

// Apply runs the inbound mapping m over resource for action. Every
// directive is processed even when earlier ones fail; failures land in the
// result's accumulator keyed by the directive's target field.
func Apply(resource *models.ExternalResource, m *mapping.Mapping, action mapping.Action, opts Options) *Result {
	res := &Result{
		Writes:     models.WriteSet{},
		Log:        synclog.New(),
		AlwaysSave: m.AlwaysSaveFields(),
	}
	if m == nil {
		return res
	}

	e := &engine{
		mapping: m,
		action:  action,
		opts:    opts,
		buffers: make(map[string]string, len(m.Templates)),
		res:     res,
	}
	for _, t := range m.Templates {
		e.buffers[t.ID] = t.Text
	}

	for _, f := range m.Fields {
		e.process(f, resource.Property(f.Property))
	}

	for _, x := range m.XMLFields {
		e.processXML(x, resource.Property(x.Property))
	}

	for _, t := range m.Templates {
		e.writeTemplate(t)
	}
	return res
}

// processXML feeds every nested field of x with its path matches. A field
// without matches is fed an empty string so the target is cleared.
func (e *engine) processXML(x *mapping.XMLFieldConfig, raw string) {
	doc, err := xmlpath.Parse(raw)
	if err != nil {
		e.res.Log.Errors.AddField(x.Property.String(), err.Error())
		return
	}
	for _, f := range x.Fields {
		values := xmlpath.Values(doc, f.XPath, f.KeepTags)
		e.process(f, transform.JoinValues(values, e.opts.LineSeparator))
	}
}

// process runs one directive. A panic while handling it is contained and
// logged like any other field failure.
func (e *engine) process(f *mapping.Field, raw string) {
	defer func() {
		if r := recover(); r != nil {
			e.res.Log.Errors.AddField(f.Target(), fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	value, warnings := f.Convert(raw)
	for _, w := range warnings {
		e.res.Log.Warnings.AddField(f.Target(), w)
	}

	if f.IssueField != "" && f.Action.Matches(e.action) && e.opts.Selected.Allows(f.IssueField) {
		out := value
		if f.ContentType == mapping.ContentHTML {
			out = transform.WrapHTML(out)
		}
		e.write(f.IssueField, out)
	}

	if f.PlaceholderID != "" {
		for _, t := range e.mapping.Templates {
			if !t.Action.Matches(e.action) || !f.Feeds(t) {
				continue
			}
			e.buffers[t.ID] = transform.Substitute(e.buffers[t.ID], e.opts.PlaceholderPrefix, f.PlaceholderID,
				e.opts.PlaceholderSuffix, value)
		}
	}
}

func (e *engine) writeTemplate(t *mapping.Template) {
	if t.IssueField == "" || !t.Action.Matches(e.action) || !e.opts.Selected.Allows(t.IssueField) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.res.Log.Errors.AddField(t.IssueField, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	text := e.buffers[t.ID]
	if t.ContentType == mapping.ContentHTML {
		text = transform.WrapHTML(text)
	}
	e.write(t.IssueField, text)
}

func (e *engine) write(target, value string) {
	if fields.IsTextTarget(target) {
		value = e.res.Log.Truncate(target, value, e.opts.MaxTextLength)
	}
	if err := fields.WriteIssueField(e.res.Writes, target, value, e.opts.ValueSeparator); err != nil {
		e.res.Log.Errors.AddField(target, err.Error())
	}
}
