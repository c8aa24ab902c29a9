// Package mapping holds the parsed LeanSync mapping configuration and the
// registry that resolves it per project and issue type.
package mapping

import (
	"fmt"
	"strings"

	"leansync-jira/internal/fields"
	"leansync-jira/internal/models"
	"leansync-jira/internal/xmlpath"
)

// Action restricts a directive to issue creation, update, or both
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionUndef  Action = "UNDEF"
)

// ParseAction reads an action; an empty value means UNDEF
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ActionUndef:
		return ActionUndef, nil
	case ActionCreate:
		return ActionCreate, nil
	case ActionUpdate:
		return ActionUpdate, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Matches reports whether a directive with action a applies to a round
// running requested. UNDEF matches anything, otherwise the actions must be
// equal.
func (a Action) Matches(requested Action) bool {
	return a == ActionUndef || a == "" || a == requested
}

// ContentType tags directive values as HTML or plain text
type ContentType string

const (
	ContentText ContentType = "TEXT"
	ContentHTML ContentType = "HTML"
)

// ParseContentType reads a content type; empty means plain text
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ContentText, "PLAIN":
		return ContentText, nil
	case ContentHTML:
		return ContentHTML, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// Field is a single field directive. Property is the external side and
// IssueField the issue side; the mapping direction decides which is source.
type Field struct {
	Property   models.QName
	IssueField string
	Action     Action

	// NotifyOnChange false keeps changes of IssueField from triggering a sync
	NotifyOnChange bool
	AlwaysSave     bool

	Values       map[string]string
	DateFrom     string
	DateTo       string
	DurationFrom string
	DurationTo   string
	EncodeHTML   bool
	DecodeHTML   bool
	ContentType  ContentType

	// TemplateID limits substitution to one template; empty feeds every
	// compatible template carrying the placeholder.
	TemplateID    string
	PlaceholderID string

	// XPath and KeepTags are set on fields nested in an XMLFieldConfig
	XPath    *xmlpath.Path
	KeepTags bool
}

// Target returns the issue field name used in messages
func (f *Field) Target() string {
	if f.IssueField == "" {
		return fields.UnknownTarget
	}
	return f.IssueField
}

// HasDateFormat reports whether both date patterns are configured
func (f *Field) HasDateFormat() bool {
	return f.DateFrom != "" && f.DateTo != ""
}

// HasDurationUnits reports whether both duration units are configured
func (f *Field) HasDurationUnits() bool {
	return f.DurationFrom != "" && f.DurationTo != ""
}

// Feeds reports whether the field substitutes into template t
func (f *Field) Feeds(t *Template) bool {
	if f.PlaceholderID == "" {
		return false
	}
	return f.TemplateID == "" || f.TemplateID == t.ID
}

// Template is a text blob populated by placeholder substitution
type Template struct {
	ID             string
	Property       models.QName
	IssueField     string
	Text           string
	ContentType    ContentType
	Action         Action
	NotifyOnChange bool
	AlwaysSave     bool
}

// XMLFieldConfig groups fields extracted from one XML-valued property
type XMLFieldConfig struct {
	Property models.QName
	Fields   []*Field
}

// Mapping is one direction of a configuration
type Mapping struct {
	Fields    []*Field
	Templates []*Template
	XMLFields []*XMLFieldConfig

	// Credentials and headers are only used by the transport collaborator
	Username string
	Password string
	Headers  map[string]string
}

// AllFields returns flat fields followed by XML-nested fields
func (m *Mapping) AllFields() []*Field {
	if m == nil {
		return nil
	}
	out := make([]*Field, 0, len(m.Fields))
	out = append(out, m.Fields...)
	for _, x := range m.XMLFields {
		out = append(out, x.Fields...)
	}
	return out
}

// AlwaysSaveFields returns the issue fields flagged to persist on error
func (m *Mapping) AlwaysSaveFields() map[string]bool {
	out := map[string]bool{}
	if m == nil {
		return out
	}
	for _, f := range m.AllFields() {
		if f.AlwaysSave && f.IssueField != "" {
			out[f.IssueField] = true
		}
	}
	for _, t := range m.Templates {
		if t.AlwaysSave && t.IssueField != "" {
			out[t.IssueField] = true
		}
	}
	return out
}

// Configuration is the mapping of one project for a set of issue types
type Configuration struct {
	ProjectID string
	// IssueTypes lists applicable issue type ids; empty applies to all
	IssueTypes []string
	ErrorLog   string
	Inbound    *Mapping
	Outbound   *Mapping
	// Domains restricts which resource URIs receive outbound updates;
	// empty allows every resource.
	Domains []string
}

// IsConfigured reports whether the configuration maps anything at all
func (c *Configuration) IsConfigured() bool {
	return c != nil && (c.Inbound != nil || c.Outbound != nil)
}

// AppliesTo reports whether the configuration covers issueTypeID
func (c *Configuration) AppliesTo(issueTypeID string) bool {
	if len(c.IssueTypes) == 0 {
		return true
	}
	for _, t := range c.IssueTypes {
		if t == issueTypeID {
			return true
		}
	}
	return false
}

// AllowsResource reports whether uri may receive outbound updates
func (c *Configuration) AllowsResource(uri string) bool {
	if len(c.Domains) == 0 {
		return true
	}
	for _, d := range c.Domains {
		if strings.HasPrefix(uri, d) {
			return true
		}
	}
	return false
}
