package fields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"leansync-jira/internal/models"
	"leansync-jira/internal/transform"
)

// Reader extracts the text form of a field from an issue snapshot.
// Multi-valued fields are joined with sep.
type Reader func(issue *models.Issue, sep string) string

// Writer records value for the field called name in ws.
type Writer func(ws models.WriteSet, name, value, sep string) error

// Entry is one row of the field dispatch table
type Entry struct {
	Name string
	// Labels are the tracker's change-log labels for this field
	Labels []string
	// Text marks free-text fields subject to length limits
	Text bool
	// Inert entries accept writes but never change the issue, because the
	// tracker does not allow changing them after creation.
	Inert bool

	read  Reader
	write Writer
}

// Read returns the field value of issue
func (e Entry) Read(issue *models.Issue, sep string) string {
	if issue == nil {
		return ""
	}
	return e.read(issue, sep)
}

// Write records value in ws using the entry's write behaviour
func (e Entry) Write(ws models.WriteSet, value, sep string) error {
	return e.write(ws, e.Name, value, sep)
}

var entries = []Entry{
	{Name: IssueID, read: func(i *models.Issue, _ string) string { return i.ID }, write: inert, Inert: true},
	{Name: IssueKey, Labels: []string{"Key"}, read: func(i *models.Issue, _ string) string { return i.Key }, write: inert, Inert: true},
	{Name: ProjectID, Labels: []string{"project"}, read: func(i *models.Issue, _ string) string { return i.ProjectID }, write: inert, Inert: true},
	{Name: ProjectKey, read: func(i *models.Issue, _ string) string { return i.ProjectKey }, write: inert, Inert: true},
	{Name: IssueTypeID, Labels: []string{"issuetype"}, read: func(i *models.Issue, _ string) string { return i.IssueTypeID }, write: writeText},
	{Name: IssueTypeName, Labels: []string{"issuetype"}, read: func(i *models.Issue, _ string) string { return i.IssueTypeName }, write: writeText},
	{Name: Summary, Labels: []string{"summary"}, Text: true, read: func(i *models.Issue, _ string) string { return i.Summary }, write: writeRequiredText},
	{Name: Description, Labels: []string{"description"}, Text: true, read: func(i *models.Issue, _ string) string { return i.Description }, write: writeText},
	{Name: Environment, Labels: []string{"environment"}, Text: true, read: func(i *models.Issue, _ string) string { return i.Environment }, write: writeText},
	{Name: StatusID, Labels: []string{"status"}, read: func(i *models.Issue, _ string) string { return i.StatusID }, write: inert, Inert: true},
	{Name: StatusName, Labels: []string{"status"}, read: func(i *models.Issue, _ string) string { return i.StatusName }, write: inert, Inert: true},
	{Name: PriorityID, Labels: []string{"priority"}, read: func(i *models.Issue, _ string) string { return i.PriorityID }, write: writeText},
	{Name: PriorityName, Labels: []string{"priority"}, read: func(i *models.Issue, _ string) string { return i.PriorityName }, write: writeText},
	{Name: ResolutionID, Labels: []string{"resolution"}, read: func(i *models.Issue, _ string) string { return i.ResolutionID }, write: writeText},
	{Name: ResolutionName, Labels: []string{"resolution"}, read: func(i *models.Issue, _ string) string { return i.ResolutionName }, write: writeText},
	{Name: AssigneeID, Labels: []string{"assignee"}, read: func(i *models.Issue, _ string) string { return i.AssigneeID }, write: writeText},
	{Name: AssigneeName, Labels: []string{"assignee"}, read: func(i *models.Issue, _ string) string { return i.AssigneeName }, write: writeText},
	{Name: ReporterID, Labels: []string{"reporter"}, read: func(i *models.Issue, _ string) string { return i.ReporterID }, write: writeText},
	{Name: ReporterName, Labels: []string{"reporter"}, read: func(i *models.Issue, _ string) string { return i.ReporterName }, write: writeText},
	{Name: CreatorID, Labels: []string{"creator"}, read: func(i *models.Issue, _ string) string { return i.CreatorID }, write: inert, Inert: true},
	{Name: CreatorName, Labels: []string{"creator"}, read: func(i *models.Issue, _ string) string { return i.CreatorName }, write: inert, Inert: true},
	{Name: Labels, Labels: []string{"labels"}, read: func(i *models.Issue, sep string) string { return transform.JoinValues(i.Labels, sep) }, write: writeLabels},
	{Name: ComponentIDs, Labels: []string{"Component"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefIDs(i.Components), sep)
	}, write: writeList},
	{Name: ComponentNames, Labels: []string{"Component"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefNames(i.Components), sep)
	}, write: writeList},
	{Name: AffectsVersionIDs, Labels: []string{"Version"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefIDs(i.AffectsVersions), sep)
	}, write: writeList},
	{Name: AffectsVersionNames, Labels: []string{"Version"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefNames(i.AffectsVersions), sep)
	}, write: writeList},
	{Name: FixVersionIDs, Labels: []string{"Fix Version"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefIDs(i.FixVersions), sep)
	}, write: writeList},
	{Name: FixVersionNames, Labels: []string{"Fix Version"}, read: func(i *models.Issue, sep string) string {
		return transform.JoinValues(models.RefNames(i.FixVersions), sep)
	}, write: writeList},
	{Name: DueDate, Labels: []string{"duedate"}, read: func(i *models.Issue, _ string) string { return i.DueDate }, write: writeDate},
	{Name: Created, read: func(i *models.Issue, _ string) string { return i.Created }, write: inert, Inert: true},
	{Name: Updated, read: func(i *models.Issue, _ string) string { return i.Updated }, write: inert, Inert: true},
	{Name: ResolutionDate, Labels: []string{"resolutiondate"}, read: func(i *models.Issue, _ string) string { return i.ResolutionDate }, write: inert, Inert: true},
	{Name: OriginalEstimate, Labels: []string{"timeoriginalestimate"}, read: func(i *models.Issue, _ string) string { return seconds(i.OriginalEstimate) }, write: writeSeconds},
	{Name: RemainingEstimate, Labels: []string{"timeestimate"}, read: func(i *models.Issue, _ string) string { return seconds(i.RemainingEstimate) }, write: writeSeconds},
	{Name: TimeSpent, Labels: []string{"timespent"}, read: func(i *models.Issue, _ string) string { return seconds(i.TimeSpent) }, write: inert, Inert: true},
	{Name: SecurityLevelID, Labels: []string{"security"}, read: func(i *models.Issue, _ string) string { return i.SecurityLevelID }, write: writeText},
	{Name: ParentID, Labels: []string{"Parent"}, read: func(i *models.Issue, _ string) string { return i.ParentID }, write: inert, Inert: true},
	{Name: Comments, Labels: []string{"Comment"}, Text: true, read: readComments, write: writeComment},
}

var byName = func() map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	return out
}()

var byLabel = func() map[string][]string {
	out := make(map[string][]string)
	for _, e := range entries {
		for _, l := range e.Labels {
			key := strings.ToLower(l)
			out[key] = append(out[key], e.Name)
		}
	}
	return out
}()

// Lookup returns the dispatch entry of a canonical field name
func Lookup(name string) (Entry, bool) {
	e, ok := byName[name]
	return e, ok
}

// IsCanonical reports whether name is a canonical field name
func IsCanonical(name string) bool {
	_, ok := byName[name]
	return ok
}

// All returns every entry in table order
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// FromTrackerLabel returns the canonical names a tracker change-log label
// stands for. Several canonical names can share a label, e.g. "assignee"
// covers AssigneeId and AssigneeName.
func FromTrackerLabel(label string) []string {
	names := byLabel[strings.ToLower(strings.TrimSpace(label))]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func inert(models.WriteSet, string, string, string) error {
	return nil
}

func writeText(ws models.WriteSet, name, value, _ string) error {
	ws.SetText(name, value)
	return nil
}

func writeRequiredText(ws models.WriteSet, name, value, _ string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	ws.SetText(name, value)
	return nil
}

func writeList(ws models.WriteSet, name, value, sep string) error {
	ws.SetList(name, transform.SplitValues(value, sep))
	return nil
}

// labels may not contain spaces, so whitespace separates them as well
func writeLabels(ws models.WriteSet, name, value, sep string) error {
	var out []string
	for _, item := range transform.SplitValues(value, sep) {
		out = append(out, strings.Fields(item)...)
	}
	ws.SetList(name, append([]string{}, out...))
	return nil
}

func writeDate(ws models.WriteSet, name, value, _ string) error {
	value = strings.TrimSpace(value)
	if value != "" {
		if _, err := time.Parse(DueDateLayout, value); err != nil {
			return fmt.Errorf("%s expects a date as %s, got %q", name, DueDateLayout, value)
		}
	}
	ws.SetText(name, value)
	return nil
}

func writeSeconds(ws models.WriteSet, name, value, _ string) error {
	value = strings.TrimSpace(value)
	if value != "" {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%s expects a non-negative number of seconds, got %q", name, value)
		}
		value = strconv.FormatInt(int64(n), 10)
	}
	ws.SetText(name, value)
	return nil
}

// an inbound comment is added to the issue, so empty text writes nothing
func writeComment(ws models.WriteSet, name, value, _ string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	ws.SetText(name, value)
	return nil
}

func readComments(i *models.Issue, sep string) string {
	bodies := make([]string, 0, len(i.Comments))
	for _, c := range i.Comments {
		bodies = append(bodies, c.Body)
	}
	return transform.JoinValues(bodies, sep)
}

func seconds(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
