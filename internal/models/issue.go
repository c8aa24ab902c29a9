package models

// Issue is a read-only snapshot of a tracked issue as seen by one sync round
type Issue struct {
	ID            string `json:"id"`
	Key           string `json:"key"`
	ProjectID     string `json:"project_id"`
	ProjectKey    string `json:"project_key"`
	IssueTypeID   string `json:"issue_type_id"`
	IssueTypeName string `json:"issue_type_name"`

	Summary     string `json:"summary"`
	Description string `json:"description"`
	Environment string `json:"environment"`

	StatusID       string `json:"status_id"`
	StatusName     string `json:"status_name"`
	PriorityID     string `json:"priority_id"`
	PriorityName   string `json:"priority_name"`
	ResolutionID   string `json:"resolution_id"`
	ResolutionName string `json:"resolution_name"`

	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	ReporterID   string `json:"reporter_id"`
	ReporterName string `json:"reporter_name"`
	CreatorID    string `json:"creator_id"`
	CreatorName  string `json:"creator_name"`

	Labels          []string   `json:"labels,omitempty"`
	Components      []NamedRef `json:"components,omitempty"`
	AffectsVersions []NamedRef `json:"affects_versions,omitempty"`
	FixVersions     []NamedRef `json:"fix_versions,omitempty"`

	// DueDate uses the tracker date layout (2006-01-02); the other
	// timestamps are RFC 3339.
	DueDate        string `json:"due_date"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	ResolutionDate string `json:"resolution_date"`

	// Time tracking values in seconds; nil means not set
	OriginalEstimate  *int64 `json:"original_estimate,omitempty"`
	RemainingEstimate *int64 `json:"remaining_estimate,omitempty"`
	TimeSpent         *int64 `json:"time_spent,omitempty"`

	SecurityLevelID string `json:"security_level_id"`
	ParentID        string `json:"parent_id"`

	Comments     []Comment              `json:"comments,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// NamedRef is an id/name pair for components and versions
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment represents an issue comment
type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

// CustomField returns the raw value of a custom field and whether the issue
// carries it at all.
func (i *Issue) CustomField(name string) (interface{}, bool) {
	if i == nil || i.CustomFields == nil {
		return nil, false
	}
	v, ok := i.CustomFields[name]
	return v, ok
}

// RefIDs returns the ids of refs in order
func RefIDs(refs []NamedRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

// RefNames returns the names of refs in order
func RefNames(refs []NamedRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}
