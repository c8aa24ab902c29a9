// Package fields holds the canonical issue field names and the dispatch
// table that reads them from an issue snapshot and writes them to a write-set.
package fields

// Canonical field names
const (
	IssueID             = "IssueId"
	IssueKey            = "IssueKey"
	ProjectID           = "ProjectId"
	ProjectKey          = "ProjectKey"
	IssueTypeID         = "IssueTypeId"
	IssueTypeName       = "IssueTypeName"
	Summary             = "Summary"
	Description         = "Description"
	Environment         = "Environment"
	StatusID            = "StatusId"
	StatusName          = "StatusName"
	PriorityID          = "PriorityId"
	PriorityName        = "PriorityName"
	ResolutionID        = "ResolutionId"
	ResolutionName      = "ResolutionName"
	AssigneeID          = "AssigneeId"
	AssigneeName        = "AssigneeName"
	ReporterID          = "ReporterId"
	ReporterName        = "ReporterName"
	CreatorID           = "CreatorId"
	CreatorName         = "CreatorName"
	Labels              = "Labels"
	ComponentIDs        = "ComponentIds"
	ComponentNames      = "ComponentNames"
	AffectsVersionIDs   = "AffectsVersionIds"
	AffectsVersionNames = "AffectsVersionNames"
	FixVersionIDs       = "FixVersionIds"
	FixVersionNames     = "FixVersionNames"
	DueDate             = "DueDate"
	Created             = "Created"
	Updated             = "Updated"
	ResolutionDate      = "ResolutionDate"
	OriginalEstimate    = "OriginalEstimate"
	RemainingEstimate   = "RemainingEstimate"
	TimeSpent           = "TimeSpent"
	SecurityLevelID     = "SecurityLevelId"
	ParentID            = "ParentId"
	Comments            = "Comments"
)

// UnknownTarget names a failing directive that declares no target field
const UnknownTarget = "Unknown value for mapTo"

// DueDateLayout is the tracker's storage layout for due dates
const DueDateLayout = "2006-01-02"
