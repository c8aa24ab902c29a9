package models

import "time"

// Sync directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// RoundRecord is the persisted outcome of one synchronization round
type RoundRecord struct {
	ID          string           `json:"id"`
	IssueKey    string           `json:"issue_key"`
	ProjectID   string           `json:"project_id"`
	IssueTypeID string           `json:"issue_type_id"`
	Direction   string           `json:"direction"`
	Action      string           `json:"action"`
	Started     time.Time        `json:"started"`
	Duration    time.Duration    `json:"duration"`
	Skipped     bool             `json:"skipped"`
	SkipReason  string           `json:"skip_reason,omitempty"`
	Failed      bool             `json:"failed"`
	Errors      string           `json:"errors,omitempty"`
	Warnings    string           `json:"warnings,omitempty"`
	Writes      WriteSet         `json:"writes,omitempty"`
	Properties  map[QName]string `json:"properties,omitempty"`
	Resources   []string         `json:"resources,omitempty"`
}

// ResourceUpdate is the outbound document handed to the transport collaborator
type ResourceUpdate struct {
	URI        string
	Properties map[QName]string
	Username   string
	Password   string
	Headers    map[string]string
}
