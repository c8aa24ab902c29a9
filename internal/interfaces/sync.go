package interfaces

import (
	"context"

	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
)

type Storage interface {
	SaveMappingDocument(data []byte) error
	LoadMappingDocument() ([]byte, error)
	LoadPreviousMappingDocument() ([]byte, error)
	SaveRound(record *models.RoundRecord) error
	LoadRounds(issueKey string) ([]*models.RoundRecord, error)
	ClearRounds(issueKey string) (int, error)
	Close() error
}

// ResourceUpdater pushes outbound properties to an external resource
type ResourceUpdater interface {
	UpdateResource(ctx context.Context, update *models.ResourceUpdate) error
}

// EventPublisher fans round outcomes out to listeners
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

// SyncService is the round orchestration used by the HTTP handlers
type SyncService interface {
	HandleIssueEvent(ctx context.Context, req *OutboundRequest) (*models.RoundRecord, error)
	ApplyExternal(ctx context.Context, req *InboundRequest) (*models.RoundRecord, error)
	ShouldSynchronize(projectID, issueTypeID string, event *models.ChangeEvent) bool
	ReloadMapping(data []byte) error
	Configurations() []*mapping.Configuration
}

// OutboundRequest describes an issue event to push to linked resources
type OutboundRequest struct {
	Issue  *models.Issue       `json:"issue"`
	Event  *models.ChangeEvent `json:"event,omitempty"`
	Action string              `json:"action"`
	// Links are the URIs of the external resources linked to the issue
	Links    []string `json:"links,omitempty"`
	Selected []string `json:"selected,omitempty"`
}

// InboundRequest describes an external resource to apply to an issue
type InboundRequest struct {
	Issue       *models.Issue     `json:"issue"`
	ResourceURI string            `json:"resource_uri"`
	Properties  map[string]string `json:"properties"`
	Action      string            `json:"action"`
	Selected    []string          `json:"selected,omitempty"`
}

type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
