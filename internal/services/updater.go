package services

import (
	"context"
	"time"

	. "leansync-jira/internal/common"
	. "leansync-jira/internal/interfaces"
	"leansync-jira/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
)

type resourceUpdater struct {
	client *resty.Client
	logger arbor.ILogger
}

// NewResourceUpdater creates the HTTP collaborator that writes outbound
// properties to external resources
func NewResourceUpdater(config *SyncConfig, logger arbor.ILogger) ResourceUpdater {
	client := resty.New().
		SetTimeout(time.Duration(config.RequestTimeout)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &resourceUpdater{
		client: client,
		logger: logger,
	}
}

// UpdateResource PUTs the properties, keyed by their Clark names, to the
// resource URI. Any 2xx response is success.
func (u *resourceUpdater) UpdateResource(ctx context.Context, update *models.ResourceUpdate) error {
	if update == nil || update.URI == "" {
		return NewTransportError("RESOURCE_URI", "resource update requires a URI")
	}

	body := make(map[string]string, len(update.Properties))
	for q, v := range update.Properties {
		body[q.String()] = v
	}

	req := u.client.R().
		SetContext(ctx).
		SetHeaders(update.Headers).
		SetBody(body)
	if update.Username != "" {
		req.SetBasicAuth(update.Username, update.Password)
	}

	resp, err := req.Put(update.URI)
	if err != nil {
		return NewTransportError("RESOURCE_REQUEST", "failed to update resource").
			WithContext("uri", update.URI).WithCause(err)
	}

	if !resp.IsSuccess() {
		return NewTransportError("RESOURCE_STATUS", "resource update rejected").
			WithContext("uri", update.URI).
			WithContext("status", resp.StatusCode()).
			WithDetails(resp.Status())
	}

	u.logger.Debug().
		Str("uri", update.URI).
		Int("properties", len(body)).
		Int("status", resp.StatusCode()).
		Msg("External resource updated")

	return nil
}
