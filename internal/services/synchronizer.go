package services

import (
	"context"
	"os"
	"time"

	. "leansync-jira/internal/common"
	"leansync-jira/internal/inbound"
	. "leansync-jira/internal/interfaces"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
	"leansync-jira/internal/notify"
	"leansync-jira/internal/outbound"
	"leansync-jira/internal/synclog"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// Event types published after each round
const (
	EventRoundCompleted = "round_completed"
	EventMappingLoaded  = "mapping_loaded"
)

// Skip reasons recorded on rounds that did not run
const (
	SkipNotConfigured = "no configuration for project and issue type"
	SkipNoMapping     = "no mapping for direction"
	SkipNotNotified   = "no notified field changed"
)

// Synchronizer runs sync rounds against the current mapping registry
type Synchronizer struct {
	config    *SyncConfig
	registry  *mapping.Registry
	resolver  *mapping.Resolver
	storage   Storage
	updater   ResourceUpdater
	publisher EventPublisher
	logger    arbor.ILogger
	now       func() time.Time
}

// NewSynchronizer creates a synchronizer with an empty registry. The
// publisher may be nil.
func NewSynchronizer(config *SyncConfig, storage Storage, updater ResourceUpdater, publisher EventPublisher, logger arbor.ILogger) *Synchronizer {
	registry := mapping.NewRegistry()
	return &Synchronizer{
		config:    config,
		registry:  registry,
		resolver:  mapping.NewResolver(registry),
		storage:   storage,
		updater:   updater,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// LoadStoredMapping loads the persisted mapping document, falling back to
// the configured mapping file when storage holds none. It returns the
// number of configurations loaded.
func (s *Synchronizer) LoadStoredMapping() (int, error) {
	data, err := s.storage.LoadMappingDocument()
	if err != nil {
		return 0, WrapError(err, ErrorTypeStorage, "MAPPING_LOAD", "failed to load mapping document")
	}

	if len(data) > 0 {
		if err := s.registry.Load(data); err != nil {
			return 0, err
		}
		s.logger.Info().Int("configurations", s.registry.Len()).Msg("Mapping loaded from storage")
		return s.registry.Len(), nil
	}

	if s.config.MappingFile == "" {
		s.logger.Warn().Msg("No mapping document configured, all rounds will be skipped")
		return 0, nil
	}

	data, err = os.ReadFile(s.config.MappingFile)
	if err != nil {
		return 0, NewConfigurationError("MAPPING_FILE", "failed to read mapping file").
			WithContext("path", s.config.MappingFile).WithCause(err)
	}
	if err := s.ReloadMapping(data); err != nil {
		return 0, err
	}
	return s.registry.Len(), nil
}

// ReloadMapping validates data and, when valid, persists it and swaps it
// in. On failure nothing changes.
func (s *Synchronizer) ReloadMapping(data []byte) error {
	cfgs, err := mapping.Parse(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Mapping document rejected")
		return err
	}

	if err := s.storage.SaveMappingDocument(data); err != nil {
		return NewStorageError("MAPPING_SAVE", "failed to persist mapping document").WithCause(err)
	}

	s.registry.Replace(cfgs)
	s.logger.Info().Int("configurations", len(cfgs)).Msg("Mapping reloaded")
	s.publish(EventMappingLoaded, map[string]interface{}{"configurations": len(cfgs)})
	return nil
}

// Configurations returns the active configurations
func (s *Synchronizer) Configurations() []*mapping.Configuration {
	return s.registry.Configurations()
}

// ShouldSynchronize reports whether event on an issue of the given project
// and type touches a notified field
func (s *Synchronizer) ShouldSynchronize(projectID, issueTypeID string, event *models.ChangeEvent) bool {
	cfg, ok := s.resolver.Resolve(projectID, issueTypeID)
	if !ok {
		return false
	}
	return notify.ShouldSynchronize(cfg, event)
}

// HandleIssueEvent runs an outbound round: the issue is rendered through
// the outbound mapping and pushed to every linked resource.
func (s *Synchronizer) HandleIssueEvent(ctx context.Context, req *OutboundRequest) (*models.RoundRecord, error) {
	if req == nil || req.Issue == nil {
		return nil, NewValidationError("ROUND_ISSUE", "outbound round requires an issue")
	}
	action, err := mapping.ParseAction(req.Action)
	if err != nil {
		return nil, NewValidationError("ROUND_ACTION", "invalid action").WithCause(err)
	}

	issue := req.Issue
	record := s.newRecord(issue, models.DirectionOutbound, action)

	cfg, ok := s.resolver.Resolve(issue.ProjectID, issue.IssueTypeID)
	if !ok {
		return s.skip(record, SkipNotConfigured), nil
	}
	if cfg.Outbound == nil {
		return s.skip(record, SkipNoMapping), nil
	}
	if !notify.ShouldSynchronize(cfg, req.Event) {
		return s.skip(record, SkipNotNotified), nil
	}

	res := outbound.Build(issue, cfg.Outbound, action, s.outboundOptions(req.Selected))

	for _, uri := range req.Links {
		if !cfg.AllowsResource(uri) {
			res.Log.Warnf(uri, "resource outside configured domains, not updated")
			continue
		}
		update := &models.ResourceUpdate{
			URI:        uri,
			Properties: res.Properties,
			Username:   cfg.Outbound.Username,
			Password:   cfg.Outbound.Password,
			Headers:    cfg.Outbound.Headers,
		}
		if err := s.updater.UpdateResource(ctx, update); err != nil {
			res.Log.Errorf(uri, "%v", err)
			continue
		}
		record.Resources = append(record.Resources, uri)
	}

	outcome := synclog.Finalize(res.Writes, res.Log, synclog.Policy{
		ErrorLogField: cfg.ErrorLog,
		AlwaysSave:    cfg.Outbound.AlwaysSaveFields(),
	})
	record.Properties = res.Properties
	return s.complete(record, outcome, res.Log), nil
}

// ApplyExternal runs an inbound round: the external resource is mapped
// onto the issue and the resulting write-set is returned on the record.
func (s *Synchronizer) ApplyExternal(ctx context.Context, req *InboundRequest) (*models.RoundRecord, error) {
	if req == nil || req.Issue == nil {
		return nil, NewValidationError("ROUND_ISSUE", "inbound round requires an issue")
	}
	action, err := mapping.ParseAction(req.Action)
	if err != nil {
		return nil, NewValidationError("ROUND_ACTION", "invalid action").WithCause(err)
	}

	props := make(map[models.QName]string, len(req.Properties))
	for k, v := range req.Properties {
		q, err := models.ParseQName(k)
		if err != nil {
			return nil, NewValidationError("ROUND_PROPERTY", "invalid property name").
				WithContext("property", k).WithCause(err)
		}
		props[q] = v
	}

	issue := req.Issue
	record := s.newRecord(issue, models.DirectionInbound, action)

	cfg, ok := s.resolver.Resolve(issue.ProjectID, issue.IssueTypeID)
	if !ok {
		return s.skip(record, SkipNotConfigured), nil
	}
	if cfg.Inbound == nil {
		return s.skip(record, SkipNoMapping), nil
	}

	resource := models.NewExternalResource(req.ResourceURI, props)
	res := inbound.Apply(resource, cfg.Inbound, action, s.inboundOptions(req.Selected))
	if req.ResourceURI != "" {
		record.Resources = []string{req.ResourceURI}
	}

	outcome := synclog.Finalize(res.Writes, res.Log, synclog.Policy{
		ErrorLogField: cfg.ErrorLog,
		AlwaysSave:    res.AlwaysSave,
	})
	return s.complete(record, outcome, res.Log), nil
}

func (s *Synchronizer) newRecord(issue *models.Issue, direction string, action mapping.Action) *models.RoundRecord {
	return &models.RoundRecord{
		ID:          uuid.New().String(),
		IssueKey:    issue.Key,
		ProjectID:   issue.ProjectID,
		IssueTypeID: issue.IssueTypeID,
		Direction:   direction,
		Action:      string(action),
		Started:     s.now(),
	}
}

func (s *Synchronizer) skip(record *models.RoundRecord, reason string) *models.RoundRecord {
	record.Skipped = true
	record.SkipReason = reason
	record.Duration = s.now().Sub(record.Started)

	s.logger.Debug().
		Str("issue", record.IssueKey).
		Str("direction", record.Direction).
		Str("reason", reason).
		Msg("Sync round skipped")
	return record
}

func (s *Synchronizer) complete(record *models.RoundRecord, outcome synclog.Outcome, acc *synclog.Accumulator) *models.RoundRecord {
	record.Writes = outcome.Writes
	record.Failed = outcome.Failed
	record.Errors = acc.Errors.String()
	record.Warnings = acc.Warnings.String()
	record.Duration = s.now().Sub(record.Started)

	if record.Failed {
		s.logger.Warn().
			Str("round", record.ID).
			Str("issue", record.IssueKey).
			Str("errors", record.Errors).
			Msg("Sync round failed field parsing")
	}
	s.logger.Info().
		Str("round", record.ID).
		Str("issue", record.IssueKey).
		Str("direction", record.Direction).
		Str("action", record.Action).
		Int("writes", len(record.Writes)).
		Int("errors", acc.Errors.Len()).
		Int("warnings", acc.Warnings.Len()).
		Dur("duration", record.Duration).
		Msg("Sync round completed")

	if record.IssueKey != "" {
		if err := s.storage.SaveRound(record); err != nil {
			s.logger.Error().Err(err).Str("round", record.ID).Msg("Failed to record sync round")
		}
	}

	s.publish(EventRoundCompleted, record)
	return record
}

func (s *Synchronizer) publish(eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, data)
	}
}

func (s *Synchronizer) outboundOptions(selected []string) outbound.Options {
	return outbound.Options{
		PlaceholderPrefix: s.config.PlaceholderPrefix,
		PlaceholderSuffix: s.config.PlaceholderSuffix,
		ValueSeparator:    s.config.ValueSeparator,
		MaxTextLength:     s.config.MaxTextLength,
		Selected:          selection(selected),
	}
}

func (s *Synchronizer) inboundOptions(selected []string) inbound.Options {
	return inbound.Options{
		PlaceholderPrefix: s.config.PlaceholderPrefix,
		PlaceholderSuffix: s.config.PlaceholderSuffix,
		ValueSeparator:    s.config.ValueSeparator,
		LineSeparator:     s.config.LineSeparator,
		MaxTextLength:     s.config.MaxTextLength,
		Selected:          selection(selected),
	}
}

func selection(fields []string) models.Selection {
	if len(fields) == 0 {
		return nil
	}
	return models.NewSelection(fields...)
}
