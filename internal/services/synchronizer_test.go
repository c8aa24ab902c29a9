package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"leansync-jira/internal/common"
	"leansync-jira/internal/interfaces"
	"leansync-jira/internal/models"
)

const syncMapping = `<leansync>
	<configuration projectId="10000" issueTypes="1" errorLog="customfield_sync">
		<domain>https://rtc.example.com/</domain>
		<inbound>
			<field ns="dcterms" name="title" mapTo="Summary"/>
			<field ns="rtc" name="due" mapTo="DueDate"/>
		</inbound>
		<outbound username="sync" password="secret">
			<header name="OSLC-Core-Version" value="2.0"/>
			<field name="Summary" ns="dcterms" mapTo="title"/>
			<field name="StatusName" placeholder="ID1"/>
			<template id="status" ns="http://example.com/ns#" name="status">Status: &lt;&lt;ID1&gt;&gt;</template>
		</outbound>
	</configuration>
	<configuration projectId="20000">
		<inbound>
			<field ns="dcterms" name="title" mapTo="Summary"/>
		</inbound>
	</configuration>
</leansync>`

type memoryStorage struct {
	mu       sync.Mutex
	current  []byte
	previous []byte
	rounds   []*models.RoundRecord
	loadErr  error
}

func (m *memoryStorage) SaveMappingDocument(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previous, m.current = m.current, data
	return nil
}

func (m *memoryStorage) LoadMappingDocument() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.loadErr
}

func (m *memoryStorage) LoadPreviousMappingDocument() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous, nil
}

func (m *memoryStorage) SaveRound(record *models.RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, record)
	return nil
}

func (m *memoryStorage) LoadRounds(issueKey string) ([]*models.RoundRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.RoundRecord
	for _, r := range m.rounds {
		if r.IssueKey == issueKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStorage) ClearRounds(issueKey string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rounds[:0]
	count := 0
	for _, r := range m.rounds {
		if r.IssueKey == issueKey {
			count++
			continue
		}
		kept = append(kept, r)
	}
	m.rounds = kept
	return count, nil
}

func (m *memoryStorage) Close() error { return nil }

type recordingUpdater struct {
	updates []*models.ResourceUpdate
	fail    map[string]error
}

func (u *recordingUpdater) UpdateResource(_ context.Context, update *models.ResourceUpdate) error {
	u.updates = append(u.updates, update)
	return u.fail[update.URI]
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(eventType string, _ interface{}) {
	p.events = append(p.events, eventType)
}

type syncFixture struct {
	sync      *Synchronizer
	storage   *memoryStorage
	updater   *recordingUpdater
	publisher *recordingPublisher
}

func newSyncFixture(t *testing.T, doc string) *syncFixture {
	t.Helper()
	f := &syncFixture{
		storage:   &memoryStorage{},
		updater:   &recordingUpdater{fail: map[string]error{}},
		publisher: &recordingPublisher{},
	}
	f.sync = NewSynchronizer(testSyncConfig(), f.storage, f.updater, f.publisher, arbor.NewLogger())
	if doc != "" {
		require.NoError(t, f.sync.ReloadMapping([]byte(doc)))
	}
	return f
}

func outboundIssue() *models.Issue {
	return &models.Issue{
		Key:         "PRJ-1",
		ProjectID:   "10000",
		IssueTypeID: "1",
		Summary:     "Fix crash",
		StatusName:  "Open",
	}
}

func TestSynchronizer_ReloadMapping(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	assert.Len(t, f.sync.Configurations(), 2)
	assert.Equal(t, syncMapping, string(f.storage.current))
	assert.Equal(t, []string{EventMappingLoaded}, f.publisher.events)
}

func TestSynchronizer_ReloadMappingRejectsInvalidDocument(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	err := f.sync.ReloadMapping([]byte(`<leansync><configuration issueTypes="1"/></leansync>`))
	require.Error(t, err)
	assert.True(t, common.IsErrorType(err, common.ErrorTypeValidation))

	assert.Len(t, f.sync.Configurations(), 2, "previous mapping stays active")
	assert.Equal(t, syncMapping, string(f.storage.current), "invalid documents are not stored")
	assert.Len(t, f.publisher.events, 1)
}

func TestSynchronizer_LoadStoredMapping(t *testing.T) {
	t.Run("from storage", func(t *testing.T) {
		f := newSyncFixture(t, "")
		f.storage.current = []byte(syncMapping)

		n, err := f.sync.LoadStoredMapping()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("from mapping file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.xml")
		require.NoError(t, os.WriteFile(path, []byte(syncMapping), 0644))

		f := newSyncFixture(t, "")
		f.sync.config.MappingFile = path

		n, err := f.sync.LoadStoredMapping()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, syncMapping, string(f.storage.current), "file contents are persisted")
	})

	t.Run("nothing configured", func(t *testing.T) {
		f := newSyncFixture(t, "")

		n, err := f.sync.LoadStoredMapping()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing mapping file", func(t *testing.T) {
		f := newSyncFixture(t, "")
		f.sync.config.MappingFile = filepath.Join(t.TempDir(), "missing.xml")

		_, err := f.sync.LoadStoredMapping()
		assert.True(t, common.IsErrorType(err, common.ErrorTypeConfiguration))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newSyncFixture(t, "")
		f.storage.loadErr = errors.New("disk gone")

		_, err := f.sync.LoadStoredMapping()
		assert.True(t, common.IsErrorType(err, common.ErrorTypeStorage))
	})
}

func TestSynchronizer_ShouldSynchronize(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	assert.True(t, f.sync.ShouldSynchronize("10000", "1", nil))
	assert.False(t, f.sync.ShouldSynchronize("10000", "2", nil), "issue type not configured")
	assert.False(t, f.sync.ShouldSynchronize("99999", "1", nil))

	onlyStatus := &models.ChangeEvent{ChangeLog: &models.ChangeLog{Items: []models.ChangedItem{
		{Field: "customfield_sync", FieldType: models.FieldTypeCustom},
	}}}
	assert.False(t, f.sync.ShouldSynchronize("10000", "1", onlyStatus))
}

func TestSynchronizer_HandleIssueEventValidation(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	_, err := f.sync.HandleIssueEvent(context.Background(), &interfaces.OutboundRequest{})
	assert.True(t, common.IsErrorType(err, common.ErrorTypeValidation))

	_, err = f.sync.HandleIssueEvent(context.Background(), &interfaces.OutboundRequest{Issue: outboundIssue(), Action: "DELETE"})
	assert.True(t, common.IsErrorType(err, common.ErrorTypeValidation))
}

func TestSynchronizer_HandleIssueEventSkips(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	unconfigured := outboundIssue()
	unconfigured.ProjectID = "99999"

	inboundOnly := outboundIssue()
	inboundOnly.ProjectID = "20000"

	statusOnly := &models.ChangeEvent{ChangeLog: &models.ChangeLog{Items: []models.ChangedItem{
		{Field: "customfield_sync", FieldType: models.FieldTypeCustom},
	}}}

	tests := []struct {
		name   string
		req    *interfaces.OutboundRequest
		reason string
	}{
		{"unconfigured project", &interfaces.OutboundRequest{Issue: unconfigured}, SkipNotConfigured},
		{"no outbound mapping", &interfaces.OutboundRequest{Issue: inboundOnly}, SkipNoMapping},
		{"status change only", &interfaces.OutboundRequest{Issue: outboundIssue(), Event: statusOnly}, SkipNotNotified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := f.sync.HandleIssueEvent(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, record.Skipped)
			assert.Equal(t, tt.reason, record.SkipReason)
		})
	}

	assert.Empty(t, f.updater.updates)
	assert.Empty(t, f.storage.rounds, "skipped rounds are not recorded")
}

func TestSynchronizer_HandleIssueEvent(t *testing.T) {
	f := newSyncFixture(t, syncMapping)
	start := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	f.sync.now = func() time.Time { return start }

	record, err := f.sync.HandleIssueEvent(context.Background(), &interfaces.OutboundRequest{
		Issue:  outboundIssue(),
		Action: "update",
		Links:  []string{"https://rtc.example.com/ccm/resource/1", "https://other.example.com/resource/2"},
	})
	require.NoError(t, err)

	require.Len(t, f.updater.updates, 1, "resources outside the domains are not updated")
	update := f.updater.updates[0]
	assert.Equal(t, "https://rtc.example.com/ccm/resource/1", update.URI)
	assert.Equal(t, "sync", update.Username)
	assert.Equal(t, "secret", update.Password)
	assert.Equal(t, map[string]string{"OSLC-Core-Version": "2.0"}, update.Headers)
	assert.Equal(t, "Fix crash", update.Properties[models.PropTitle])
	assert.Equal(t, "Status: Open", update.Properties[models.NewQName("http://example.com/ns#", "status")])

	assert.False(t, record.Skipped)
	assert.False(t, record.Failed)
	assert.Equal(t, "UPDATE", record.Action)
	assert.Equal(t, models.DirectionOutbound, record.Direction)
	assert.Equal(t, []string{"https://rtc.example.com/ccm/resource/1"}, record.Resources)
	assert.True(t, strings.HasPrefix(record.Warnings, "https://other.example.com/resource/2: "))
	assert.Equal(t, models.TextValue(record.Warnings), record.Writes["customfield_sync"])
	assert.NotEmpty(t, record.ID)
	assert.True(t, record.Started.Equal(start))

	require.Len(t, f.storage.rounds, 1)
	assert.Equal(t, record, f.storage.rounds[0])
	assert.Equal(t, []string{EventMappingLoaded, EventRoundCompleted}, f.publisher.events)
}

func TestSynchronizer_HandleIssueEventTransportFailure(t *testing.T) {
	f := newSyncFixture(t, syncMapping)
	uri := "https://rtc.example.com/ccm/resource/1"
	f.updater.fail[uri] = common.NewTransportError("RESOURCE_STATUS", "resource update rejected")

	record, err := f.sync.HandleIssueEvent(context.Background(), &interfaces.OutboundRequest{
		Issue: outboundIssue(),
		Links: []string{uri},
	})
	require.NoError(t, err, "transport failures are logged on the round")

	assert.True(t, record.Failed)
	assert.Empty(t, record.Resources)
	assert.Contains(t, record.Errors, uri+": ")
	assert.Equal(t, []string{"customfield_sync"}, record.Writes.Fields())
}

func TestSynchronizer_ApplyExternal(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	record, err := f.sync.ApplyExternal(context.Background(), &interfaces.InboundRequest{
		Issue:       outboundIssue(),
		ResourceURI: "https://rtc.example.com/ccm/resource/1",
		Properties: map[string]string{
			"dcterms:title": "Renamed",
			"rtc:due":       "2024-12-31",
		},
		Action: "CREATE",
	})
	require.NoError(t, err)

	assert.False(t, record.Failed)
	assert.Equal(t, models.DirectionInbound, record.Direction)
	assert.Equal(t, models.WriteSet{
		"Summary":          models.TextValue("Renamed"),
		"DueDate":          models.TextValue("2024-12-31"),
		"customfield_sync": models.TextValue(""),
	}, record.Writes)
	assert.Equal(t, []string{"https://rtc.example.com/ccm/resource/1"}, record.Resources)
	assert.Len(t, f.storage.rounds, 1)
}

func TestSynchronizer_ApplyExternalFailedRound(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	record, err := f.sync.ApplyExternal(context.Background(), &interfaces.InboundRequest{
		Issue:      outboundIssue(),
		Properties: map[string]string{"dcterms:title": "Renamed", "rtc:due": "31/12/2024"},
	})
	require.NoError(t, err)

	assert.True(t, record.Failed)
	assert.True(t, strings.HasPrefix(record.Errors, "DueDate: "))
	assert.Equal(t, models.WriteSet{"customfield_sync": models.TextValue(record.Errors)}, record.Writes)
}

func TestSynchronizer_ApplyExternalValidation(t *testing.T) {
	f := newSyncFixture(t, syncMapping)

	_, err := f.sync.ApplyExternal(context.Background(), &interfaces.InboundRequest{
		Issue:      outboundIssue(),
		Properties: map[string]string{"{http://example.com/ns#}": "x"},
	})
	var se *common.SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ROUND_PROPERTY", se.Code)

	_, err = f.sync.ApplyExternal(context.Background(), nil)
	assert.True(t, common.IsErrorType(err, common.ErrorTypeValidation))
}

func TestSynchronizer_ApplyExternalSkipsWithoutInbound(t *testing.T) {
	doc := `<leansync><configuration projectId="10000"><outbound><field name="Summary" ns="dcterms" mapTo="title"/></outbound></configuration></leansync>`
	f := newSyncFixture(t, doc)

	record, err := f.sync.ApplyExternal(context.Background(), &interfaces.InboundRequest{Issue: outboundIssue()})
	require.NoError(t, err)
	assert.True(t, record.Skipped)
	assert.Equal(t, SkipNoMapping, record.SkipReason)
}

func TestSynchronizer_RoundsWithoutIssueKeyAreNotRecorded(t *testing.T) {
	f := newSyncFixture(t, syncMapping)
	issue := outboundIssue()
	issue.Key = ""

	record, err := f.sync.ApplyExternal(context.Background(), &interfaces.InboundRequest{
		Issue:      issue,
		Properties: map[string]string{"dcterms:title": "Renamed"},
	})
	require.NoError(t, err)
	assert.False(t, record.Skipped)
	assert.Empty(t, f.storage.rounds)
}
