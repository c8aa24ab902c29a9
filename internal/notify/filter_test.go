package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leansync-jira/internal/fields"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/models"
)

func configuration(errorLog string, inbound ...*mapping.Field) *mapping.Configuration {
	return &mapping.Configuration{
		ProjectID: "10000",
		ErrorLog:  errorLog,
		Inbound:   &mapping.Mapping{Fields: inbound},
	}
}

func changed(items ...models.ChangedItem) *models.ChangeEvent {
	return &models.ChangeEvent{ChangeLog: &models.ChangeLog{Items: items}}
}

func native(field string) models.ChangedItem {
	return models.ChangedItem{Field: field, FieldType: models.FieldTypeNative}
}

func custom(field string) models.ChangedItem {
	return models.ChangedItem{Field: field, FieldType: models.FieldTypeCustom}
}

func TestNotNotified(t *testing.T) {
	cfg := configuration("customfield_sync",
		&mapping.Field{IssueField: fields.Summary, NotifyOnChange: true},
		&mapping.Field{IssueField: fields.PriorityID, NotifyOnChange: false},
	)
	cfg.Inbound.Templates = []*mapping.Template{{ID: "t", IssueField: fields.Environment}}
	cfg.Inbound.XMLFields = []*mapping.XMLFieldConfig{{
		Fields: []*mapping.Field{{IssueField: fields.Description}},
	}}

	assert.Equal(t, map[string]bool{
		"customfield_sync": true,
		fields.PriorityID:  true,
		fields.Environment: true,
		fields.Description: true,
	}, NotNotified(cfg))

	assert.Empty(t, NotNotified(nil))
}

func TestShouldSynchronize(t *testing.T) {
	cfg := configuration("customfield_sync",
		&mapping.Field{IssueField: fields.Summary, NotifyOnChange: true},
		&mapping.Field{IssueField: fields.PriorityID, NotifyOnChange: false},
	)

	tests := []struct {
		name  string
		event *models.ChangeEvent
		want  bool
	}{
		{"nil event", nil, true},
		{"worklog added", &models.ChangeEvent{WorklogAdded: true}, true},
		{"comment added", &models.ChangeEvent{CommentAdded: true}, true},
		{"only error log changed", changed(custom("customfield_sync")), false},
		{"only suppressed native field changed", changed(native("priority")), false},
		{"notified native field changed", changed(native("summary")), true},
		{"unmapped native field changed", changed(native("labels")), true},
		{"suppressed and notified change together", changed(native("priority"), native("summary")), true},
		{"custom field changed", changed(custom("customfield_other")), true},
		{"unknown native label", changed(native("Rank")), true},
		{"no change details with suppressed fields", &models.ChangeEvent{}, false},
		{"empty change log with suppressed fields", changed(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldSynchronize(cfg, tt.event))
		})
	}
}

func TestShouldSynchronize_NothingSuppressed(t *testing.T) {
	cfg := configuration("", &mapping.Field{IssueField: fields.Summary, NotifyOnChange: true})

	assert.True(t, ShouldSynchronize(cfg, &models.ChangeEvent{}))
	assert.True(t, ShouldSynchronize(cfg, changed()))
}

func TestShouldSynchronize_SuppressedComments(t *testing.T) {
	cfg := configuration("", &mapping.Field{IssueField: fields.Comments, NotifyOnChange: false})

	assert.False(t, ShouldSynchronize(cfg, &models.ChangeEvent{CommentAdded: true}))
	assert.True(t, ShouldSynchronize(cfg, &models.ChangeEvent{CommentAdded: true, WorklogAdded: true}))
}

func TestShouldSynchronize_LabelAliases(t *testing.T) {
	// assignee covers both AssigneeId and AssigneeName
	cfg := configuration("", &mapping.Field{IssueField: fields.AssigneeName, NotifyOnChange: false})

	assert.False(t, ShouldSynchronize(cfg, changed(native("assignee"))))
	assert.True(t, ShouldSynchronize(cfg, changed(native("reporter"))))
}
