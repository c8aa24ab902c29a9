package synclog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leansync-jira/internal/models"
)

const errorLogField = "customfield_sync_status"

func computedWrites() models.WriteSet {
	ws := models.WriteSet{}
	ws.SetText("Summary", "Fix crash")
	ws.SetText("PriorityId", "1")
	ws.SetText("customfield_rtc_id", "RTC-42")
	return ws
}

func TestFinalize_NoMessages(t *testing.T) {
	writes := computedWrites()
	out := Finalize(writes, New(), Policy{ErrorLogField: errorLogField})

	assert.False(t, out.Failed)
	assert.Equal(t, "", out.Status)
	assert.Equal(t, models.TextValue("Fix crash"), out.Writes["Summary"])
	assert.Equal(t, models.TextValue(""), out.Writes[errorLogField], "status field is cleared")
	assert.NotContains(t, writes, errorLogField, "input write-set is not modified")
}

func TestFinalize_WarningsOnly(t *testing.T) {
	acc := New()
	acc.Warnf("Description", "value truncated to %d characters", 10)

	out := Finalize(computedWrites(), acc, Policy{ErrorLogField: errorLogField})

	assert.False(t, out.Failed)
	assert.Len(t, out.Writes, 4)
	assert.Equal(t, models.TextValue("Description: value truncated to 10 characters"), out.Writes[errorLogField])
}

func TestFinalize_ErrorsKeepOnlyStatusAndAlwaysSaved(t *testing.T) {
	acc := New()
	acc.Errorf("DueDate", "bad date")
	acc.Warnf("Summary", "trimmed")

	out := Finalize(computedWrites(), acc, Policy{
		ErrorLogField: errorLogField,
		AlwaysSave:    map[string]bool{"customfield_rtc_id": true, "NotComputed": true},
	})

	assert.True(t, out.Failed)
	assert.Equal(t, "DueDate: bad date\nSummary: trimmed", out.Status)
	assert.Equal(t, models.WriteSet{
		"customfield_rtc_id": models.TextValue("RTC-42"),
		errorLogField:        models.TextValue("DueDate: bad date\nSummary: trimmed"),
	}, out.Writes)
}

func TestFinalize_WithoutErrorLogField(t *testing.T) {
	acc := New()
	acc.Errorf("DueDate", "bad date")

	out := Finalize(computedWrites(), acc, Policy{})
	assert.True(t, out.Failed)
	assert.Empty(t, out.Writes)

	out = Finalize(computedWrites(), nil, Policy{})
	assert.False(t, out.Failed)
	assert.Len(t, out.Writes, 3)
}

func TestAccumulator_Truncate(t *testing.T) {
	acc := New()

	assert.Equal(t, "abcde", acc.Truncate("Summary", "abcde", 5))
	assert.True(t, acc.Warnings.IsEmpty(), "value at the limit is not cut")

	assert.Equal(t, "abcde", acc.Truncate("Summary", "abcdef", 5))
	assert.Equal(t, 1, acc.Warnings.Len())
	assert.Equal(t, "Summary", acc.Warnings.Entries()[0].Field)
	assert.True(t, acc.Errors.IsEmpty())
}

func TestAccumulator_Merge(t *testing.T) {
	a := New()
	a.Errorf("A", "one")
	b := New()
	b.Errorf("B", "two")
	b.Warnf("C", "three")

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, "A: one\nB: two", a.Errors.String())
	assert.Equal(t, "C: three", a.Warnings.String())
}

func TestLog_StringWithoutField(t *testing.T) {
	var l Log
	l.Add("round failed")
	l.AddField("Summary", "empty")
	assert.Equal(t, "round failed\nSummary: empty", l.String())
}
