package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  QName
	}{
		{"clark notation", "{http://example.com/ns#}status", QName{Namespace: "http://example.com/ns#", Name: "status"}},
		{"clark with known prefix", "{dcterms}title", PropTitle},
		{"prefixed", "dcterms:title", PropTitle},
		{"unknown prefix kept", "rtc:plan", QName{Namespace: "rtc", Name: "plan"}},
		{"bare name", "title", QName{Name: "title"}},
		{"uri without namespace", "http://example.com/x", QName{Name: "http://example.com/x"}},
		{"surrounding space", "  oslc_cm:status ", PropStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQName_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "{http://example.com/ns#}", "{unterminated"} {
		_, err := ParseQName(input)
		assert.Error(t, err, input)
	}
}

func TestQName_String(t *testing.T) {
	assert.Equal(t, "{http://purl.org/dc/terms/}title", PropTitle.String())
	assert.Equal(t, "title", QName{Name: "title"}.String())
	assert.True(t, QName{}.IsZero())
}

func TestQName_JSONMapKeys(t *testing.T) {
	record := RoundRecord{
		ID: "r1",
		Properties: map[QName]string{
			PropTitle:                  "Fix crash",
			NewQName("rtc", "planned"): "yes",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"{http://purl.org/dc/terms/}title":"Fix crash"`)

	var decoded RoundRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.Properties, decoded.Properties)
}

func TestValue_JSON(t *testing.T) {
	ws := WriteSet{}
	ws.SetText("Summary", "Fix crash")
	ws.SetList("Labels", []string{"a", "b"})
	ws.SetList("FixVersionIds", nil)

	data, err := json.Marshal(ws)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Summary":"Fix crash","Labels":["a","b"],"FixVersionIds":[]}`, string(data))

	var decoded WriteSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ws, decoded)
}

func TestWriteSet(t *testing.T) {
	ws := WriteSet{}
	ws.SetText("Summary", "Fix crash")
	ws.SetList("Labels", []string{"a"})

	text, ok := ws.Text("Summary")
	assert.True(t, ok)
	assert.Equal(t, "Fix crash", text)

	_, ok = ws.Text("Labels")
	assert.False(t, ok, "lists are not text")
	_, ok = ws.Text("Missing")
	assert.False(t, ok)

	clone := ws.Clone()
	clone["Labels"].List[0] = "changed"
	clone.SetText("Summary", "other")
	assert.Equal(t, "a", ws["Labels"].List[0])
	assert.Equal(t, TextValue("Fix crash"), ws["Summary"])

	assert.Equal(t, []string{"Labels", "Summary"}, ws.Fields())
}

func TestSelection(t *testing.T) {
	var all Selection
	assert.True(t, all.Allows("Summary"))

	some := NewSelection("Summary", "Labels")
	assert.True(t, some.Allows("Labels"))
	assert.False(t, some.Allows("Description"))

	none := NewSelection()
	assert.False(t, none.Allows("Summary"))
}

func TestNewExternalResource(t *testing.T) {
	custom := NewQName("rtc", "plan")
	r := NewExternalResource("https://rtc.example.com/ccm/resource/1", map[QName]string{
		PropTitle:       "Fix crash",
		PropDescription: "details",
		PropIdentifier:  "42",
		PropStatus:      "New",
		custom:          "<plan/>",
	})

	assert.Equal(t, "Fix crash", r.Title)
	assert.Equal(t, "details", r.Description)
	assert.Equal(t, "42", r.Identifier)
	assert.Equal(t, "New", r.Status)
	assert.Equal(t, map[QName]string{custom: "<plan/>"}, r.Properties)

	assert.Equal(t, "Fix crash", r.Property(PropTitle))
	assert.Equal(t, "<plan/>", r.Property(custom))
	assert.Equal(t, "", r.Property(NewQName("rtc", "missing")))

	var nilResource *ExternalResource
	assert.Equal(t, "", nilResource.Property(PropTitle))
}

func TestIssue_CustomField(t *testing.T) {
	issue := &Issue{CustomFields: map[string]interface{}{"customfield_1": nil}}

	_, ok := issue.CustomField("customfield_1")
	assert.True(t, ok, "present with a nil value")
	_, ok = issue.CustomField("customfield_2")
	assert.False(t, ok)

	var missing *Issue
	_, ok = missing.CustomField("customfield_1")
	assert.False(t, ok)
}

func TestRefs(t *testing.T) {
	refs := []NamedRef{{ID: "1", Name: "UI"}, {ID: "2", Name: "API"}}
	assert.Equal(t, []string{"1", "2"}, RefIDs(refs))
	assert.Equal(t, []string{"UI", "API"}, RefNames(refs))
	assert.Equal(t, []string{}, RefIDs(nil))
}

func TestChangedItem_IsNative(t *testing.T) {
	assert.True(t, ChangedItem{Field: "summary", FieldType: FieldTypeNative}.IsNative())
	assert.False(t, ChangedItem{Field: "Team", FieldType: FieldTypeCustom}.IsNative())
}
