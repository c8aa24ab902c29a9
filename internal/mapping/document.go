package mapping

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the stored form of the mapping configuration. It is authored
// as XML:
//
//	<leansync>
//	  <configuration projectId="10000" issueTypes="1,3" errorLog="Sync Status">
//	    <domain>https://rtc.example.com/</domain>
//	    <inbound>
//	      <field ns="dcterms" name="title" mapTo="Summary"/>
//	    </inbound>
//	    <outbound>
//	      <field name="StatusName" placeholder="ID1"/>
//	      <template id="status" ns="http://example.com/ns#" name="status"><![CDATA[Status: <<ID1>>]]></template>
//	    </outbound>
//	  </configuration>
//	</leansync>
//
// or as the equivalent YAML. Inbound fields name the external property with
// ns/name and the issue field with mapTo; outbound fields name the issue
// field with name and the external property with ns/mapTo.
type Document struct {
	XMLName        xml.Name              `xml:"leansync" yaml:"-"`
	Configurations []ConfigurationSource `xml:"configuration" yaml:"configurations"`
}

// ConfigurationSource is the stored form of a Configuration
type ConfigurationSource struct {
	ProjectID  string         `xml:"projectId,attr" yaml:"projectId"`
	IssueTypes string         `xml:"issueTypes,attr" yaml:"issueTypes"`
	ErrorLog   string         `xml:"errorLog,attr" yaml:"errorLog"`
	Domains    []string       `xml:"domain" yaml:"domains"`
	Inbound    *MappingSource `xml:"inbound" yaml:"inbound"`
	Outbound   *MappingSource `xml:"outbound" yaml:"outbound"`
}

// MappingSource is the stored form of a Mapping
type MappingSource struct {
	Username  string           `xml:"username,attr" yaml:"username"`
	Password  string           `xml:"password,attr" yaml:"password"`
	Headers   []HeaderSource   `xml:"header" yaml:"headers"`
	Fields    []FieldSource    `xml:"field" yaml:"fields"`
	Templates []TemplateSource `xml:"template" yaml:"templates"`
	XMLFields []XMLFieldSource `xml:"xmlFieldConfig" yaml:"xmlFieldConfigs"`
}

// HeaderSource is a custom transport header
type HeaderSource struct {
	Name  string `xml:"name,attr" yaml:"name"`
	Value string `xml:"value,attr" yaml:"value"`
}

// FieldSource is the stored form of a Field
type FieldSource struct {
	Namespace    string        `xml:"ns,attr" yaml:"ns"`
	Name         string        `xml:"name,attr" yaml:"name"`
	MapTo        string        `xml:"mapTo,attr" yaml:"mapTo"`
	Action       string        `xml:"action,attr" yaml:"action"`
	NotifyChange *bool         `xml:"notifyChange,attr" yaml:"notifyChange"`
	AlwaysSave   bool          `xml:"alwaysSave,attr" yaml:"alwaysSave"`
	DateFrom     string        `xml:"dateFrom,attr" yaml:"dateFrom"`
	DateTo       string        `xml:"dateTo,attr" yaml:"dateTo"`
	DurationFrom string        `xml:"durationFrom,attr" yaml:"durationFrom"`
	DurationTo   string        `xml:"durationTo,attr" yaml:"durationTo"`
	EncodeHTML   bool          `xml:"encodeHtml,attr" yaml:"encodeHtml"`
	DecodeHTML   bool          `xml:"decodeHtml,attr" yaml:"decodeHtml"`
	ContentType  string        `xml:"contentType,attr" yaml:"contentType"`
	TemplateID   string        `xml:"templateId,attr" yaml:"templateId"`
	Placeholder  string        `xml:"placeholder,attr" yaml:"placeholder"`
	XPath        string        `xml:"xpath,attr" yaml:"xpath"`
	KeepTags     bool          `xml:"keepTags,attr" yaml:"keepTags"`
	Values       []ValueSource `xml:"value" yaml:"values"`
}

// ValueSource is one lookup-table row
type ValueSource struct {
	From string `xml:"from,attr" yaml:"from"`
	To   string `xml:"to,attr" yaml:"to"`
}

// TemplateSource is the stored form of a Template
type TemplateSource struct {
	ID           string `xml:"id,attr" yaml:"id"`
	Namespace    string `xml:"ns,attr" yaml:"ns"`
	Name         string `xml:"name,attr" yaml:"name"`
	MapTo        string `xml:"mapTo,attr" yaml:"mapTo"`
	Action       string `xml:"action,attr" yaml:"action"`
	NotifyChange *bool  `xml:"notifyChange,attr" yaml:"notifyChange"`
	AlwaysSave   bool   `xml:"alwaysSave,attr" yaml:"alwaysSave"`
	ContentType  string `xml:"contentType,attr" yaml:"contentType"`
	Text         string `xml:",chardata" yaml:"text"`
}

// XMLFieldSource is the stored form of an XMLFieldConfig
type XMLFieldSource struct {
	Namespace string        `xml:"ns,attr" yaml:"ns"`
	Name      string        `xml:"name,attr" yaml:"name"`
	Fields    []FieldSource `xml:"field" yaml:"fields"`
}

// DecodeDocument reads XML or YAML, chosen by the first non-blank byte
func DecodeDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("mapping document is empty")
	}

	var doc Document
	if trimmed[0] == '<' {
		if err := xml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse XML mapping document: %w", err)
		}
		return &doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML mapping document: %w", err)
	}
	return &doc, nil
}
