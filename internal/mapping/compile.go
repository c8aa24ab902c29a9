package mapping

import (
	"fmt"
	"strings"

	"leansync-jira/internal/common"
	"leansync-jira/internal/models"
	"leansync-jira/internal/transform"
	"leansync-jira/internal/xmlpath"
)

type direction int

const (
	inbound direction = iota
	outbound
)

func (d direction) String() string {
	if d == inbound {
		return "inbound"
	}
	return "outbound"
}

// violations collects schema errors with their location
type violations []string

func (v *violations) add(where, format string, args ...interface{}) {
	*v = append(*v, where+": "+fmt.Sprintf(format, args...))
}

// Parse decodes and validates a mapping document and builds its
// configurations. Nothing is returned unless the whole document is valid.
func Parse(data []byte) ([]*Configuration, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, common.NewValidationError("MAPPING_PARSE", "mapping document could not be parsed").WithCause(err)
	}
	return Compile(doc)
}

// Compile validates doc and converts it to configurations
func Compile(doc *Document) ([]*Configuration, error) {
	var errs violations
	if doc == nil || len(doc.Configurations) == 0 {
		errs.add("leansync", "at least one configuration is required")
	}

	seen := map[string]string{}
	var out []*Configuration
	for i, src := range doc.configurations() {
		where := fmt.Sprintf("configuration[%d]", i)
		cfg := compileConfiguration(src, where, &errs)
		if cfg == nil {
			continue
		}

		types := cfg.IssueTypes
		if len(types) == 0 {
			types = []string{"*"}
		}
		for _, t := range types {
			key := cfg.ProjectID + "/" + t
			if prev, dup := seen[key]; dup {
				errs.add(where, "project %s issue type %s is already configured by %s", cfg.ProjectID, t, prev)
			}
			seen[key] = where
		}
		out = append(out, cfg)
	}

	if len(errs) > 0 {
		verr := common.NewValidationError("MAPPING_INVALID", "mapping document failed validation")
		verr.Details = strings.Join(errs, "; ")
		return nil, verr
	}
	return out, nil
}

func (d *Document) configurations() []ConfigurationSource {
	if d == nil {
		return nil
	}
	return d.Configurations
}

func compileConfiguration(src ConfigurationSource, where string, errs *violations) *Configuration {
	cfg := &Configuration{
		ProjectID: strings.TrimSpace(src.ProjectID),
		ErrorLog:  strings.TrimSpace(src.ErrorLog),
	}
	if cfg.ProjectID == "" {
		errs.add(where, "projectId is required")
		return nil
	}
	cfg.IssueTypes = transform.SplitValues(src.IssueTypes, ",")
	for _, d := range src.Domains {
		if d = strings.TrimSpace(d); d != "" {
			cfg.Domains = append(cfg.Domains, d)
		}
	}
	if src.Inbound != nil {
		cfg.Inbound = compileMapping(src.Inbound, inbound, where+".inbound", errs)
	}
	if src.Outbound != nil {
		cfg.Outbound = compileMapping(src.Outbound, outbound, where+".outbound", errs)
	}
	return cfg
}

func compileMapping(src *MappingSource, dir direction, where string, errs *violations) *Mapping {
	m := &Mapping{
		Username: src.Username,
		Password: src.Password,
	}
	if len(src.Headers) > 0 {
		m.Headers = make(map[string]string, len(src.Headers))
		for i, h := range src.Headers {
			if strings.TrimSpace(h.Name) == "" {
				errs.add(fmt.Sprintf("%s.header[%d]", where, i), "name is required")
				continue
			}
			m.Headers[strings.TrimSpace(h.Name)] = h.Value
		}
	}

	templateIDs := map[string]bool{}
	for i, ts := range src.Templates {
		t := compileTemplate(ts, dir, fmt.Sprintf("%s.template[%d]", where, i), errs)
		if t == nil {
			continue
		}
		if templateIDs[t.ID] {
			errs.add(fmt.Sprintf("%s.template[%d]", where, i), "duplicate template id %q", t.ID)
		}
		templateIDs[t.ID] = true
		m.Templates = append(m.Templates, t)
	}

	for i, fs := range src.Fields {
		fw := fmt.Sprintf("%s.field[%d]", where, i)
		if f := compileField(fs, dir, false, fw, errs); f != nil {
			checkTemplateRef(f, templateIDs, fw, errs)
			m.Fields = append(m.Fields, f)
		}
	}

	for i, xs := range src.XMLFields {
		xw := fmt.Sprintf("%s.xmlFieldConfig[%d]", where, i)
		if dir == outbound {
			errs.add(xw, "xmlFieldConfig is only supported for inbound mappings")
			continue
		}
		if strings.TrimSpace(xs.Name) == "" {
			errs.add(xw, "name is required")
			continue
		}
		x := &XMLFieldConfig{Property: models.NewQName(xs.Namespace, xs.Name)}
		for j, fs := range xs.Fields {
			fw := fmt.Sprintf("%s.field[%d]", xw, j)
			if f := compileField(fs, dir, true, fw, errs); f != nil {
				checkTemplateRef(f, templateIDs, fw, errs)
				x.Fields = append(x.Fields, f)
			}
		}
		m.XMLFields = append(m.XMLFields, x)
	}
	return m
}

func checkTemplateRef(f *Field, templateIDs map[string]bool, where string, errs *violations) {
	if f.TemplateID != "" && !templateIDs[f.TemplateID] {
		errs.add(where, "templateId %q does not name a template of this mapping", f.TemplateID)
	}
	if f.TemplateID != "" && f.PlaceholderID == "" {
		errs.add(where, "templateId requires a placeholder")
	}
}

func compileField(src FieldSource, dir direction, nested bool, where string, errs *violations) *Field {
	f := &Field{
		NotifyOnChange: src.NotifyChange == nil || *src.NotifyChange,
		AlwaysSave:     src.AlwaysSave,
		DateFrom:       strings.TrimSpace(src.DateFrom),
		DateTo:         strings.TrimSpace(src.DateTo),
		DurationFrom:   strings.TrimSpace(src.DurationFrom),
		DurationTo:     strings.TrimSpace(src.DurationTo),
		EncodeHTML:     src.EncodeHTML,
		DecodeHTML:     src.DecodeHTML,
		TemplateID:     strings.TrimSpace(src.TemplateID),
		PlaceholderID:  strings.TrimSpace(src.Placeholder),
		KeepTags:       src.KeepTags,
	}

	var err error
	if f.Action, err = ParseAction(src.Action); err != nil {
		errs.add(where, "%v", err)
	}
	if f.ContentType, err = ParseContentType(src.ContentType); err != nil {
		errs.add(where, "%v", err)
	}

	switch {
	case nested:
		f.IssueField = strings.TrimSpace(src.MapTo)
		path, err := xmlpath.Compile(src.XPath)
		if err != nil {
			errs.add(where, "%v", err)
		}
		f.XPath = path
	case dir == inbound:
		if strings.TrimSpace(src.Name) == "" {
			errs.add(where, "name is required")
		}
		f.Property = models.NewQName(src.Namespace, src.Name)
		f.IssueField = strings.TrimSpace(src.MapTo)
	default:
		if strings.TrimSpace(src.Name) == "" {
			errs.add(where, "name is required")
		}
		f.IssueField = strings.TrimSpace(src.Name)
		if strings.TrimSpace(src.MapTo) != "" {
			f.Property = models.NewQName(src.Namespace, src.MapTo)
		}
	}

	if !nested && src.XPath != "" {
		errs.add(where, "xpath is only allowed inside xmlFieldConfig")
	}
	if (f.DateFrom == "") != (f.DateTo == "") {
		errs.add(where, "dateFrom and dateTo must be given together")
	}
	if f.HasDateFormat() {
		if _, err := transform.Layout(f.DateFrom); err != nil {
			errs.add(where, "%v", err)
		}
		if _, err := transform.Layout(f.DateTo); err != nil {
			errs.add(where, "%v", err)
		}
	}
	if (f.DurationFrom == "") != (f.DurationTo == "") {
		errs.add(where, "durationFrom and durationTo must be given together")
	}
	if f.HasDurationUnits() && (!transform.ValidUnit(f.DurationFrom) || !transform.ValidUnit(f.DurationTo)) {
		errs.add(where, "unknown duration unit in %q/%q", f.DurationFrom, f.DurationTo)
	}
	if f.EncodeHTML && f.DecodeHTML {
		errs.add(where, "encodeHtml and decodeHtml are mutually exclusive")
	}

	if len(src.Values) > 0 {
		f.Values = make(map[string]string, len(src.Values))
		for _, v := range src.Values {
			f.Values[v.From] = v.To
		}
	}
	return f
}

func compileTemplate(src TemplateSource, dir direction, where string, errs *violations) *Template {
	t := &Template{
		ID:             strings.TrimSpace(src.ID),
		IssueField:     strings.TrimSpace(src.MapTo),
		Text:           strings.Trim(src.Text, "\r\n"),
		NotifyOnChange: src.NotifyChange == nil || *src.NotifyChange,
		AlwaysSave:     src.AlwaysSave,
	}
	if t.ID == "" {
		errs.add(where, "id is required")
		return nil
	}
	if strings.TrimSpace(src.Name) != "" {
		t.Property = models.NewQName(src.Namespace, src.Name)
	}
	if dir == outbound && t.Property.IsZero() && t.IssueField == "" {
		errs.add(where, "outbound template %q needs a name or mapTo", t.ID)
	}

	var err error
	if t.Action, err = ParseAction(src.Action); err != nil {
		errs.add(where, "%v", err)
	}
	if t.ContentType, err = ParseContentType(src.ContentType); err != nil {
		errs.add(where, "%v", err)
	}
	return t
}
