package models

import (
	"fmt"
	"strings"
)

// Well-known namespaces of lifecycle resources
const (
	NSDCTerms = "http://purl.org/dc/terms/"
	NSOSLC    = "http://open-services.net/ns/core#"
	NSOSLCCM  = "http://open-services.net/ns/cm#"
	NSRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSFOAF    = "http://xmlns.com/foaf/0.1/"
)

var namespacePrefixes = map[string]string{
	"dcterms": NSDCTerms,
	"oslc":    NSOSLC,
	"oslc_cm": NSOSLCCM,
	"rdf":     NSRDF,
	"foaf":    NSFOAF,
}

// ExpandNamespace resolves a well-known prefix to its namespace URI.
// Unknown values are returned unchanged.
func ExpandNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if uri, ok := namespacePrefixes[ns]; ok {
		return uri
	}
	return ns
}

// QName is a namespace-qualified property name
type QName struct {
	Namespace string
	Name      string
}

// NewQName builds a QName, expanding well-known namespace prefixes
func NewQName(ns, name string) QName {
	return QName{Namespace: ExpandNamespace(ns), Name: strings.TrimSpace(name)}
}

// ParseQName accepts Clark notation ({ns}name) or prefix:name
func ParseQName(s string) (QName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QName{}, fmt.Errorf("empty property name")
	}
	if strings.HasPrefix(s, "{") {
		end := strings.Index(s, "}")
		if end < 0 || end == len(s)-1 {
			return QName{}, fmt.Errorf("malformed property name %q", s)
		}
		return NewQName(s[1:end], s[end+1:]), nil
	}
	if i := strings.LastIndex(s, ":"); i > 0 && !strings.Contains(s[:i], "/") && !strings.HasPrefix(s[i+1:], "/") {
		return NewQName(s[:i], s[i+1:]), nil
	}
	return NewQName("", s), nil
}

// IsZero reports whether the name is unset
func (q QName) IsZero() bool {
	return q.Name == ""
}

// String renders the name in Clark notation
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Name
	}
	return "{" + q.Namespace + "}" + q.Name
}

// MarshalText lets QName be used as a JSON object key
func (q QName) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses Clark or prefixed notation
func (q *QName) UnmarshalText(b []byte) error {
	parsed, err := ParseQName(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Built-in properties read directly from the resource rather than the bag
var (
	PropTitle       = QName{Namespace: NSDCTerms, Name: "title"}
	PropDescription = QName{Namespace: NSDCTerms, Name: "description"}
	PropIdentifier  = QName{Namespace: NSDCTerms, Name: "identifier"}
	PropStatus      = QName{Namespace: NSOSLCCM, Name: "status"}
)

// ExternalResource is the read-only view of a resource owned by an external
// lifecycle tool.
type ExternalResource struct {
	URI         string           `json:"uri"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Identifier  string           `json:"identifier"`
	Status      string           `json:"status"`
	Properties  map[QName]string `json:"properties,omitempty"`
}

// NewExternalResource builds a resource from a flat property bag, lifting the
// built-in properties into their dedicated fields.
func NewExternalResource(uri string, props map[QName]string) *ExternalResource {
	r := &ExternalResource{URI: uri, Properties: make(map[QName]string, len(props))}
	for k, v := range props {
		switch k {
		case PropTitle:
			r.Title = v
		case PropDescription:
			r.Description = v
		case PropIdentifier:
			r.Identifier = v
		case PropStatus:
			r.Status = v
		default:
			r.Properties[k] = v
		}
	}
	return r
}

// Property returns the value of a property; a missing property is the empty
// string so that mappings can clear issue fields.
func (r *ExternalResource) Property(q QName) string {
	if r == nil {
		return ""
	}
	switch q {
	case PropTitle:
		return r.Title
	case PropDescription:
		return r.Description
	case PropIdentifier:
		return r.Identifier
	case PropStatus:
		return r.Status
	}
	return r.Properties[q]
}
