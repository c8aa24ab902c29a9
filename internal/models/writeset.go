package models

import (
	"encoding/json"
	"sort"
)

// Value is a normalized field value: either text or a list of strings
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// TextValue wraps a string
func TextValue(s string) Value {
	return Value{Text: s}
}

// ListValue wraps a string list
func ListValue(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{List: items, IsList: true}
}

// MarshalJSON renders text values as strings and lists as arrays
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string or an array of strings
func (v *Value) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*v = ListValue(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}

// WriteSet maps canonical or custom field identifiers to the values a round
// wants the issue store to persist.
type WriteSet map[string]Value

// SetText records a text write
func (w WriteSet) SetText(field, value string) {
	w[field] = TextValue(value)
}

// SetList records a list write
func (w WriteSet) SetList(field string, items []string) {
	w[field] = ListValue(items)
}

// Text returns the text written for field, if any
func (w WriteSet) Text(field string) (string, bool) {
	v, ok := w[field]
	if !ok || v.IsList {
		return "", false
	}
	return v.Text, true
}

// Clone returns a deep copy
func (w WriteSet) Clone() WriteSet {
	out := make(WriteSet, len(w))
	for k, v := range w {
		if v.IsList {
			v.List = append([]string(nil), v.List...)
		}
		out[k] = v
	}
	return out
}

// Fields returns the written field names in sorted order
func (w WriteSet) Fields() []string {
	out := make([]string, 0, len(w))
	for k := range w {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Selection restricts which targets a caller allows a round to touch.
// A nil Selection allows every field.
type Selection map[string]bool

// NewSelection builds a selection from field names
func NewSelection(fields ...string) Selection {
	s := make(Selection, len(fields))
	for _, f := range fields {
		s[f] = true
	}
	return s
}

// Allows reports whether field may be written
func (s Selection) Allows(field string) bool {
	return s == nil || s[field]
}
